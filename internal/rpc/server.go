package rpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"meeting-scheduler-api/internal/errs"
	"meeting-scheduler-api/internal/metrics"
	"meeting-scheduler-api/internal/middleware"
	"meeting-scheduler-api/internal/service"
	"meeting-scheduler-api/internal/timerange"
)

// Server implements MeetingServiceServer on top of the meeting service.
// Domain errors are turned into status codes by middleware.Logging.
type Server struct {
	svc *service.MeetingService
}

func NewServer(svc *service.MeetingService) *Server {
	return &Server{svc: svc}
}

func (s *Server) CheckConflicts(ctx context.Context, in *CheckConflictsRequest) (*CheckConflictsResponse, error) {
	if in.MeetingID == "" {
		return nil, errs.Invalid("meeting_id", "This field is required")
	}
	r, err := s.svc.CheckConflicts(ctx, in.MeetingID)
	if err != nil {
		return nil, err
	}
	return fromReport(r), nil
}

func (s *Server) ExportCalendar(ctx context.Context, in *ExportCalendarRequest) (*ExportCalendarResponse, error) {
	if in.MeetingID == "" {
		return nil, errs.Invalid("meeting_id", "This field is required")
	}
	out, err := s.svc.Export(ctx, in.MeetingID)
	if err != nil {
		return nil, err
	}
	return &ExportCalendarResponse{Filename: out.Filename, ContentType: out.ContentType, Calendar: string(out.Body)}, nil
}

func (s *Server) ListParticipantMeetings(ctx context.Context, in *ListParticipantMeetingsRequest) (*ListParticipantMeetingsResponse, error) {
	if in.Email == "" {
		return nil, errs.Invalid("email", "This field is required")
	}
	rng, err := timerange.ParseBounds(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	ms, err := s.svc.ParticipantMeetings(ctx, in.Email, rng)
	if err != nil {
		return nil, err
	}
	out := &ListParticipantMeetingsResponse{Meetings: make([]Meeting, len(ms))}
	for i := range ms {
		out.Meetings[i] = fromMeeting(&ms[i])
	}
	return out, nil
}

type Options struct {
	Log     *slog.Logger
	Metrics *metrics.Metrics
	Limiter *middleware.RateLimiter
	Secret  string
}

// New builds a gRPC server with MeetingService and the standard health
// service registered. The returned health server lets the caller flip the
// serving status on shutdown.
func New(svc *service.MeetingService, o Options) (*grpc.Server, *health.Server) {
	if o.Log == nil {
		o.Log = slog.Default()
	}
	chain := []grpc.UnaryServerInterceptor{
		middleware.Recover(o.Log),
		middleware.Logging(o.Log, o.Metrics),
	}
	if o.Limiter != nil {
		chain = append(chain, middleware.RateLimit(o.Limiter))
	}
	chain = append(chain, middleware.Auth(o.Secret))

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	RegisterMeetingServiceServer(srv, NewServer(svc))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	return srv, hs
}
