// Package rpc exposes the read side of the scheduler over gRPC. Messages are
// plain Go structs carried by a JSON codec.
package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "scheduler.v1.MeetingService"

type MeetingServiceServer interface {
	CheckConflicts(context.Context, *CheckConflictsRequest) (*CheckConflictsResponse, error)
	ExportCalendar(context.Context, *ExportCalendarRequest) (*ExportCalendarResponse, error)
	ListParticipantMeetings(context.Context, *ListParticipantMeetingsRequest) (*ListParticipantMeetingsResponse, error)
}

func RegisterMeetingServiceServer(s grpc.ServiceRegistrar, srv MeetingServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*MeetingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckConflicts", Handler: unary(func(s MeetingServiceServer, ctx context.Context, in *CheckConflictsRequest) (any, error) {
			return s.CheckConflicts(ctx, in)
		}, "CheckConflicts")},
		{MethodName: "ExportCalendar", Handler: unary(func(s MeetingServiceServer, ctx context.Context, in *ExportCalendarRequest) (any, error) {
			return s.ExportCalendar(ctx, in)
		}, "ExportCalendar")},
		{MethodName: "ListParticipantMeetings", Handler: unary(func(s MeetingServiceServer, ctx context.Context, in *ListParticipantMeetingsRequest) (any, error) {
			return s.ListParticipantMeetings(ctx, in)
		}, "ListParticipantMeetings")},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scheduler/v1/meeting_service",
}

// unary adapts a typed method to grpc.MethodDesc's handler signature.
func unary[Req any](call func(MeetingServiceServer, context.Context, *Req) (any, error), method string) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + serviceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(MeetingServiceServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*Req))
		})
	}
}

// Client calls MeetingService with the JSON content-subtype.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...)
}

func (c *Client) CheckConflicts(ctx context.Context, in *CheckConflictsRequest, opts ...grpc.CallOption) (*CheckConflictsResponse, error) {
	out := new(CheckConflictsResponse)
	if err := c.invoke(ctx, "CheckConflicts", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ExportCalendar(ctx context.Context, in *ExportCalendarRequest, opts ...grpc.CallOption) (*ExportCalendarResponse, error) {
	out := new(ExportCalendarResponse)
	if err := c.invoke(ctx, "ExportCalendar", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListParticipantMeetings(ctx context.Context, in *ListParticipantMeetingsRequest, opts ...grpc.CallOption) (*ListParticipantMeetingsResponse, error) {
	out := new(ListParticipantMeetingsResponse)
	if err := c.invoke(ctx, "ListParticipantMeetings", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
