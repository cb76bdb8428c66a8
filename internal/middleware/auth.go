package middleware

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"meeting-scheduler-api/internal/auth"
	"meeting-scheduler-api/internal/httputil"
)

type ctxKey string

const SubjectKey ctxKey = "sub"

// Subject returns the token subject stored by the auth middleware, if any.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(SubjectKey).(string)
	return s, ok
}

// skip auth for these
var open = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
	"/grpc.health.v1.Health/Watch": true,
}

// bearer extracts the token from "Bearer <jwt>", case-insensitive on the scheme.
func bearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireToken guards mutating requests with a bearer token signed with
// secret. An empty secret disables the check.
func RequireToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isRead(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			raw := bearer(r.Header.Get("Authorization"))
			if raw == "" {
				httputil.Error(w, http.StatusUnauthorized, "Unauthorized", "Missing bearer token")
				return
			}
			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				httputil.Error(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Auth is the gRPC counterpart of RequireToken. Health checks stay open.
func Auth(secret string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if secret == "" || open[info.FullMethod] {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		raw := ""
		if vals := md.Get("authorization"); len(vals) > 0 {
			raw = bearer(vals[0])
		}
		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "no token")
		}

		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "bad token")
		}

		ctx = context.WithValue(ctx, SubjectKey, claims.Subject)
		return next(ctx, req)
	}
}
