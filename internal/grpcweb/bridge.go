// Package grpcweb lets browsers call MeetingService over HTTP/1.1 using the
// gRPC-Web framing. Frames are passed through to the gRPC server untouched.
package grpcweb

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const maxBody = 4 << 20

// Bridge translates gRPC-Web requests into calls on conn.
type Bridge struct {
	conn grpc.ClientConnInterface
	log  *slog.Logger
}

func New(conn grpc.ClientConnInterface, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{conn: conn, log: log}
}

// Handler serves POST /<service>/<method>. The content-subtype of the
// request ("application/grpc-web+json") selects the server-side codec.
func (b *Bridge) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, X-Grpc-Web, X-User-Agent, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "Grpc-Status, Grpc-Message")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		subtype, ok := contentSubtype(r.Header.Get("Content-Type"))
		if !ok {
			http.Error(w, "not grpc-web", http.StatusUnsupportedMediaType)
			return
		}
		b.forward(w, r, subtype)
	})
}

// contentSubtype extracts "json" from "application/grpc-web+json". Plain
// "application/grpc-web" means proto.
func contentSubtype(ct string) (string, bool) {
	ct, _, _ = strings.Cut(ct, ";")
	ct = strings.TrimSpace(strings.ToLower(ct))
	switch {
	case ct == "application/grpc-web":
		return "proto", true
	case strings.HasPrefix(ct, "application/grpc-web+"):
		return strings.TrimPrefix(ct, "application/grpc-web+"), true
	}
	return "", false
}

func (b *Bridge) forward(w http.ResponseWriter, r *http.Request, subtype string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, subtype, codes.Internal, "read body failed")
		return
	}
	payload, err := unframe(body)
	if err != nil {
		writeError(w, subtype, codes.InvalidArgument, err.Error())
		return
	}

	md := metadata.MD{}
	if vals := r.Header.Values("Authorization"); len(vals) > 0 {
		md.Set("authorization", vals...)
	}
	ctx := metadata.NewOutgoingContext(r.Context(), md)

	resp := &rawMsg{}
	err = b.conn.Invoke(ctx, r.URL.Path, &rawMsg{data: payload}, resp,
		grpc.ForceCodec(rawCodec{}), grpc.CallContentSubtype(subtype))
	if err != nil {
		st := status.Convert(err)
		b.log.InfoContext(r.Context(), "grpc-web call failed", "method", r.URL.Path, "code", st.Code().String())
		writeError(w, subtype, st.Code(), st.Message())
		return
	}
	writeSuccess(w, subtype, resp.data)
}

// unframe reads the single data frame of a unary request: 1-byte flag,
// 4-byte big-endian length, message.
func unframe(body []byte) ([]byte, error) {
	if len(body) < 5 {
		return nil, fmt.Errorf("body too short")
	}
	if body[0]&0x80 != 0 {
		return nil, fmt.Errorf("unexpected trailer frame")
	}
	n := binary.BigEndian.Uint32(body[1:5])
	if int(n)+5 > len(body) {
		return nil, fmt.Errorf("incomplete frame")
	}
	return body[5 : 5+n], nil
}

func frame(flag byte, data []byte) []byte {
	f := make([]byte, 5+len(data))
	f[0] = flag
	binary.BigEndian.PutUint32(f[1:5], uint32(len(data)))
	copy(f[5:], data)
	return f
}

// rawMsg wraps already-encoded message bytes.
type rawMsg struct{ data []byte }

// rawCodec passes bytes through without marshal/unmarshal.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	return v.(*rawMsg).data, nil
}
func (rawCodec) Unmarshal(data []byte, v any) error {
	m := v.(*rawMsg)
	m.data = append([]byte(nil), data...)
	return nil
}
func (rawCodec) Name() string { return "raw" }

var trailerEscaper = strings.NewReplacer("\r", " ", "\n", " ")

func writeError(w http.ResponseWriter, subtype string, code codes.Code, msg string) {
	w.Header().Set("Content-Type", "application/grpc-web+"+subtype)
	w.WriteHeader(http.StatusOK)
	trailer := fmt.Sprintf("grpc-status:%d\r\ngrpc-message:%s\r\n", code, trailerEscaper.Replace(msg))
	w.Write(frame(0x80, []byte(trailer)))
}

func writeSuccess(w http.ResponseWriter, subtype string, data []byte) {
	w.Header().Set("Content-Type", "application/grpc-web+"+subtype)
	w.WriteHeader(http.StatusOK)
	w.Write(frame(0x00, data))
	w.Write(frame(0x80, []byte("grpc-status:0\r\n")))
}
