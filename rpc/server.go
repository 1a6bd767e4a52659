package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/medsum/medsum/relay"
)

// Explainer is the part of relay.Relay the service needs.
type Explainer interface {
	Explain(ctx context.Context, req relay.Request) (*relay.Result, error)
}

// Server implements RelayServer on top of an Explainer.
type Server struct {
	explainer Explainer
	logger    *slog.Logger
}

var _ RelayServer = (*Server)(nil)

// NewServer creates a Server. A nil logger falls back to slog.Default().
func NewServer(e Explainer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{explainer: e, logger: logger}
}

// Explain implements RelayServer.
func (s *Server) Explain(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()
	req := relay.Request{
		Diagnosis: fields["diagnosis"].GetStringValue(),
		Medicines: fields["medicines"].GetStringValue(),
	}

	res, err := s.explainer.Explain(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := structpb.NewStruct(map[string]any{
		"explanation": res.Content,
		"model":       res.Model,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return out, nil
}

// toStatus maps relay failures onto gRPC status codes.
func toStatus(err error) error {
	switch relay.KindOf(err) {
	case relay.KindValidation:
		return status.Error(codes.InvalidArgument, err.Error())
	case relay.KindTimeout:
		return status.Error(codes.DeadlineExceeded, err.Error())
	case relay.KindStatus, relay.KindTransport, relay.KindResponseShape:
		return status.Error(codes.Unavailable, err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// ServeOption configures Serve.
type ServeOption func(*serveConfig)

type serveConfig struct {
	addrWriter      io.Writer
	shutdownTimeout time.Duration
}

// WithAddrWriter writes a MEDSUM_GRPC_ADDR line with the bound address to w
// once the listener is up. Useful with port 0.
func WithAddrWriter(w io.Writer) ServeOption {
	return func(cfg *serveConfig) {
		cfg.addrWriter = w
	}
}

// WithShutdownTimeout bounds the graceful stop before connections are
// forcibly closed (default 5s).
func WithShutdownTimeout(d time.Duration) ServeOption {
	return func(cfg *serveConfig) {
		if d > 0 {
			cfg.shutdownTimeout = d
		}
	}
}

// Serve listens on addr and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string, opts ...ServeOption) error {
	cfg := &serveConfig{shutdownTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpc: listen: %w", err)
	}

	grpcServer := grpc.NewServer()
	RegisterRelayServer(grpcServer, s)

	bound := lis.Addr().String()
	if cfg.addrWriter != nil {
		fmt.Fprintf(cfg.addrWriter, "MEDSUM_GRPC_ADDR=%s\n", bound)
	}
	s.logger.Info("grpc relay listening", "addr", bound)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return err
	}

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(cfg.shutdownTimeout):
		grpcServer.Stop()
		<-done
	}

	return nil
}
