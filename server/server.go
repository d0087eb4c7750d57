package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/tliron/commonlog"
	"google.golang.org/grpc"
)

var log = commonlog.GetLogger("intcode.server")

// IntcodeServer exposes MachineService over Connect (HTTP) and, when
// asked, over a dedicated gRPC listener.
type IntcodeServer struct {
	pool    *Pool
	service *MachineService
	mux     *http.ServeMux
	http    *http.Server
	grpc    *grpc.Server

	// base parents every HTTP request context; cancelling it aborts
	// running machines.
	base   context.Context
	cancel context.CancelFunc
}

// ServerOption configures an IntcodeServer.
type ServerOption func(*serverConfig)

type serverConfig struct {
	workers int
}

// WithWorkers sets how many machines may run at once.
func WithWorkers(n int) ServerOption {
	return func(c *serverConfig) { c.workers = n }
}

// New creates an IntcodeServer with its worker pool started.
func New(opts ...ServerOption) *IntcodeServer {
	cfg := &serverConfig{workers: 4}
	for _, opt := range opts {
		opt(cfg)
	}

	pool := NewPool(cfg.workers)
	svc := NewMachineService(pool)
	base, cancel := context.WithCancel(context.Background())
	s := &IntcodeServer{
		pool:    pool,
		service: svc,
		mux:     http.NewServeMux(),
		grpc:    NewGRPCServer(svc),
		base:    base,
		cancel:  cancel,
	}
	s.http = &http.Server{
		Handler:     s.mux,
		BaseContext: func(net.Listener) context.Context { return s.base },
	}

	path, handler := NewMachineServiceHandler(svc)
	s.mux.Handle(path, handler)
	return s
}

// Handler returns the HTTP handler serving the Connect protocol.
func (s *IntcodeServer) Handler() http.Handler {
	return s.mux
}

// Service returns the underlying MachineService.
func (s *IntcodeServer) Service() *MachineService {
	return s.service
}

// ListenAndServe starts the HTTP server on the given address.
// The address should be in the form "host:port" or ":port".
// It returns nil once Shutdown or Stop has been called.
func (s *IntcodeServer) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve serves the Connect protocol on lis.
func (s *IntcodeServer) Serve(lis net.Listener) error {
	fmt.Printf("Intcode server listening on %s\n", lis.Addr())
	fmt.Printf("  Connect (HTTP/CBOR): http://%s%s\n", lis.Addr(), RunProcedure)
	log.Infof("serving connect on %s", lis.Addr())
	if err := s.http.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeGRPC serves gRPC on lis until Shutdown or Stop is called.
func (s *IntcodeServer) ServeGRPC(lis net.Listener) error {
	fmt.Printf("  gRPC (CBOR):         grpc://%s\n", lis.Addr())
	log.Infof("serving grpc on %s", lis.Addr())
	if err := s.grpc.Serve(lis); !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for running ones to finish.
// When ctx ends first, running machines are cancelled and connections
// closed.
func (s *IntcodeServer) Shutdown(ctx context.Context) error {
	log.Infof("shutting down")
	grpcDone := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(grpcDone)
	}()

	err := s.http.Shutdown(ctx)
	select {
	case <-grpcDone:
	case <-ctx.Done():
		s.cancel()
		s.grpc.Stop()
		<-grpcDone
	}
	s.cancel()
	s.pool.Stop()
	return err
}

// Stop closes every listener and connection, cancels running machines and
// shuts down the worker pool.
func (s *IntcodeServer) Stop() {
	s.cancel()
	s.grpc.Stop()
	s.http.Close()
	s.pool.Stop()
}
