package server

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/chazu/intcode/wire"
)

// machineServer is the handler type registered with gRPC.
type machineServer interface {
	Run(context.Context, *wire.RunRequest) (*wire.RunResponse, error)
	Amplify(context.Context, *wire.AmplifyRequest) (*wire.AmplifyResponse, error)
}

// grpcMachineServer converts service errors to gRPC statuses.
type grpcMachineServer struct {
	svc *MachineService
}

func (s grpcMachineServer) Run(ctx context.Context, req *wire.RunRequest) (*wire.RunResponse, error) {
	res, err := s.svc.Run(ctx, req)
	if err != nil {
		return nil, status.Error(grpcCode(err), err.Error())
	}
	return res, nil
}

func (s grpcMachineServer) Amplify(ctx context.Context, req *wire.AmplifyRequest) (*wire.AmplifyResponse, error) {
	res, err := s.svc.Amplify(ctx, req)
	if err != nil {
		return nil, status.Error(grpcCode(err), err.Error())
	}
	return res, nil
}

func grpcCode(err error) codes.Code {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return codes.InvalidArgument
	case errors.Is(err, ErrPoolStopped):
		return codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case isProgramFault(err):
		return codes.FailedPrecondition
	}
	return codes.Internal
}

func runGRPCHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.RunRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(machineServer).Run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RunProcedure}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(machineServer).Run(ctx, req.(*wire.RunRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func amplifyGRPCHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.AmplifyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(machineServer).Amplify(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AmplifyProcedure}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(machineServer).Amplify(ctx, req.(*wire.AmplifyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// machineServiceDesc describes MachineService to gRPC. Messages travel as
// CBOR, so there is no generated protobuf code behind it.
var machineServiceDesc = grpc.ServiceDesc{
	ServiceName: MachineServiceName,
	HandlerType: (*machineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Run", Handler: runGRPCHandler},
		{MethodName: "Amplify", Handler: amplifyGRPCHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "intcode/v1/machine.cbor",
}

// RegisterGRPC registers svc with a gRPC server.
func RegisterGRPC(s grpc.ServiceRegistrar, svc *MachineService) {
	s.RegisterService(&machineServiceDesc, grpcMachineServer{svc: svc})
}

// NewGRPCServer creates a gRPC server that speaks CBOR and serves svc.
func NewGRPCServer(svc *MachineService, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ForceServerCodec(wire.Codec{})}, opts...)
	s := grpc.NewServer(opts...)
	RegisterGRPC(s, svc)
	return s
}

// GRPCClient calls a MachineService over gRPC.
type GRPCClient struct {
	conn *grpc.ClientConn
}

// DialGRPC connects to the gRPC service at target. Connections are
// plaintext unless opts supply transport credentials.
func DialGRPC(target string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(wire.Codec{})),
	}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{conn: conn}, nil
}

// Run calls MachineService.Run.
func (c *GRPCClient) Run(ctx context.Context, req *wire.RunRequest) (*wire.RunResponse, error) {
	out := new(wire.RunResponse)
	if err := c.conn.Invoke(ctx, RunProcedure, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Amplify calls MachineService.Amplify.
func (c *GRPCClient) Amplify(ctx context.Context, req *wire.AmplifyRequest) (*wire.AmplifyResponse, error) {
	out := new(wire.AmplifyResponse)
	if err := c.conn.Invoke(ctx, AmplifyProcedure, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying connection.
func (c *GRPCClient) Close() error {
	return c.conn.Close()
}
