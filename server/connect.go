package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/chazu/intcode/network"
	"github.com/chazu/intcode/vm"
	"github.com/chazu/intcode/wire"
)

const (
	// MachineServiceName is the fully-qualified name of the service.
	MachineServiceName = "intcode.v1.MachineService"

	// RunProcedure is the path of the Run RPC.
	RunProcedure = "/intcode.v1.MachineService/Run"
	// AmplifyProcedure is the path of the Amplify RPC.
	AmplifyProcedure = "/intcode.v1.MachineService/Amplify"
)

// NewMachineServiceHandler builds an HTTP handler serving svc over the
// Connect, gRPC and gRPC-Web protocols with the CBOR codec. It returns the
// path prefix to mount the handler on.
func NewMachineServiceHandler(svc *MachineService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(wire.Codec{})}, opts...)

	runHandler := connect.NewUnaryHandler(RunProcedure,
		func(ctx context.Context, req *connect.Request[wire.RunRequest]) (*connect.Response[wire.RunResponse], error) {
			res, err := svc.Run(ctx, req.Msg)
			if err != nil {
				return nil, connect.NewError(connectCode(err), err)
			}
			return connect.NewResponse(res), nil
		}, opts...)

	amplifyHandler := connect.NewUnaryHandler(AmplifyProcedure,
		func(ctx context.Context, req *connect.Request[wire.AmplifyRequest]) (*connect.Response[wire.AmplifyResponse], error) {
			res, err := svc.Amplify(ctx, req.Msg)
			if err != nil {
				return nil, connect.NewError(connectCode(err), err)
			}
			return connect.NewResponse(res), nil
		}, opts...)

	return "/" + MachineServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case RunProcedure:
			runHandler.ServeHTTP(w, r)
		case AmplifyProcedure:
			amplifyHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// connectCode maps service errors onto Connect status codes.
func connectCode(err error) connect.Code {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return connect.CodeInvalidArgument
	case errors.Is(err, ErrPoolStopped):
		return connect.CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case isProgramFault(err):
		return connect.CodeFailedPrecondition
	}
	return connect.CodeInternal
}

// isProgramFault reports whether err came from the program itself rather
// than from the service.
func isProgramFault(err error) bool {
	for _, target := range []error{
		vm.ErrDecode, vm.ErrMemoryBounds, vm.ErrInputExhausted, vm.ErrChannel,
		vm.ErrImmediateWrite, vm.ErrUnsupportedInstruction, vm.ErrEmptyMemory,
		network.ErrNoOutput,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Client calls a MachineService over the Connect protocol.
type Client struct {
	run     *connect.Client[wire.RunRequest, wire.RunResponse]
	amplify *connect.Client[wire.AmplifyRequest, wire.AmplifyResponse]
}

// NewClient creates a Client for the service at baseURL
// (e.g. "http://localhost:4567").
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(wire.Codec{})}, opts...)
	return &Client{
		run:     connect.NewClient[wire.RunRequest, wire.RunResponse](httpClient, baseURL+RunProcedure, opts...),
		amplify: connect.NewClient[wire.AmplifyRequest, wire.AmplifyResponse](httpClient, baseURL+AmplifyProcedure, opts...),
	}
}

// Run calls MachineService.Run.
func (c *Client) Run(ctx context.Context, req *wire.RunRequest) (*wire.RunResponse, error) {
	res, err := c.run.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

// Amplify calls MachineService.Amplify.
func (c *Client) Amplify(ctx context.Context, req *wire.AmplifyRequest) (*wire.AmplifyResponse, error) {
	res, err := c.amplify.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
