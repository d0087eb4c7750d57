package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chazu/intcode/network"
	"github.com/chazu/intcode/vm"
	"github.com/chazu/intcode/wire"
)

// ErrInvalidRequest marks requests rejected before any machine ran.
var ErrInvalidRequest = errors.New("invalid request")

// MachineService runs programs submitted over the wire. All work happens
// on a bounded Pool.
type MachineService struct {
	pool *Pool
}

// NewMachineService creates a service that executes on pool.
func NewMachineService(pool *Pool) *MachineService {
	return &MachineService{pool: pool}
}

// Run executes req.Program on a single machine with req.Input queued.
func (s *MachineService) Run(ctx context.Context, req *wire.RunRequest) (*wire.RunResponse, error) {
	id := uuid.NewString()
	log.Infof("run %s: %d words, word=%s", id, len(req.Program), wordName(req.Word))

	v, err := s.pool.Do(ctx, func() (any, error) {
		switch wordName(req.Word) {
		case "int32":
			return runProgram[int32](ctx, req)
		case "int64":
			return runProgram[int64](ctx, req)
		}
		return nil, fmt.Errorf("%w: unknown word %q", ErrInvalidRequest, req.Word)
	})
	if err != nil {
		log.Warningf("run %s: %s", id, err)
		return nil, err
	}
	res := v.(*wire.RunResponse)
	res.RunID = id
	return res, nil
}

// Amplify runs an amplifier network, or searches every phase ordering when
// req.Search is set.
func (s *MachineService) Amplify(ctx context.Context, req *wire.AmplifyRequest) (*wire.AmplifyResponse, error) {
	id := uuid.NewString()
	log.Infof("amplify %s: phases=%v feedback=%t search=%t", id, req.Phases, req.Feedback, req.Search)

	v, err := s.pool.Do(ctx, func() (any, error) {
		switch wordName(req.Word) {
		case "int32":
			return amplify[int32](ctx, req)
		case "int64":
			return amplify[int64](ctx, req)
		}
		return nil, fmt.Errorf("%w: unknown word %q", ErrInvalidRequest, req.Word)
	})
	if err != nil {
		log.Warningf("amplify %s: %s", id, err)
		return nil, err
	}
	res := v.(*wire.AmplifyResponse)
	res.RunID = id
	return res, nil
}

func wordName(w string) string {
	if w == "" {
		return "int64"
	}
	return w
}

func runProgram[T vm.Word](ctx context.Context, req *wire.RunRequest) (*wire.RunResponse, error) {
	if len(req.Program) == 0 {
		return nil, fmt.Errorf("%w: empty program", ErrInvalidRequest)
	}
	set, err := vm.ParseInstructionSet(req.InstructionSet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	prog, err := narrow[T](req.Program)
	if err != nil {
		return nil, err
	}
	input, err := narrow[T](req.Input)
	if err != nil {
		return nil, err
	}
	limit, err := narrowOne[T](req.MemoryLimit)
	if err != nil {
		return nil, err
	}

	out := vm.NewQueue[T]()
	m := vm.New(prog,
		vm.WithInput[T](vm.NewQueue(input...)),
		vm.WithOutput[T](out),
		vm.WithInstructionSet[T](set),
		vm.WithMemoryLimit(limit),
	)
	for addr, value := range req.Patches {
		a, err := narrowOne[T](addr)
		if err != nil {
			return nil, err
		}
		v, err := narrowOne[T](value)
		if err != nil {
			return nil, err
		}
		if err := m.Memory().Write(a, v); err != nil {
			return nil, fmt.Errorf("%w: patch %d: %w", ErrInvalidRequest, addr, err)
		}
	}

	result, err := m.RunContext(ctx)
	if err != nil {
		return nil, err
	}
	return &wire.RunResponse{
		Result: int64(result),
		Output: widen(out.Values()),
		Steps:  m.Steps(),
	}, nil
}

func amplify[T vm.Word](ctx context.Context, req *wire.AmplifyRequest) (*wire.AmplifyResponse, error) {
	if len(req.Program) == 0 {
		return nil, fmt.Errorf("%w: empty program", ErrInvalidRequest)
	}
	if len(req.Phases) == 0 {
		return nil, fmt.Errorf("%w: no phases", ErrInvalidRequest)
	}
	if req.Search && len(req.Phases) > network.MaxSearchPhases {
		return nil, fmt.Errorf("%w: search accepts at most %d phases, got %d",
			ErrInvalidRequest, network.MaxSearchPhases, len(req.Phases))
	}
	prog, err := narrow[T](req.Program)
	if err != nil {
		return nil, err
	}
	phases, err := narrow[T](req.Phases)
	if err != nil {
		return nil, err
	}
	signal, err := narrowOne[T](req.Signal)
	if err != nil {
		return nil, err
	}

	cfg := network.Config[T]{Set: vm.SetFull}
	if req.Search {
		best, err := network.Search(ctx, prog, phases, signal, req.Feedback, cfg)
		if err != nil {
			return nil, err
		}
		return &wire.AmplifyResponse{Signal: int64(best.Signal), Phases: widen(best.Phases)}, nil
	}

	var got T
	if req.Feedback {
		got, err = network.Feedback(ctx, prog, phases, signal, cfg)
	} else {
		got, err = network.Chain(ctx, prog, phases, signal, cfg)
	}
	if err != nil {
		return nil, err
	}
	return &wire.AmplifyResponse{Signal: int64(got), Phases: req.Phases}, nil
}

func narrowOne[T vm.Word](v int64) (T, error) {
	t := T(v)
	if int64(t) != v {
		var zero T
		return zero, fmt.Errorf("%w: value %d does not fit in %T", ErrInvalidRequest, v, zero)
	}
	return t, nil
}

func narrow[T vm.Word](values []int64) ([]T, error) {
	out := make([]T, len(values))
	for i, v := range values {
		t, err := narrowOne[T](v)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func widen[T vm.Word](values []T) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}
