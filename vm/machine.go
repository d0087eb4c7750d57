package vm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("intcode.vm")

// State is the lifecycle state of a machine.
type State int32

const (
	StateRunning State = iota
	StateStopped
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Machine executes one Intcode program. A machine owns its memory and
// registers exclusively and must only be stepped from one goroutine.
type Machine[T Word] struct {
	name string
	mem  *Memory[T]
	ip   T
	base T
	set  InstructionSet

	state atomic.Int32 // State
	err   error
	steps uint64

	input    Source[T]
	output   Sink[T]
	overflow []T // outputs whose receiver had hung up
}

// Option configures a Machine.
type Option[T Word] func(*Machine[T])

// WithInput sets the source for Input instructions. The default is an
// empty Queue.
func WithInput[T Word](src Source[T]) Option[T] {
	return func(m *Machine[T]) { m.input = src }
}

// WithOutput sets the sink for Output instructions. The default is an
// empty Queue.
func WithOutput[T Word](sink Sink[T]) Option[T] {
	return func(m *Machine[T]) { m.output = sink }
}

// WithInstructionSet restricts the machine to an earlier instruction set.
func WithInstructionSet[T Word](set InstructionSet) Option[T] {
	return func(m *Machine[T]) { m.set = set }
}

// WithMemoryLimit bounds memory to [0, limit). Zero means unbounded.
func WithMemoryLimit[T Word](limit T) Option[T] {
	return func(m *Machine[T]) { m.mem.SetLimit(limit) }
}

// WithName labels the machine in log messages.
func WithName[T Word](name string) Option[T] {
	return func(m *Machine[T]) { m.name = name }
}

// New creates a running machine with program loaded at address 0.
func New[T Word](program []T, opts ...Option[T]) *Machine[T] {
	m := &Machine[T]{
		name:   "machine",
		mem:    NewMemory(program),
		set:    SetFull,
		input:  NewQueue[T](),
		output: NewQueue[T](),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the machine's log label.
func (m *Machine[T]) Name() string { return m.name }

// Pointer returns the instruction pointer.
func (m *Machine[T]) Pointer() T { return m.ip }

// RelativeBase returns the relative base register.
func (m *Machine[T]) RelativeBase() T { return m.base }

// Memory returns the machine's memory.
func (m *Machine[T]) Memory() *Memory[T] { return m.mem }

// Steps returns the number of instructions executed.
func (m *Machine[T]) Steps() uint64 { return m.steps }

// State returns the lifecycle state. Safe to call from any goroutine.
func (m *Machine[T]) State() State { return State(m.state.Load()) }

// Err returns the error that failed the machine, if any.
func (m *Machine[T]) Err() error { return m.err }

// Run steps the machine until it stops, then returns the value at address
// zero.
func (m *Machine[T]) Run() (T, error) {
	return m.RunContext(context.Background())
}

// cancelCheckInterval is how many instructions RunContext executes between
// looks at its context.
const cancelCheckInterval = 1024

// RunContext is Run with cancellation. ctx is consulted every
// cancelCheckInterval instructions; cancelling it returns ctx.Err() and
// leaves the machine running, so it can be resumed.
func (m *Machine[T]) RunContext(ctx context.Context) (T, error) {
	log.Debugf("%s: run from %d", m.name, m.ip)
	for n := 0; m.State() == StateRunning; n++ {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				log.Debugf("%s: cancelled at %d", m.name, m.ip)
				return 0, err
			}
		}
		if err := m.Step(); err != nil {
			return 0, err
		}
	}
	if m.State() == StateFailed {
		return 0, m.err
	}
	return m.Result()
}

// Result returns the value at address zero.
func (m *Machine[T]) Result() (T, error) {
	if !m.mem.Has(0) {
		return 0, ErrEmptyMemory
	}
	return m.mem.Read(0)
}

// Step executes exactly one instruction. Once the machine has stopped it
// returns ErrHalted; once it has failed it returns the original error.
func (m *Machine[T]) Step() error {
	switch m.State() {
	case StateStopped:
		return ErrHalted
	case StateFailed:
		return m.err
	}
	if err := m.step(); err != nil {
		m.err = err
		m.state.Store(int32(StateFailed))
		log.Debugf("%s: failed after %d steps: %s", m.name, m.steps, err)
		return err
	}
	m.steps++
	return nil
}

// Output returns the values the machine has produced so far. For a Queue
// sink that is the queue contents; for any other sink it is the overflow
// buffer of values whose receiver had gone away. The result is a copy.
func (m *Machine[T]) Output() []T {
	if q, ok := m.output.(*Queue[T]); ok {
		return q.Values()
	}
	return slices.Clone(m.overflow)
}

// Overflow returns a copy of the values redirected from a disconnected sink.
func (m *Machine[T]) Overflow() []T {
	return slices.Clone(m.overflow)
}

func (m *Machine[T]) step() error {
	raw, err := m.mem.Read(m.ip)
	if err != nil {
		return fmt.Errorf("%w: instruction pointer %d: %w", ErrDecode, m.ip, err)
	}
	op, modes, err := Decode(raw, m.set)
	if err != nil {
		return fmt.Errorf("at %d: %w", m.ip, err)
	}
	if !m.set.Supports(op) {
		return fmt.Errorf("%w: opcode %d at %d (%s set)", ErrUnsupportedInstruction, int(op), m.ip, m.set)
	}
	inst, err := Build(op, m.ip, modes, m.mem, m.base)
	if err != nil {
		return err
	}
	return m.execute(inst)
}

// execute applies inst and moves the instruction pointer. Operands are
// resolved before anything is written, so a failing instruction leaves
// registers untouched.
func (m *Machine[T]) execute(inst Instruction[T]) error {
	switch in := inst.(type) {
	case Add[T]:
		return m.binary(in, in.A, in.B, in.Dst, func(a, b T) T { return a + b })
	case Multiply[T]:
		return m.binary(in, in.A, in.B, in.Dst, func(a, b T) T { return a * b })
	case LessThan[T]:
		return m.binary(in, in.A, in.B, in.Dst, func(a, b T) T { return boolWord[T](a < b) })
	case Equals[T]:
		return m.binary(in, in.A, in.B, in.Dst, func(a, b T) T { return boolWord[T](a == b) })

	case Input[T]:
		addr, err := in.Dst.Address()
		if err != nil {
			return err
		}
		if err := m.mem.Check(addr); err != nil {
			return err
		}
		v, err := m.input.Receive()
		if err != nil {
			return fmt.Errorf("input at %d: %w", m.ip, err)
		}
		if err := in.Dst.Write(m.mem, v); err != nil {
			return err
		}
		m.ip += in.Len()

	case Output[T]:
		v, err := in.Src.Read(m.mem)
		if err != nil {
			return err
		}
		if err := m.output.Send(v); err != nil {
			if !errors.Is(err, ErrReceiverGone) {
				return fmt.Errorf("output at %d: %w", m.ip, err)
			}
			log.Debugf("%s: receiver gone, keeping %d", m.name, v)
			m.overflow = append(m.overflow, v)
		}
		m.ip += in.Len()

	case JumpIfTrue[T]:
		return m.jump(in, in.Cond, in.Target, func(c T) bool { return c != 0 })
	case JumpIfFalse[T]:
		return m.jump(in, in.Cond, in.Target, func(c T) bool { return c == 0 })

	case AdjustRelativeBase[T]:
		v, err := in.Src.Read(m.mem)
		if err != nil {
			return err
		}
		m.base += v
		m.ip += in.Len()

	case Stop[T]:
		m.state.Store(int32(StateStopped))
		log.Debugf("%s: stopped after %d steps", m.name, m.steps+1)

	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedInstruction, inst)
	}
	return nil
}

func (m *Machine[T]) binary(inst Instruction[T], a, b, dst Operand[T], fn func(a, b T) T) error {
	x, err := a.Read(m.mem)
	if err != nil {
		return err
	}
	y, err := b.Read(m.mem)
	if err != nil {
		return err
	}
	if err := dst.Write(m.mem, fn(x, y)); err != nil {
		return fmt.Errorf("%s at %d: %w", inst.Opcode(), m.ip, err)
	}
	m.ip += inst.Len()
	return nil
}

func (m *Machine[T]) jump(inst Instruction[T], cond, target Operand[T], taken func(T) bool) error {
	c, err := cond.Read(m.mem)
	if err != nil {
		return err
	}
	if !taken(c) {
		m.ip += inst.Len()
		return nil
	}
	t, err := target.Read(m.mem)
	if err != nil {
		return err
	}
	m.ip = t
	return nil
}

func boolWord[T Word](b bool) T {
	if b {
		return 1
	}
	return 0
}
