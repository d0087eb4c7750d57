package vm

import "errors"

// ---------------------------------------------------------------------------
// Machine Error Types
// ---------------------------------------------------------------------------

// Every error a machine reports wraps exactly one of these. All of them are
// fatal: the machine moves to StateFailed and never steps again.
var (
	ErrDecode                 = errors.New("decode error")
	ErrMemoryBounds           = errors.New("read past end of memory")
	ErrInputExhausted         = errors.New("no input value available")
	ErrChannel                = errors.New("channel failure")
	ErrImmediateWrite         = errors.New("cannot write to immediate operand")
	ErrUnsupportedInstruction = errors.New("unsupported instruction")
	ErrEmptyMemory            = errors.New("empty memory")
	ErrHalted                 = errors.New("machine halted")
)

// ErrReceiverGone is returned by a Sink whose receiving end has hung up.
// Machines never surface it; the value is kept in the overflow buffer.
var ErrReceiverGone = errors.New("receiver disconnected")
