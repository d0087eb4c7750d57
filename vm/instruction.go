package vm

import "fmt"

// Instruction is one decoded instruction. The set of implementations is
// closed: only the types in this file satisfy it, and Machine.execute
// switches over all of them.
type Instruction[T Word] interface {
	// Opcode returns the operation the instruction performs.
	Opcode() Opcode
	// Len returns the encoded length used to advance past the instruction.
	Len() T

	instruction()
}

// Binary operations: Dst = A op B.
type (
	Add[T Word]      struct{ A, B, Dst Operand[T] }
	Multiply[T Word] struct{ A, B, Dst Operand[T] }
	LessThan[T Word] struct{ A, B, Dst Operand[T] }
	Equals[T Word]   struct{ A, B, Dst Operand[T] }
)

// Input stores the next value from the machine's source into Dst.
type Input[T Word] struct{ Dst Operand[T] }

// Output emits Src to the machine's sink.
type Output[T Word] struct{ Src Operand[T] }

// JumpIfTrue jumps to the value of Target when Cond is non-zero.
type JumpIfTrue[T Word] struct{ Cond, Target Operand[T] }

// JumpIfFalse jumps to the value of Target when Cond is zero.
type JumpIfFalse[T Word] struct{ Cond, Target Operand[T] }

// AdjustRelativeBase adds Src to the relative base.
type AdjustRelativeBase[T Word] struct{ Src Operand[T] }

// Stop halts the machine.
type Stop[T Word] struct{}

func (Add[T]) Opcode() Opcode                { return OpAdd }
func (Multiply[T]) Opcode() Opcode           { return OpMultiply }
func (Input[T]) Opcode() Opcode              { return OpInput }
func (Output[T]) Opcode() Opcode             { return OpOutput }
func (JumpIfTrue[T]) Opcode() Opcode         { return OpJumpIfTrue }
func (JumpIfFalse[T]) Opcode() Opcode        { return OpJumpIfFalse }
func (LessThan[T]) Opcode() Opcode           { return OpLessThan }
func (Equals[T]) Opcode() Opcode             { return OpEquals }
func (AdjustRelativeBase[T]) Opcode() Opcode { return OpAdjustRelativeBase }
func (Stop[T]) Opcode() Opcode               { return OpStop }

func (Add[T]) Len() T                { return T(OpAdd.InstructionLen()) }
func (Multiply[T]) Len() T           { return T(OpMultiply.InstructionLen()) }
func (Input[T]) Len() T              { return T(OpInput.InstructionLen()) }
func (Output[T]) Len() T             { return T(OpOutput.InstructionLen()) }
func (JumpIfTrue[T]) Len() T         { return T(OpJumpIfTrue.InstructionLen()) }
func (JumpIfFalse[T]) Len() T        { return T(OpJumpIfFalse.InstructionLen()) }
func (LessThan[T]) Len() T           { return T(OpLessThan.InstructionLen()) }
func (Equals[T]) Len() T             { return T(OpEquals.InstructionLen()) }
func (AdjustRelativeBase[T]) Len() T { return T(OpAdjustRelativeBase.InstructionLen()) }
func (Stop[T]) Len() T               { return T(OpStop.InstructionLen()) }

func (Add[T]) instruction()                {}
func (Multiply[T]) instruction()           {}
func (Input[T]) instruction()              {}
func (Output[T]) instruction()             {}
func (JumpIfTrue[T]) instruction()         {}
func (JumpIfFalse[T]) instruction()        {}
func (LessThan[T]) instruction()           {}
func (Equals[T]) instruction()             {}
func (AdjustRelativeBase[T]) instruction() {}
func (Stop[T]) instruction()               {}

// Build constructs the instruction for op located at ptr, reading its
// operand words from mem. base is the current relative base.
func Build[T Word](op Opcode, ptr T, modes []Mode, mem *Memory[T], base T) (Instruction[T], error) {
	info, ok := opcodeInfoTable[op]
	if !ok {
		return nil, fmt.Errorf("%w: opcode %d at %d", ErrUnsupportedInstruction, int(op), ptr)
	}
	if limit := mem.Limit(); limit > 0 && ptr+T(info.Arity) >= limit {
		return nil, fmt.Errorf("%w: %s at %d needs %d operands, limit %d", ErrMemoryBounds, info.Name, ptr, info.Arity, limit)
	}

	operands := make([]Operand[T], info.Arity)
	for i := range operands {
		v, err := mem.Read(ptr + T(i+1))
		if err != nil {
			return nil, err
		}
		operands[i] = Operand[T]{Value: v, Mode: modeAt(modes, i), Base: base}
	}

	switch op {
	case OpAdd:
		return Add[T]{A: operands[0], B: operands[1], Dst: operands[2]}, nil
	case OpMultiply:
		return Multiply[T]{A: operands[0], B: operands[1], Dst: operands[2]}, nil
	case OpInput:
		return Input[T]{Dst: operands[0]}, nil
	case OpOutput:
		return Output[T]{Src: operands[0]}, nil
	case OpJumpIfTrue:
		return JumpIfTrue[T]{Cond: operands[0], Target: operands[1]}, nil
	case OpJumpIfFalse:
		return JumpIfFalse[T]{Cond: operands[0], Target: operands[1]}, nil
	case OpLessThan:
		return LessThan[T]{A: operands[0], B: operands[1], Dst: operands[2]}, nil
	case OpEquals:
		return Equals[T]{A: operands[0], B: operands[1], Dst: operands[2]}, nil
	case OpAdjustRelativeBase:
		return AdjustRelativeBase[T]{Src: operands[0]}, nil
	default:
		return Stop[T]{}, nil
	}
}
