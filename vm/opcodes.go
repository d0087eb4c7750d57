package vm

import "fmt"

// Opcode is the low two decimal digits of an instruction word.
type Opcode int

const (
	OpAdd                Opcode = 1  // dst = a + b
	OpMultiply           Opcode = 2  // dst = a * b
	OpInput              Opcode = 3  // dst = next input value
	OpOutput             Opcode = 4  // emit src
	OpJumpIfTrue         Opcode = 5  // if src != 0: ip = target
	OpJumpIfFalse        Opcode = 6  // if src == 0: ip = target
	OpLessThan           Opcode = 7  // dst = a < b ? 1 : 0
	OpEquals             Opcode = 8  // dst = a == b ? 1 : 0
	OpAdjustRelativeBase Opcode = 9  // base += src
	OpStop               Opcode = 99 // halt
)

// OpcodeInfo describes the encoding of an opcode.
type OpcodeInfo struct {
	Name  string // Human-readable name
	Arity int    // Number of operand words following the instruction word
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpAdd:                {"ADD", 3},
	OpMultiply:           {"MUL", 3},
	OpInput:              {"IN", 1},
	OpOutput:             {"OUT", 1},
	OpJumpIfTrue:         {"JT", 2},
	OpJumpIfFalse:        {"JF", 2},
	OpLessThan:           {"LT", 3},
	OpEquals:             {"EQ", 3},
	OpAdjustRelativeBase: {"ARB", 1},
	OpStop:               {"STOP", 0},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(%d)", int(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Arity returns the number of operands the opcode takes.
func (op Opcode) Arity() int {
	return GetOpcodeInfo(op).Arity
}

// InstructionLen returns the encoded length of an instruction (1 + operands).
func (op Opcode) InstructionLen() int {
	return 1 + op.Arity()
}

// IsJump returns true for the conditional jump instructions.
func (op Opcode) IsJump() bool {
	return op == OpJumpIfTrue || op == OpJumpIfFalse
}

// ---------------------------------------------------------------------------
// Instruction sets
// ---------------------------------------------------------------------------

// InstructionSet selects which opcodes and addressing modes a machine
// accepts. Later sets are supersets of earlier ones.
type InstructionSet int

const (
	// SetFull is the complete instruction set with relative addressing.
	SetFull InstructionSet = iota
	// SetDiagnostic adds I/O, jumps and comparisons to SetCalculator.
	SetDiagnostic
	// SetCalculator only adds, multiplies and stops.
	SetCalculator
)

var instructionSetNames = map[InstructionSet]string{
	SetFull:       "full",
	SetDiagnostic: "diagnostic",
	SetCalculator: "calculator",
}

// String returns the configuration name of the set.
func (s InstructionSet) String() string {
	if name, ok := instructionSetNames[s]; ok {
		return name
	}
	return fmt.Sprintf("InstructionSet(%d)", int(s))
}

// ParseInstructionSet maps a configuration name back to a set.
// The empty string selects SetFull.
func ParseInstructionSet(name string) (InstructionSet, error) {
	if name == "" {
		return SetFull, nil
	}
	for set, n := range instructionSetNames {
		if n == name {
			return set, nil
		}
	}
	return 0, fmt.Errorf("unknown instruction set %q", name)
}

// Supports reports whether op is part of the set.
func (s InstructionSet) Supports(op Opcode) bool {
	switch op {
	case OpAdd, OpMultiply, OpStop:
		return true
	case OpInput, OpOutput, OpJumpIfTrue, OpJumpIfFalse, OpLessThan, OpEquals:
		return s == SetFull || s == SetDiagnostic
	case OpAdjustRelativeBase:
		return s == SetFull
	}
	return false
}

// SupportsMode reports whether operands may use the addressing mode.
func (s InstructionSet) SupportsMode(mode Mode) bool {
	switch mode {
	case ModePosition, ModeImmediate:
		return true
	case ModeRelative:
		return s == SetFull
	}
	return false
}
