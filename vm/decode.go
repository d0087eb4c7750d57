package vm

import "fmt"

// Mode is an operand addressing mode.
type Mode int

const (
	ModePosition  Mode = 0 // operand is an address
	ModeImmediate Mode = 1 // operand is a literal
	ModeRelative  Mode = 2 // operand plus relative base is an address
)

// String returns a short name for the mode.
func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeImmediate:
		return "immediate"
	case ModeRelative:
		return "relative"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Decode splits a raw instruction word into its opcode and the explicit
// operand modes, first operand first. Operands without an explicit mode
// digit default to ModePosition.
func Decode[T Word](raw T, set InstructionSet) (Opcode, []Mode, error) {
	if raw < 1 {
		return 0, nil, fmt.Errorf("%w: opcode must be positive, got %d", ErrDecode, raw)
	}
	op := Opcode(raw % 100)
	if raw < 100 {
		return op, nil, nil
	}

	var modes []Mode
	for digits := raw / 100; digits > 0; digits /= 10 {
		mode := Mode(digits % 10)
		if !set.SupportsMode(mode) {
			return 0, nil, fmt.Errorf("%w: unrecognised opcode %d (mode digit %d)", ErrDecode, raw, int(mode))
		}
		modes = append(modes, mode)
	}
	return op, modes, nil
}

// modeAt returns the mode for operand i, defaulting to ModePosition.
func modeAt(modes []Mode, i int) Mode {
	if i < len(modes) {
		return modes[i]
	}
	return ModePosition
}
