package vm

import "fmt"

// Operand is a decoded instruction operand. Base is the relative base at
// the time the instruction was decoded.
type Operand[T Word] struct {
	Value T
	Mode  Mode
	Base  T
}

// Address returns the memory address the operand refers to. Immediate
// operands have no address.
func (o Operand[T]) Address() (T, error) {
	switch o.Mode {
	case ModePosition:
		return o.Value, nil
	case ModeRelative:
		return o.Value + o.Base, nil
	case ModeImmediate:
		return 0, fmt.Errorf("%w (value %d)", ErrImmediateWrite, o.Value)
	}
	return 0, fmt.Errorf("%w: unrecognised mode %d", ErrDecode, int(o.Mode))
}

// Read resolves the operand to a value.
func (o Operand[T]) Read(mem *Memory[T]) (T, error) {
	if o.Mode == ModeImmediate {
		return o.Value, nil
	}
	addr, err := o.Address()
	if err != nil {
		return 0, err
	}
	return mem.Read(addr)
}

// Write stores value at the operand's address.
func (o Operand[T]) Write(mem *Memory[T], value T) error {
	addr, err := o.Address()
	if err != nil {
		return err
	}
	return mem.Write(addr, value)
}

// String formats the operand in assembler-like notation.
func (o Operand[T]) String() string {
	switch o.Mode {
	case ModeImmediate:
		return fmt.Sprintf("#%d", o.Value)
	case ModeRelative:
		return fmt.Sprintf("[rb%+d]", o.Value)
	default:
		return fmt.Sprintf("[%d]", o.Value)
	}
}
