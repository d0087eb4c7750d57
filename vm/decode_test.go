package vm

import (
	"errors"
	"slices"
	"testing"
)

func TestDecodeOpcodeIsLowTwoDigits(t *testing.T) {
	// Every combination of opcode and up to three valid mode digits.
	for op := int64(1); op < 100; op++ {
		for _, modes := range []int64{0, 1, 2, 10, 11, 12, 20, 21, 22, 100, 101, 102, 110, 111, 112, 120, 121, 122, 200, 201, 202, 210, 211, 212, 220, 221, 222} {
			code := modes*100 + op
			got, _, err := Decode(code, SetFull)
			if err != nil {
				t.Fatalf("Decode(%d) failed: %v", code, err)
			}
			if int64(got) != code%100 {
				t.Fatalf("Decode(%d) opcode = %d, want %d", code, got, code%100)
			}
		}
	}
}

func TestDecodeModes(t *testing.T) {
	tests := []struct {
		raw  int64
		op   Opcode
		want []Mode
	}{
		{1, OpAdd, nil},
		{99, OpStop, nil},
		{1002, OpMultiply, []Mode{ModePosition, ModeImmediate}},
		{21101, OpAdd, []Mode{ModeImmediate, ModeImmediate, ModeRelative}},
		{204, OpOutput, []Mode{ModeRelative}},
		{109, OpAdjustRelativeBase, []Mode{ModeImmediate}},
	}
	for _, tt := range tests {
		op, modes, err := Decode(tt.raw, SetFull)
		if err != nil {
			t.Errorf("Decode(%d) failed: %v", tt.raw, err)
			continue
		}
		if op != tt.op {
			t.Errorf("Decode(%d) opcode = %v, want %v", tt.raw, op, tt.op)
		}
		if !slices.Equal(modes, tt.want) {
			t.Errorf("Decode(%d) modes = %v, want %v", tt.raw, modes, tt.want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		raw int64
		set InstructionSet
	}{
		{0, SetFull},
		{-1, SetFull},
		{-1002, SetFull},
		{301, SetFull},
		{1901, SetFull},
		{201, SetDiagnostic},
		{2001, SetCalculator},
	}
	for _, tt := range tests {
		if _, _, err := Decode(tt.raw, tt.set); !errors.Is(err, ErrDecode) {
			t.Errorf("Decode(%d, %v) error = %v, want ErrDecode", tt.raw, tt.set, err)
		}
	}
}

func TestModeAtDefaultsToPosition(t *testing.T) {
	modes := []Mode{ModeImmediate}
	if modeAt(modes, 0) != ModeImmediate {
		t.Error("modeAt(0) should be immediate")
	}
	if modeAt(modes, 2) != ModePosition {
		t.Error("modeAt(2) should default to position")
	}
}

func TestOpcodeMetadata(t *testing.T) {
	tests := []struct {
		op    Opcode
		name  string
		arity int
	}{
		{OpAdd, "ADD", 3},
		{OpMultiply, "MUL", 3},
		{OpInput, "IN", 1},
		{OpOutput, "OUT", 1},
		{OpJumpIfTrue, "JT", 2},
		{OpJumpIfFalse, "JF", 2},
		{OpLessThan, "LT", 3},
		{OpEquals, "EQ", 3},
		{OpAdjustRelativeBase, "ARB", 1},
		{OpStop, "STOP", 0},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.name {
			t.Errorf("Opcode(%d).String() = %q, want %q", int(tt.op), got, tt.name)
		}
		if got := tt.op.Arity(); got != tt.arity {
			t.Errorf("Opcode(%d).Arity() = %d, want %d", int(tt.op), got, tt.arity)
		}
	}
	if got := Opcode(42).String(); got != "UNKNOWN(42)" {
		t.Errorf("Opcode(42).String() = %q", got)
	}
}

func TestParseInstructionSet(t *testing.T) {
	for _, set := range []InstructionSet{SetFull, SetDiagnostic, SetCalculator} {
		got, err := ParseInstructionSet(set.String())
		if err != nil || got != set {
			t.Errorf("ParseInstructionSet(%q) = %v, %v", set.String(), got, err)
		}
	}
	if got, err := ParseInstructionSet(""); err != nil || got != SetFull {
		t.Errorf("ParseInstructionSet(\"\") = %v, %v, want full", got, err)
	}
	if _, err := ParseInstructionSet("turbo"); err == nil {
		t.Error("ParseInstructionSet(turbo) should fail")
	}
}

func TestBuildInstructionLengths(t *testing.T) {
	mem := NewMemory([]int64{0, 0, 0, 0, 0})
	tests := []struct {
		op   Opcode
		want int64
	}{
		{OpAdd, 4}, {OpMultiply, 4}, {OpInput, 2}, {OpOutput, 2},
		{OpJumpIfTrue, 3}, {OpJumpIfFalse, 3}, {OpLessThan, 4},
		{OpEquals, 4}, {OpAdjustRelativeBase, 2}, {OpStop, 1},
	}
	for _, tt := range tests {
		inst, err := Build(tt.op, 0, nil, mem, 0)
		if err != nil {
			t.Fatalf("Build(%v) failed: %v", tt.op, err)
		}
		if inst.Opcode() != tt.op {
			t.Errorf("Build(%v).Opcode() = %v", tt.op, inst.Opcode())
		}
		if inst.Len() != tt.want {
			t.Errorf("Build(%v).Len() = %d, want %d", tt.op, inst.Len(), tt.want)
		}
	}
	if _, err := Build(Opcode(50), 0, nil, mem, 0); !errors.Is(err, ErrUnsupportedInstruction) {
		t.Errorf("Build(50) error = %v, want ErrUnsupportedInstruction", err)
	}
}

func TestBuildCapturesRelativeBase(t *testing.T) {
	mem := NewMemory([]int64{204, -3})
	inst, err := Build(OpOutput, 0, []Mode{ModeRelative}, mem, 10)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	out, ok := inst.(Output[int64])
	if !ok {
		t.Fatalf("Build returned %T, want Output", inst)
	}
	addr, err := out.Src.Address()
	if err != nil || addr != 7 {
		t.Errorf("Src.Address() = %d, %v, want 7", addr, err)
	}
}
