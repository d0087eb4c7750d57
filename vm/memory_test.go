package vm

import (
	"errors"
	"slices"
	"testing"
)

func TestMemoryUnwrittenReadsZero(t *testing.T) {
	mem := NewMemory([]int64{1, 2, 3})
	for _, addr := range []int64{3, 100, 1 << 40, -5} {
		v, err := mem.Read(addr)
		if err != nil {
			t.Fatalf("Read(%d) failed: %v", addr, err)
		}
		if v != 0 {
			t.Errorf("Read(%d) = %d, want 0", addr, v)
		}
		if mem.Has(addr) {
			t.Errorf("Has(%d) = true after read", addr)
		}
	}
}

func TestMemoryWriteThenRead(t *testing.T) {
	mem := NewMemory[int64](nil)
	for addr, v := range map[int64]int64{0: 5, 1 << 40: -9, -3: 4} {
		if err := mem.Write(addr, v); err != nil {
			t.Fatalf("Write(%d) failed: %v", addr, err)
		}
		got, err := mem.Read(addr)
		if err != nil || got != v {
			t.Errorf("Read(%d) = %d, %v, want %d", addr, got, err, v)
		}
	}
	if mem.Len() != 3 {
		t.Errorf("Len = %d, want 3", mem.Len())
	}
}

func TestMemorySlice(t *testing.T) {
	mem := NewMemory([]int32{1, 2})
	if err := mem.Write(4, 9); err != nil {
		t.Fatal(err)
	}
	if err := mem.Write(-1, 7); err != nil {
		t.Fatal(err)
	}
	if got, want := mem.Slice(), []int32{1, 2, 0, 0, 9}; !slices.Equal(got, want) {
		t.Errorf("Slice = %v, want %v", got, want)
	}
	if got := NewMemory[int32](nil).Slice(); got != nil {
		t.Errorf("empty Slice = %v, want nil", got)
	}
}

func TestMemoryLimit(t *testing.T) {
	mem := NewMemory([]int64{1, 2, 3})
	mem.SetLimit(3)
	if _, err := mem.Read(2); err != nil {
		t.Errorf("Read(2) failed: %v", err)
	}
	for _, addr := range []int64{3, -1} {
		if _, err := mem.Read(addr); !errors.Is(err, ErrMemoryBounds) {
			t.Errorf("Read(%d) error = %v, want ErrMemoryBounds", addr, err)
		}
		if err := mem.Write(addr, 1); !errors.Is(err, ErrMemoryBounds) {
			t.Errorf("Write(%d) error = %v, want ErrMemoryBounds", addr, err)
		}
	}
}

func TestOperandResolution(t *testing.T) {
	mem := NewMemory([]int64{10, 20, 30, 40})
	tests := []struct {
		op   Operand[int64]
		want int64
	}{
		{Operand[int64]{Value: 2, Mode: ModePosition}, 30},
		{Operand[int64]{Value: 2, Mode: ModeImmediate}, 2},
		{Operand[int64]{Value: -1, Mode: ModeRelative, Base: 4}, 40},
		{Operand[int64]{Value: 50, Mode: ModePosition}, 0},
	}
	for _, tt := range tests {
		got, err := tt.op.Read(mem)
		if err != nil {
			t.Fatalf("%v.Read failed: %v", tt.op, err)
		}
		if got != tt.want {
			t.Errorf("%v.Read = %d, want %d", tt.op, got, tt.want)
		}
	}

	rel := Operand[int64]{Value: 1, Mode: ModeRelative, Base: 1}
	if err := rel.Write(mem, 99); err != nil {
		t.Fatalf("relative Write failed: %v", err)
	}
	if v, _ := mem.Read(2); v != 99 {
		t.Errorf("mem[2] = %d, want 99", v)
	}

	imm := Operand[int64]{Value: 1, Mode: ModeImmediate}
	if err := imm.Write(mem, 1); !errors.Is(err, ErrImmediateWrite) {
		t.Errorf("immediate Write error = %v, want ErrImmediateWrite", err)
	}
}
