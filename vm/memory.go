package vm

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Word is the integer type a machine computes with. Callers pick int32 for
// programs known to stay small and int64 for everything else.
type Word interface {
	constraints.Signed
}

// Memory is a sparse address space. Addresses that were never written read
// as zero and become populated on first write.
//
// A Memory with a non-zero limit only accepts addresses in [0, limit). That
// mirrors fixed-capacity machines and is opt-in; the default is unbounded.
type Memory[T Word] struct {
	cells map[T]T
	limit T
	high  T // highest populated address, valid when len(cells) > 0
}

// NewMemory loads program at ascending addresses starting from zero.
func NewMemory[T Word](program []T) *Memory[T] {
	m := &Memory[T]{cells: make(map[T]T, len(program))}
	for i, v := range program {
		m.cells[T(i)] = v
	}
	if len(program) > 0 {
		m.high = T(len(program) - 1)
	}
	return m
}

// SetLimit bounds the address space to [0, limit). A limit of zero removes
// the bound.
func (m *Memory[T]) SetLimit(limit T) {
	m.limit = limit
}

// Limit returns the configured bound, or zero for unbounded memory.
func (m *Memory[T]) Limit() T {
	return m.limit
}

// Check reports ErrMemoryBounds when addr lies outside a bounded memory.
func (m *Memory[T]) Check(addr T) error {
	if m.limit > 0 && (addr < 0 || addr >= m.limit) {
		return fmt.Errorf("%w: address %d, limit %d", ErrMemoryBounds, addr, m.limit)
	}
	return nil
}

// Read returns the value at addr.
func (m *Memory[T]) Read(addr T) (T, error) {
	if err := m.Check(addr); err != nil {
		return 0, err
	}
	return m.cells[addr], nil
}

// Write stores value at addr, populating the cell if needed.
func (m *Memory[T]) Write(addr, value T) error {
	if err := m.Check(addr); err != nil {
		return err
	}
	if len(m.cells) == 0 || addr > m.high {
		m.high = addr
	}
	m.cells[addr] = value
	return nil
}

// Has reports whether addr has ever been populated.
func (m *Memory[T]) Has(addr T) bool {
	_, ok := m.cells[addr]
	return ok
}

// Len returns the number of populated cells.
func (m *Memory[T]) Len() int {
	return len(m.cells)
}

// Slice returns a dense copy of addresses 0 through the highest populated
// address. Gaps read as zero. Negative addresses are not included.
func (m *Memory[T]) Slice() []T {
	if len(m.cells) == 0 || m.high < 0 {
		return nil
	}
	out := make([]T, int(m.high)+1)
	for addr, v := range m.cells {
		if addr >= 0 {
			out[int(addr)] = v
		}
	}
	return out
}
