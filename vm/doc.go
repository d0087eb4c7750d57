// Package vm implements the Intcode virtual machine.
//
// This package contains:
//   - Sparse, zero-defaulting memory over a signed word type
//   - Instruction decoding (opcode plus per-operand addressing modes)
//   - A closed set of instruction types and the machine that executes them
//   - Input sources and output sinks: an in-process FIFO queue and a
//     zero-capacity rendezvous pipe for machines running on separate goroutines
//
// A machine is generic over its word type so that callers can choose a
// bounded (int32) or wide (int64) domain for the programs they run.
package vm
