// Package wire defines the messages exchanged with the remote execution
// service and their CBOR encoding.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode is a canonical encoding mode so identical messages always
// encode to identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// RunRequest asks the service to run one program to completion.
type RunRequest struct {
	Word           string          `cbor:"1,keyasint"` // "int32" or "int64"; empty means int64
	InstructionSet string          `cbor:"2,keyasint,omitempty"`
	MemoryLimit    int64           `cbor:"3,keyasint,omitempty"`
	Program        []int64         `cbor:"4,keyasint"`
	Input          []int64         `cbor:"5,keyasint,omitempty"`
	Patches        map[int64]int64 `cbor:"6,keyasint,omitempty"` // address -> value, applied before running
}

// RunResponse reports a completed run.
type RunResponse struct {
	RunID  string  `cbor:"1,keyasint"`
	Result int64   `cbor:"2,keyasint"` // value at address 0
	Output []int64 `cbor:"3,keyasint"`
	Steps  uint64  `cbor:"4,keyasint"`
}

// AmplifyRequest asks the service to run an amplifier network.
type AmplifyRequest struct {
	Word     string  `cbor:"1,keyasint"`
	Program  []int64 `cbor:"2,keyasint"`
	Phases   []int64 `cbor:"3,keyasint"`
	Signal   int64   `cbor:"4,keyasint"`
	Feedback bool    `cbor:"5,keyasint"`
	Search   bool    `cbor:"6,keyasint"` // try every ordering of Phases
}

// AmplifyResponse reports the network's output signal and the phase
// ordering that produced it.
type AmplifyResponse struct {
	RunID  string  `cbor:"1,keyasint"`
	Signal int64   `cbor:"2,keyasint"`
	Phases []int64 `cbor:"3,keyasint"`
}

// Marshal serializes a message to canonical CBOR.
func Marshal(v any) ([]byte, error) {
	data, err := cborEncMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal %T: %w", v, err)
	}
	return data, nil
}

// Unmarshal deserializes CBOR into v.
func Unmarshal(data []byte, v any) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("wire: unmarshal %T: %w", v, err)
	}
	return nil
}

// CodecName is the content subtype used on both transports.
const CodecName = "cbor"

// Codec adapts Marshal and Unmarshal to the codec interfaces of Connect
// (connect.Codec) and gRPC (encoding.Codec), which share a method set.
type Codec struct{}

// Name returns CodecName.
func (Codec) Name() string { return CodecName }

// Marshal implements the codec interfaces.
func (Codec) Marshal(v any) ([]byte, error) { return Marshal(v) }

// Unmarshal implements the codec interfaces.
func (Codec) Unmarshal(data []byte, v any) error { return Unmarshal(data, v) }
