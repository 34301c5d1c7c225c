package command

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// maxEnvelopeSize bounds a single frame; anything larger is a corrupt trace.
const maxEnvelopeSize = 1 << 20

// Envelope is one trace record: a command type, the tick it was issued on
// and the command itself as raw JSON. Decode turns Data back into a command.
type Envelope struct {
	Type string          `json:"type"`
	Tick int             `json:"tick"`
	Data json.RawMessage `json:"data"`
}

// NewEnvelope stamps payload with its type and tick.
func NewEnvelope(msgType string, tick int, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", msgType, err)
	}
	return Envelope{Type: msgType, Tick: tick, Data: raw}, nil
}

// Decode unmarshals the envelope payload into T.
func Decode[T any](env Envelope) (T, error) {
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s at tick %d: %w", env.Type, env.Tick, err)
	}
	return v, nil
}

// ReadEnvelope reads one trace frame: a 4-byte little-endian length followed
// by that many bytes of JSON. A clean end of stream surfaces as io.EOF.
func ReadEnvelope(r io.Reader) (Envelope, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return Envelope{}, fmt.Errorf("read trace frame length: %w", err)
	}
	if size == 0 || size > maxEnvelopeSize {
		return Envelope{}, fmt.Errorf("trace frame length %d outside (0, %d]", size, maxEnvelopeSize)
	}

	frame := make([]byte, size)
	if _, err := io.ReadFull(r, frame); err != nil {
		return Envelope{}, fmt.Errorf("read trace frame of %d bytes: %w", size, err)
	}

	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode trace frame: %w", err)
	}
	return env, nil
}

// WriteEnvelope appends env to w as one trace frame.
func WriteEnvelope(w io.Writer, env Envelope) error {
	frame, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", env.Type, err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(frame))); err != nil {
		return fmt.Errorf("write %s frame length: %w", env.Type, err)
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write %s frame: %w", env.Type, err)
	}
	return nil
}
