package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Recorder is an Emitter that forwards every command to next and appends it
// to a zstd-compressed trace. Commands are forwarded even when recording fails.
type Recorder struct {
	next  Emitter
	enc   *zstd.Encoder
	tick  int
	count int
}

// NewRecorder writes the header envelope and returns a recorder ready for
// Emit. Close must be called to flush the compressed stream; it does not
// close w.
func NewRecorder(w io.Writer, next Emitter, header Header) (*Recorder, error) {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}

	env, err := NewEnvelope(TypeHeader, 0, header)
	if err != nil {
		enc.Close()
		return nil, err
	}
	if err := WriteEnvelope(enc, env); err != nil {
		enc.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	return &Recorder{next: next, enc: enc}, nil
}

// SetTick stamps subsequent records with the simulation tick.
func (r *Recorder) SetTick(tick int) { r.tick = tick }

// Count returns the number of commands recorded so far.
func (r *Recorder) Count() int { return r.count }

func (r *Recorder) Emit(cmd Command) error {
	var fwdErr error
	if r.next != nil {
		fwdErr = r.next.Emit(cmd)
	}

	env, err := NewEnvelope(cmd.CommandType(), r.tick, cmd)
	if err != nil {
		return errors.Join(fwdErr, err)
	}
	if err := WriteEnvelope(r.enc, env); err != nil {
		return errors.Join(fwdErr, fmt.Errorf("record %s: %w", cmd.CommandType(), err))
	}
	r.count++
	return fwdErr
}

// Close flushes the compressed trace.
func (r *Recorder) Close() error {
	return r.enc.Close()
}
