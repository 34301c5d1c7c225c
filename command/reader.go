package command

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/compress/zstd"
)

// Handler processes one trace record.
type Handler func(env Envelope) error

// Reader replays a recorded command trace, dispatching each record to the
// handler registered for its type.
type Reader struct {
	r        io.Reader
	handlers map[string]Handler
	Header   Header
}

func NewReader(r io.Reader, handlers map[string]Handler) *Reader {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Reader{
		r:        r,
		handlers: handlers,
	}
}

func (t *Reader) RegisterHandler(msgType string, handler Handler) {
	t.handlers[msgType] = handler
}

// ReadLoop consumes the whole trace. It returns nil at a clean end of stream
// and an error for a truncated or corrupt one. Handler errors are logged and
// skipped.
func (t *Reader) ReadLoop() error {
	dec, err := zstd.NewReader(t.r)
	if err != nil {
		return fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	for {
		env, err := ReadEnvelope(dec)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if env.Type == TypeHeader {
			h, err := Decode[Header](env)
			if err != nil {
				return fmt.Errorf("trace header: %w", err)
			}
			t.Header = h
		}

		handler, ok := t.handlers[env.Type]
		if !ok {
			if env.Type != TypeHeader {
				slog.Warn("no handler for trace record", "type", env.Type)
			}
			continue
		}

		if err := handler(env); err != nil {
			slog.Error("trace handler error", "type", env.Type, "tick", env.Tick, "error", err)
			continue
		}
	}
}
