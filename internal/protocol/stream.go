package protocol

import "fmt"

// StreamState holds the bytes of a stream that ParseChunk has not consumed
// yet. It is owned by the single goroutine reading the channel.
type StreamState struct {
	// MaxPending bounds the retained tail in bytes. Zero means unbounded.
	MaxPending int

	pending []byte
	scan    boundaryScan
	// decodes counts demux passes over pending.
	decodes int
}

// boundaryScan tracks JSON nesting across Feed calls so a chunk that lands
// inside an open object, array or string is not re-decoded. It only has to
// be conservative: ready may be set when no document finished, never the
// reverse.
type boundaryScan struct {
	off     int
	depth   int
	inStr   bool
	escaped bool
	ready   bool
}

func (b *boundaryScan) advance(buf []byte) {
	for i := b.off; i < len(buf); i++ {
		c := buf[i]
		if b.inStr {
			switch {
			case b.escaped:
				b.escaped = false
			case c == '\\':
				b.escaped = true
			case c == '"':
				b.inStr = false
				if b.depth == 0 {
					b.ready = true
				}
			}
			continue
		}
		if b.depth == 0 {
			// Anything at top level may end a scalar or start the next value.
			b.ready = true
		}
		switch c {
		case '"':
			b.inStr = true
		case '{', '[':
			b.depth++
		case '}', ']':
			if b.depth > 0 {
				b.depth--
			}
			if b.depth == 0 {
				b.ready = true
			}
		}
	}
	b.off = len(buf)
}

// NewStreamState returns an empty state with the given tail bound.
func NewStreamState(maxPending int) *StreamState {
	return &StreamState{MaxPending: maxPending}
}

// Feed appends chunk to the pending tail and dispatches every complete
// document to h. A record with a bad shape is reported once and dropped;
// documents behind it stay pending until the next Feed or Drain.
func (s *StreamState) Feed(chunk []byte, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	s.pending = append(s.pending, chunk...)
	s.scan.advance(s.pending)
	if s.scan.ready {
		s.decodes++
		s.scan.ready = false
		consumed, skipTo := demux(s.pending, h)
		if skipTo >= 0 {
			consumed = skipTo
		}
		if consumed > 0 {
			n := copy(s.pending, s.pending[consumed:])
			s.pending = s.pending[:n]
			s.scan = boundaryScan{}
			s.scan.advance(s.pending)
		}
	}

	if s.MaxPending > 0 && len(s.pending) > s.MaxPending {
		return fmt.Errorf("%w: %d > %d bytes", ErrPendingOverflow, len(s.pending), s.MaxPending)
	}
	return nil
}

// Drain re-parses the pending tail until no further progress is made.
func (s *StreamState) Drain(h Handler) error {
	for {
		before := len(s.pending)
		if err := s.Feed(nil, h); err != nil {
			return err
		}
		if len(s.pending) == before {
			return nil
		}
	}
}

// Pending returns a copy of the unconsumed tail.
func (s *StreamState) Pending() []byte {
	out := make([]byte, len(s.pending))
	copy(out, s.pending)
	return out
}

// Len reports the unconsumed tail size in bytes.
func (s *StreamState) Len() int {
	return len(s.pending)
}

// Reset discards the unconsumed tail.
func (s *StreamState) Reset() {
	s.pending = s.pending[:0]
	s.scan = boundaryScan{}
}

// StreamWriter is an io.Writer that feeds each Write into a StreamState.
type StreamWriter struct {
	state   *StreamState
	handler Handler
}

// NewStreamWriter binds a fresh StreamState to h.
func NewStreamWriter(h Handler, maxPending int) *StreamWriter {
	return &StreamWriter{state: NewStreamState(maxPending), handler: h}
}

func (w *StreamWriter) Write(p []byte) (int, error) {
	if err := w.state.Feed(p, w.handler); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close drains documents still pending behind a malformed record. Bytes of an
// unfinished document are discarded.
func (w *StreamWriter) Close() error {
	err := w.state.Drain(w.handler)
	w.state.Reset()
	return err
}

// Pending reports the unconsumed tail size in bytes.
func (w *StreamWriter) Pending() int {
	return w.state.Len()
}
