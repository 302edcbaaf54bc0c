package monkey

import (
	"bytes"
	"context"
	"strings"

	"github.com/danmuck/monkeywire/internal/observability"
	"github.com/danmuck/monkeywire/internal/protocol"
	"github.com/rs/zerolog"
)

// streamPump feeds application stdout into the demultiplexer. When the tail
// bound trips it cancels the run and discards the rest of the stream so the
// application never blocks on a full pipe.
type streamPump struct {
	w      *protocol.StreamWriter
	cancel context.CancelFunc
	err    error
}

func newStreamPump(h protocol.Handler, maxPending int, cancel context.CancelFunc) *streamPump {
	return &streamPump{
		w:      protocol.NewStreamWriter(h, maxPending),
		cancel: cancel,
	}
}

func (p *streamPump) Write(b []byte) (int, error) {
	if p.err != nil {
		return len(b), nil
	}
	if _, err := p.w.Write(b); err != nil {
		p.err = err
		p.cancel()
		return len(b), nil
	}
	observability.SetPendingBytes(p.w.Pending())
	return len(b), nil
}

func (p *streamPump) Close() error {
	defer observability.SetPendingBytes(0)
	if p.err != nil {
		return p.err
	}
	return p.w.Close()
}

// lineLogger logs application stderr one line at a time.
type lineLogger struct {
	log   zerolog.Logger
	buf   []byte
	lines int
}

func (l *lineLogger) Write(p []byte) (int, error) {
	l.buf = append(l.buf, p...)
	for {
		i := bytes.IndexByte(l.buf, '\n')
		if i < 0 {
			break
		}
		l.emit(l.buf[:i])
		l.buf = l.buf[i+1:]
	}
	return len(p), nil
}

func (l *lineLogger) Flush() {
	if len(l.buf) > 0 {
		l.emit(l.buf)
		l.buf = nil
	}
}

func (l *lineLogger) emit(raw []byte) {
	line := strings.TrimRight(string(raw), "\r")
	if strings.TrimSpace(line) == "" {
		return
	}
	l.lines++
	l.log.Warn().Str("line", line).Msg("app stderr")
}
