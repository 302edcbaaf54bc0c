package monkey

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/monkeywire/internal/protocol"
)

// Echo is a minimal application-side peer. It reads packets from in, answers
// each replayed event with the same event, and reports records it cannot
// parse as app errors. maxPending bounds the unparsed input held back; zero
// means unbounded.
func Echo(in io.Reader, out io.Writer, maxPending int) error {
	var writeErr error
	write := func(packet []byte) {
		if writeErr == nil {
			writeErr = protocol.WritePacket(out, packet)
		}
	}
	h := protocol.HandlerFuncs{
		Event: func(scriptLine string) {
			write(protocol.EncodeEvent(scriptLine))
		},
		ParseError: func(kind string) {
			write(protocol.EncodeError(fmt.Sprintf("can not parse %s packet", kind)))
		},
	}

	state := protocol.NewStreamState(maxPending)
	buf := make([]byte, 4096)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if ferr := state.Feed(buf[:n], h); ferr != nil {
				return ferr
			}
		}
		if writeErr != nil {
			return writeErr
		}
		if errors.Is(err, io.EOF) {
			if derr := state.Drain(h); derr != nil {
				return derr
			}
			if state.Len() > 0 {
				write(protocol.EncodeError(fmt.Sprintf("truncated packet at end of input (%d bytes)", state.Len())))
			}
			return writeErr
		}
		if err != nil {
			return err
		}
	}
}
