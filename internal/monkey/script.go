package monkey

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/monkeywire/internal/observability"
	"github.com/danmuck/monkeywire/internal/protocol"
	"github.com/danmuck/monkeywire/internal/recording"
)

var ErrScriptLoad = errors.New("monkey: script load failed")

// LoadScripts reads script files in order. A .toml file is a recording
// written by recording.Save and contributes its events unchanged; any other
// file contributes each non-blank line as one script line.
func LoadScripts(paths []string) ([]string, error) {
	var lines []string
	for _, path := range paths {
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			snap, err := recording.Load(path)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrScriptLoad, err)
			}
			lines = append(lines, snap.Events...)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScriptLoad, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimRight(line, "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// playbackStream encodes script lines as the application's stdin contents.
func playbackStream(lines []string) *bytes.Reader {
	var buf bytes.Buffer
	for _, line := range lines {
		// bytes.Buffer writes do not fail.
		_ = protocol.WritePacket(&buf, protocol.EncodeEvent(line))
		observability.RecordPacketSent(protocol.KeyEvent)
	}
	return bytes.NewReader(buf.Bytes())
}
