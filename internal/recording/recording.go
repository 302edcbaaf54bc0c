// Package recording keeps the script lines and application errors captured
// during one run of the application under test.
package recording

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

var ErrInvalidRecording = errors.New("recording: invalid file")

// Snapshot is a point-in-time copy of a Recording. It is also the file shape.
type Snapshot struct {
	ID        string    `toml:"id" json:"id"`
	App       string    `toml:"app" json:"app"`
	Args      []string  `toml:"args" json:"args"`
	StartedAt time.Time `toml:"started_at" json:"started_at"`
	Events    []string  `toml:"events" json:"events"`
	Errors    []string  `toml:"errors" json:"errors"`
}

// Recording accumulates records from the stream pump. Safe for concurrent use.
type Recording struct {
	mu        sync.RWMutex
	id        string
	app       string
	args      []string
	startedAt time.Time
	events    []string
	errors    []string
}

func New(app string, args []string) *Recording {
	return &Recording{
		id:        uuid.NewString(),
		app:       app,
		args:      append([]string(nil), args...),
		startedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func (r *Recording) ID() string {
	return r.id
}

func (r *Recording) AddEvent(scriptLine string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, scriptLine)
}

func (r *Recording) AddError(errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, errMsg)
}

// Counts returns the number of events and errors captured so far.
func (r *Recording) Counts() (events, errs int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events), len(r.errors)
}

func (r *Recording) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{
		ID:        r.id,
		App:       r.app,
		Args:      append([]string{}, r.args...),
		StartedAt: r.startedAt,
		Events:    append([]string{}, r.events...),
		Errors:    append([]string{}, r.errors...),
	}
}

// Script joins the recorded script lines, one per line. Events carrying
// embedded newlines do not survive this form; replay from Save output instead.
func (r *Recording) Script() string {
	snap := r.Snapshot()
	if len(snap.Events) == 0 {
		return ""
	}
	return strings.Join(snap.Events, "\n") + "\n"
}

// Save writes the recording as TOML to path.
func (r *Recording) Save(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("recording save failed (%s): %w", path, err)
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("recording encode failed (%s): %w", path, err)
	}
	return f.Close()
}

// Encode writes the recording as TOML to w.
func (r *Recording) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(r.Snapshot())
}

// Load reads a recording previously written by Save.
func Load(path string) (Snapshot, error) {
	var snap Snapshot
	if _, err := toml.DecodeFile(path, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("recording load failed (%s): %w", path, err)
	}
	if strings.TrimSpace(snap.ID) == "" {
		return Snapshot{}, fmt.Errorf("%w: missing id (%s)", ErrInvalidRecording, path)
	}
	return snap, nil
}
