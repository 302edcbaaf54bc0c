package monkey

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/danmuck/monkeywire/internal/recording"
	"github.com/danmuck/monkeywire/internal/testutil/testlog"
)

func TestLoadScriptsReplaysSavedRecordingExactly(t *testing.T) {
	testlog.Start(t)
	events := []string{"Test.keyClicks(w, \"a\nb\");", "  indented", "last()"}
	rec := recording.New("/bin/app", nil)
	for _, ev := range events {
		rec.AddEvent(ev)
	}
	path := filepath.Join(t.TempDir(), "session.toml")
	if err := rec.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadScripts([]string{path})
	if err != nil {
		t.Fatalf("load scripts: %v", err)
	}
	if !reflect.DeepEqual(got, events) {
		t.Fatalf("replayed events differ:\n got %q\nwant %q", got, events)
	}
}

func TestLoadScriptsMixesTextAndRecordings(t *testing.T) {
	testlog.Start(t)
	rec := recording.New("/bin/app", nil)
	rec.AddEvent("multi\nline")
	saved := filepath.Join(t.TempDir(), "session.TOML")
	if err := rec.Save(saved); err != nil {
		t.Fatalf("save: %v", err)
	}
	text := writeScript(t, "first()\n\nthird()\n")

	got, err := LoadScripts([]string{text, saved, text})
	if err != nil {
		t.Fatalf("load scripts: %v", err)
	}
	want := []string{"first()", "third()", "multi\nline", "first()", "third()"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected script lines: %q", got)
	}
}

func TestLoadScriptsRejectsInvalidRecording(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("events = [\"x\"]\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadScripts([]string{path})
	if !errors.Is(err, ErrScriptLoad) {
		t.Fatalf("expected ErrScriptLoad, got %v", err)
	}
}

func TestControllerRecordReplayRoundTrip(t *testing.T) {
	testlog.Start(t)
	events := []string{"Test.keyClicks(w, \"a\nb\");", "  indented"}
	source := recording.New("/bin/app", nil)
	for _, ev := range events {
		source.AddEvent(ev)
	}
	path := filepath.Join(t.TempDir(), "session.toml")
	if err := source.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	ctrl := helperController(t, "echo", 0, func(cfg *ControllerConfig) {
		cfg.Scripts = []string{path}
	})
	if ctrl.State() != StateIdle {
		t.Fatalf("unexpected initial state: %s", ctrl.State())
	}
	if _, err := ctrl.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := ctrl.Recording().Snapshot().Events; !reflect.DeepEqual(got, events) {
		t.Fatalf("replayed events differ:\n got %q\nwant %q", got, events)
	}
}
