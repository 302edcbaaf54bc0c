package monkey

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/danmuck/monkeywire/internal/config"
	"github.com/danmuck/monkeywire/internal/observability"
	"github.com/danmuck/monkeywire/internal/protocol"
	"github.com/danmuck/monkeywire/internal/recording"
	"github.com/danmuck/monkeywire/internal/runner"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

var (
	ErrAppRequired    = errors.New("monkey: app path required")
	ErrAlreadyRunning = errors.New("monkey: controller already running")
	ErrAppStart       = errors.New("monkey: app failed")
)

// State is the controller's session phase.
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StatePlaying   State = "playing"
)

// ControllerConfig configures one application session.
type ControllerConfig struct {
	App             string
	Args            []string
	Scripts         []string
	MaxPendingBytes int
	Runner          runner.Runner
	// Observer, when set, receives every record after it is captured.
	Observer protocol.Handler
}

func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		MaxPendingBytes: config.DefaultMaxPendingBytes,
		Runner:          runner.LocalRunner{},
	}
}

// Result summarizes a finished session.
type Result struct {
	Message     string
	ExitCode    int
	Events      int
	Errors      int
	ParseErrors int
}

// Controller runs the application under test and records what it reports.
type Controller struct {
	cfg       ControllerConfig
	log       zerolog.Logger
	recording *recording.Recording

	mu          sync.RWMutex
	state       State
	parseErrors atomic.Int64
}

func NewController(cfg ControllerConfig) *Controller {
	if cfg.Runner == nil {
		cfg.Runner = runner.LocalRunner{}
	}
	return &Controller{
		cfg:       cfg,
		log:       observability.Logger("monkey"),
		recording: recording.New(cfg.App, cfg.Args),
		state:     StateIdle,
	}
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Recording returns the live recording. Readers may poll it while Run is active.
func (c *Controller) Recording() *recording.Recording {
	return c.recording
}

// Run starts the application and blocks until it exits or ctx is cancelled.
// A non-zero exit status is reported in Result, not as an error.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	if strings.TrimSpace(c.cfg.App) == "" {
		return Result{}, ErrAppRequired
	}
	lines, err := LoadScripts(c.cfg.Scripts)
	if err != nil {
		return Result{}, err
	}

	next := StateRecording
	if len(lines) > 0 {
		next = StatePlaying
	}
	if err := c.transition(StateIdle, next); err != nil {
		return Result{}, err
	}
	defer c.setState(StateIdle)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pump := newStreamPump(capture{c: c}, c.cfg.MaxPendingBytes, cancel)
	stderr := &lineLogger{log: c.log}
	streams := runner.Streams{Stdout: pump, Stderr: stderr}
	if len(lines) > 0 {
		streams.Stdin = playbackStream(lines)
	}

	c.log.Info().
		Str("app", c.cfg.App).
		Strs("args", c.cfg.Args).
		Str("state", string(next)).
		Int("script_lines", len(lines)).
		Str("recording_id", c.recording.ID()).
		Msg("monkey.Controller.Run start")

	runErr := c.cfg.Runner.RunStreaming(runCtx, c.cfg.App, c.cfg.Args, streams)
	stderr.Flush()
	pumpErr := pump.Close()

	result := c.result(runErr)
	c.log.Info().
		Str("message", result.Message).
		Int("events", result.Events).
		Int("errors", result.Errors).
		Int("parse_errors", result.ParseErrors).
		Msg("monkey.Controller.Run finished")

	if pumpErr != nil {
		return result, pumpErr
	}
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	if runErr != nil && !isExitStatus(runErr) {
		return result, fmt.Errorf("%w: %v", ErrAppStart, runErr)
	}
	return result, nil
}

func (c *Controller) result(runErr error) Result {
	events, errs := c.recording.Counts()
	out := Result{
		Events:      events,
		Errors:      errs,
		ParseErrors: int(c.parseErrors.Load()),
	}
	code, ok := exitStatus(runErr)
	switch {
	case runErr == nil:
		out.Message = "app finished normally"
	case ok:
		out.ExitCode = code
		out.Message = fmt.Sprintf("app finished: exit status %d", code)
	default:
		out.ExitCode = -1
		out.Message = fmt.Sprintf("app failed: %v", runErr)
	}
	return out
}

func (c *Controller) transition(from, to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != from {
		return fmt.Errorf("%w: state=%s", ErrAlreadyRunning, c.state)
	}
	c.state = to
	return nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func isExitStatus(err error) bool {
	_, ok := exitStatus(err)
	return ok
}

func exitStatus(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var local interface{ ExitCode() int }
	if errors.As(err, &local) {
		return local.ExitCode(), true
	}
	var remote *ssh.ExitError
	if errors.As(err, &remote) {
		return remote.ExitStatus(), true
	}
	return 0, false
}

// capture is the protocol.Handler fed by the stream pump.
type capture struct {
	c *Controller
}

func (h capture) OnEvent(scriptLine string) {
	h.c.recording.AddEvent(scriptLine)
	observability.RecordDispatched(protocol.KeyEvent)
	h.c.log.Debug().Str("script", scriptLine).Msg("app event")
	if h.c.cfg.Observer != nil {
		h.c.cfg.Observer.OnEvent(scriptLine)
	}
}

func (h capture) OnError(errMsg string) {
	h.c.recording.AddError(errMsg)
	observability.RecordDispatched(protocol.KeyAppErrors)
	h.c.log.Warn().Str("error", errMsg).Msg("app error")
	if h.c.cfg.Observer != nil {
		h.c.cfg.Observer.OnError(errMsg)
	}
}

func (h capture) OnParseError(kind string) {
	h.c.parseErrors.Add(1)
	observability.RecordParseError(kind)
	h.c.log.Error().Str("kind", kind).Msg("can not parse record from app")
	if h.c.cfg.Observer != nil {
		h.c.cfg.Observer.OnParseError(kind)
	}
}
