// Package preview tracks the loading state of a project preview and keeps it
// from getting stuck while a build or dev server never reports back.
package preview

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/suPer8Hu/codeassist/internal/metrics"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusBuilding   Status = "building"
	StatusStarting   Status = "starting"
	StatusReady      Status = "ready"
	StatusError      Status = "error"
)

func (s Status) Valid() bool {
	switch s {
	case StatusIdle, StatusGenerating, StatusBuilding, StatusStarting, StatusReady, StatusError:
		return true
	}
	return false
}

const DefaultTimeout = 2 * time.Minute

// State is the externally visible preview state.
type State struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Watchdog moves a building or starting preview to error when it does not
// reach a terminal state within the timeout. Any later transition cancels
// the pending timeout.
type Watchdog struct {
	timeout  time.Duration
	logger   *zap.Logger
	onChange func(State)

	mu    sync.Mutex
	state State
	timer *time.Timer
	gen   uint64
}

func NewWatchdog(timeout time.Duration, logger *zap.Logger, onChange func(State)) *Watchdog {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watchdog{
		timeout:  timeout,
		logger:   logger.Named("preview"),
		onChange: onChange,
		state:    State{Status: StatusIdle},
	}
}

func (w *Watchdog) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Set transitions to status. Entering building or starting arms the
// timeout; every other status disarms it.
func (w *Watchdog) Set(status Status, message string) {
	w.mu.Lock()
	w.disarm()
	w.state = State{Status: status, Message: message}
	if status == StatusBuilding || status == StatusStarting {
		w.arm()
	}
	st := w.state
	w.mu.Unlock()

	w.notify(st)
}

// Reset returns to idle.
func (w *Watchdog) Reset() { w.Set(StatusIdle, "") }

// Stop disarms the timer without changing the state.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	w.disarm()
	w.mu.Unlock()
}

func (w *Watchdog) arm() {
	w.gen++
	gen := w.gen
	w.timer = time.AfterFunc(w.timeout, func() { w.expire(gen) })
}

func (w *Watchdog) disarm() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.gen++
}

func (w *Watchdog) expire(gen uint64) {
	w.mu.Lock()
	if gen != w.gen || (w.state.Status != StatusBuilding && w.state.Status != StatusStarting) {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.state = State{Status: StatusError, Message: "Preview timed out while " + string(w.state.Status)}
	st := w.state
	w.mu.Unlock()

	metrics.PreviewTimeouts.Inc()
	w.logger.Warn("preview timed out", zap.Duration("timeout", w.timeout))
	w.notify(st)
}

func (w *Watchdog) notify(st State) {
	if w.onChange != nil {
		w.onChange(st)
	}
}

var (
	installPhrases = []string{"npm install", "yarn install", "pnpm install"}
	devPhrases     = []string{"npm run dev", "npm start", "yarn dev", "pnpm dev"}
	readyPhrases   = []string{"server running", "local:", "localhost:", "ready in", "compiled successfully"}
	errorPhrases   = []string{"error:", "failed", "cannot resolve", "module not found"}
)

// MonitorOutput inspects one line of terminal output and transitions the
// state when it recognises an install, dev server, success or error
// message. It reports whether the line caused a transition.
func (w *Watchdog) MonitorOutput(line string) bool {
	l := strings.ToLower(line)
	switch {
	case containsAny(l, installPhrases):
		w.Set(StatusBuilding, "Installing dependencies...")
	case containsAny(l, devPhrases):
		w.Set(StatusStarting, "Starting development server...")
	case containsAny(l, readyPhrases):
		w.Set(StatusReady, "")
	case containsAny(l, errorPhrases):
		w.Set(StatusError, strings.TrimSpace(line))
	default:
		return false
	}
	return true
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
