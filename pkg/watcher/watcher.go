// Package watcher polls the source store and triggers a processing run
// whenever unconverted documents appear.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jurisgraph/jurisgraph"
	"github.com/jurisgraph/jurisgraph/pkg/types"
)

// Status is a point-in-time view of the watcher.
type Status struct {
	Running         bool       `json:"running"`
	IntervalSeconds int        `json:"interval_seconds"`
	LastCheck       *time.Time `json:"last_check,omitempty"`
	LastTrigger     *time.Time `json:"last_trigger,omitempty"`
	ChecksPerformed int        `json:"checks_performed"`
	RunsTriggered   int        `json:"runs_triggered"`
}

// Watcher runs the periodic check loop. Start and Stop may be called from
// any goroutine.
type Watcher struct {
	client   *jurisgraph.Client
	interval time.Duration
	log      *slog.Logger

	mu          sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
	lastCheck   time.Time
	lastTrigger time.Time
	checks      int
	triggers    int
}

// New creates a watcher over the given coordinator.
func New(client *jurisgraph.Client, interval time.Duration, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{client: client, interval: interval, log: log}
}

// Start launches the polling loop. Calling Start on a running watcher is a
// no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "watcher")
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	w.log.Info("watcher started", "interval", w.interval.String())
	go w.loop(ctx)
}

// Stop halts the polling loop and waits for the in-flight check to return.
// A run already handed to the coordinator is not interrupted.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel = nil
	w.done = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	w.log.Info("watcher stopped")
}

// Status reports the watcher's counters.
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Status{
		Running:         w.cancel != nil,
		IntervalSeconds: int(w.interval.Seconds()),
		ChecksPerformed: w.checks,
		RunsTriggered:   w.triggers,
	}
	if !w.lastCheck.IsZero() {
		t := w.lastCheck
		s.LastCheck = &t
	}
	if !w.lastTrigger.IsZero() {
		t := w.lastTrigger
		s.LastTrigger = &t
	}
	return s
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// check counts pending documents and triggers an incremental run when any
// exist. A coordinator already mid-run just means another trigger got there
// first; the next tick picks up whatever is left.
func (w *Watcher) check(ctx context.Context) {
	w.mu.Lock()
	w.checks++
	w.lastCheck = time.Now()
	w.mu.Unlock()

	pending, err := w.client.UnconvertedCount(ctx)
	if err != nil {
		w.log.Error("watcher failed to count unconverted documents", "error", err)
		return
	}
	if pending == 0 {
		w.log.Debug("watcher check: nothing pending")
		return
	}

	w.log.Info("watcher found unconverted documents, triggering run", "pending", pending)
	w.mu.Lock()
	w.triggers++
	w.lastTrigger = time.Now()
	w.mu.Unlock()

	result, err := w.client.Run(ctx, jurisgraph.Options{Append: true})
	if errors.Is(err, types.ErrRunInProgress) {
		w.log.Info("watcher skipped trigger: run already in progress")
		return
	}
	if err != nil {
		w.log.Error("watcher-triggered run failed to start", "error", err)
		return
	}
	if !result.Succeeded() {
		w.log.Error("watcher-triggered run failed", "message", result.Message)
	}
}
