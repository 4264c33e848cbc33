// Package loader invokes the external dgraph live bulk loader over the
// generated triple file. The upsert predicates passed on every invocation
// are what merge statements into existing nodes by natural-key field, so new
// batches link to existing judges, advocates and judgments instead of
// creating duplicates.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/sony/gobreaker"
)

// upsertPredicates are the natural-key fields the loader merges on.
var upsertPredicates = []string{
	"judgment_id",
	"doc_id",
	"judge_id",
	"advocate_id",
	"outcome_id",
	"case_duration_id",
}

// Runner executes an external command. Tests substitute a fake so nothing is
// ever exec'd.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Config holds the loader invocation parameters.
type Config struct {
	// Alpha and Zero are the dgraph endpoints inside the docker network.
	Alpha string
	Zero  string
	// SchemaFile is the fixed schema passed on every load.
	SchemaFile string
	// DockerImage and DockerNetwork configure the container the loader runs in.
	DockerImage   string
	DockerNetwork string
	// DataDir is the host directory mounted into the container at /data.
	DataDir string
}

// Live runs dgraph live uploads behind a circuit breaker, so a flapping
// loader fails fast instead of stalling every watcher-triggered run.
type Live struct {
	cfg    Config
	runner Runner
	cb     *gobreaker.CircuitBreaker
	log    *slog.Logger
}

// BreakerSettings configures the upload circuit breaker.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// NewLive creates a loader. runner may be nil to exec for real.
func NewLive(cfg Config, breaker BreakerSettings, runner Runner, log *slog.Logger) *Live {
	if log == nil {
		log = slog.Default()
	}
	if runner == nil {
		runner = execRunner{}
	}
	if breaker.ReadyToTripRatio <= 0 {
		breaker.ReadyToTripRatio = 0.6
	}

	st := gobreaker.Settings{
		Name:        "dgraph-live",
		MaxRequests: breaker.MaxRequests,
		Interval:    breaker.Interval,
		Timeout:     breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= breaker.ReadyToTripRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				log.Error("circuit breaker tripped", "name", name, "from", from.String(), "to", to.String())
			}
		},
	}

	return &Live{cfg: cfg, runner: runner, cb: gobreaker.NewCircuitBreaker(st), log: log}
}

// Upload loads the triple file into dgraph. rdfPath must live under DataDir
// so the container sees it at /data.
func (l *Live) Upload(ctx context.Context, rdfPath string) error {
	args := l.buildArgs(rdfPath)

	l.log.Info("starting dgraph live upload", "file", rdfPath, "upsert_predicates", upsertPredicates)

	_, err := l.cb.Execute(func() (interface{}, error) {
		out, err := l.runner.Run(ctx, "docker", args...)
		if err != nil {
			l.log.Error("dgraph live load failed", "error", err, "output", string(out))
			return nil, fmt.Errorf("dgraph live load failed: %w", err)
		}
		l.log.Debug("dgraph live output", "output", string(out))
		return nil, nil
	})
	if err != nil {
		return err
	}

	l.log.Info("dgraph live upload completed", "file", rdfPath)
	return nil
}

// buildArgs assembles the docker invocation mirroring the operational setup:
// the data directory is mounted at /data and every natural-key predicate is
// passed as an upsert predicate.
func (l *Live) buildArgs(rdfPath string) []string {
	args := []string{
		"run", "--rm",
		"--network", l.cfg.DockerNetwork,
		"-v", fmt.Sprintf("%s:/data", l.cfg.DataDir),
		l.cfg.DockerImage,
		"dgraph", "live",
		"--files", "/data/" + filepath.Base(rdfPath),
		"--schema", "/data/" + filepath.Base(l.cfg.SchemaFile),
		"--alpha", l.cfg.Alpha,
		"--zero", l.cfg.Zero,
	}
	for _, pred := range upsertPredicates {
		args = append(args, "--upsertPredicate", pred)
	}
	return args
}
