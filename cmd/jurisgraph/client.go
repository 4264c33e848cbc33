package jurisgraph

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	root "github.com/jurisgraph/jurisgraph"
	"github.com/jurisgraph/jurisgraph/pkg/config"
	"github.com/jurisgraph/jurisgraph/pkg/loader"
	"github.com/jurisgraph/jurisgraph/pkg/logger"
	"github.com/jurisgraph/jurisgraph/pkg/rdf"
	"github.com/jurisgraph/jurisgraph/pkg/store"
	"github.com/jurisgraph/jurisgraph/pkg/telemetry"
)

// buildLogger constructs the pipeline logger, wrapping the terminal handler
// with the parquet telemetry handler when a telemetry path is configured.
func buildLogger(cfg *config.Config) (*slog.Logger, *telemetry.ParquetHandler, error) {
	level := logger.ParseLevel(cfg.Log.Level)
	var handler slog.Handler = logger.NewColorHandler(os.Stderr, level)

	if cfg.Telemetry.ParquetPath != "" {
		ph, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		return slog.New(ph), ph, nil
	}
	return slog.New(handler), nil, nil
}

// buildClient wires the coordinator from configuration: Elasticsearch source
// store, triple writer under the output directory, and the dgraph live
// loader behind its circuit breaker.
func buildClient(cfg *config.Config, log *slog.Logger) (*root.Client, error) {
	es, err := store.NewElasticStore([]string{cfg.Elasticsearch.URL}, cfg.Elasticsearch.Index, cfg.Elasticsearch.MaxDocuments, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}

	writer := rdf.NewWriter(filepath.Join(cfg.Output.Dir, cfg.Output.RDFFile), log)

	var breaker loader.BreakerSettings
	if cfg.CircuitBreaker.Enabled {
		breaker = loader.BreakerSettings{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}
	}
	live := loader.NewLive(loader.Config{
		Alpha:         cfg.Dgraph.Alpha,
		Zero:          cfg.Dgraph.Zero,
		SchemaFile:    cfg.Dgraph.SchemaFile,
		DockerImage:   cfg.Dgraph.DockerImage,
		DockerNetwork: cfg.Dgraph.DockerNetwork,
		DataDir:       cfg.Output.Dir,
	}, breaker, nil, log)

	opts := []root.ClientOption{root.WithCleanup(cfg.Output.CleanupAfterUpload)}
	if cfg.Registry.SnapshotDir != "" {
		opts = append(opts, root.WithSnapshotDir(cfg.Registry.SnapshotDir))
	}
	return root.NewClient(es, live, writer, log, opts...), nil
}
