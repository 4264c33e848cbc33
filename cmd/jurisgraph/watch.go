package jurisgraph

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jurisgraph/jurisgraph/pkg/config"
	"github.com/jurisgraph/jurisgraph/pkg/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the source store and convert new records automatically",
	RunE:  runWatch,
}

var watchInterval int

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().IntVar(&watchInterval, "interval", 0, "Polling interval in seconds (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("interval") {
		cfg.Watcher.IntervalSeconds = watchInterval
	}
	if cfg.Watcher.IntervalSeconds <= 0 {
		return fmt.Errorf("watcher interval must be positive, got %d", cfg.Watcher.IntervalSeconds)
	}

	log, telemetryHandler, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	if telemetryHandler != nil {
		defer telemetryHandler.Flush()
	}

	client, err := buildClient(cfg, log)
	if err != nil {
		return err
	}

	w := watcher.New(client, time.Duration(cfg.Watcher.IntervalSeconds)*time.Second, log)
	w.Start(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	fmt.Printf("\nReceived signal: %v\n", sig)

	w.Stop()
	return nil
}
