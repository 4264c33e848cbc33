package jurisgraph

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jurisgraph/jurisgraph/pkg/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show source store conversion counts",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, _, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	client, err := buildClient(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	if err := client.Store().Ping(ctx); err != nil {
		return fmt.Errorf("source store unreachable: %w", err)
	}

	total, err := client.Store().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	unconverted, err := client.Store().CountUnconverted(ctx)
	if err != nil {
		return fmt.Errorf("failed to count unconverted documents: %w", err)
	}

	fmt.Printf("index:        %s\n", cfg.Elasticsearch.Index)
	fmt.Printf("documents:    %d\n", total)
	fmt.Printf("unconverted:  %d\n", unconverted)
	fmt.Printf("converted:    %d\n", total-unconverted)
	return nil
}
