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
	"github.com/jurisgraph/jurisgraph/pkg/server"
	"github.com/jurisgraph/jurisgraph/pkg/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP control-plane server",
	Long: `Start the HTTP server that exposes the pipeline over REST:

- Trigger processing runs and poll their status
- Inspect document counts and conversion flags
- Health checks for the source store

With the watcher enabled, unconverted documents are picked up automatically
on an interval.`,
	RunE: runServe,
}

var (
	serveHost        string
	servePort        int
	serveMode        string
	serveWithWatcher bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Server host")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Server port")
	serveCmd.Flags().StringVar(&serveMode, "mode", "debug", "Server mode (debug, release, test)")
	serveCmd.Flags().BoolVar(&serveWithWatcher, "with-watcher", false, "Run the background watcher alongside the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serveMode
	}
	if cmd.Flags().Changed("with-watcher") {
		cfg.Watcher.Enabled = serveWithWatcher
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

	var w *watcher.Watcher
	if cfg.Watcher.Enabled {
		w = watcher.New(client, time.Duration(cfg.Watcher.IntervalSeconds)*time.Second, log)
		w.Start(context.Background())
		defer w.Stop()
	}

	srv := server.New(cfg, client, w, log)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}
