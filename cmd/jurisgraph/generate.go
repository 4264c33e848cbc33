package jurisgraph

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	root "github.com/jurisgraph/jurisgraph"
	"github.com/jurisgraph/jurisgraph/pkg/config"
	"github.com/jurisgraph/jurisgraph/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one conversion pass over the source store",
	Long: `Run one conversion pass: load judgment records from Elasticsearch,
generate graph triples, upload them to dgraph via the live loader, and mark
the processed records converted.

By default only unconverted records are processed and triples are appended
to the existing output file. Use --full to regenerate from every record,
--doc-ids to process specific records, or --dry-run to write the triple
file without uploading or marking.`,
	RunE: runGenerate,
}

var (
	generateDocIDs []string
	generateForce  bool
	generateFull   bool
	generateDryRun bool
	generateAppend bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringSliceVar(&generateDocIDs, "doc-ids", nil, "Process only these document IDs")
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "Reset converted flags on --doc-ids before processing")
	generateCmd.Flags().BoolVar(&generateFull, "full", false, "Regenerate from every record in the store")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Write the triple file but skip upload and marking")
	generateCmd.Flags().BoolVar(&generateAppend, "append", true, "Append to the existing triple file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
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

	if generateForce && len(generateDocIDs) == 0 {
		return fmt.Errorf("--force requires --doc-ids")
	}

	appendMode := generateAppend
	if generateFull && !cmd.Flags().Changed("append") {
		appendMode = false
	}

	ctx := context.WithValue(cmd.Context(), types.ContextKeyRequestSource, "cli")
	result, err := client.Run(ctx, root.Options{
		DocIDs:         generateDocIDs,
		ForceReprocess: generateForce,
		Full:           generateFull,
		DryRun:         generateDryRun,
		Append:         appendMode,
	})
	if err != nil {
		return err
	}

	if !result.Succeeded() {
		return fmt.Errorf("run failed: %s", result.Message)
	}

	fmt.Printf("%s\n", result.Message)
	if result.Stats != nil {
		s := result.Stats
		fmt.Printf("judgments: %d, judges: %d, advocates: %d/%d, outcomes: %d, durations: %d, citations: %d (title matches: %d), triples: %d\n",
			s.TotalJudgments, s.TotalJudges,
			s.TotalPetitionerAdvocates, s.TotalRespondantAdvocates,
			s.TotalOutcomes, s.TotalCaseDurations,
			s.TotalCitations, s.TitleMatches, s.TotalTriples)
	}
	return nil
}
