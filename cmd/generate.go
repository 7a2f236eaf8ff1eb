package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/testwing/testwing/internal/rag"
	"github.com/testwing/testwing/internal/telemetry"
	"github.com/testwing/testwing/internal/testgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate TICKET-KEY",
	Short: "Generate unit tests for a ticket from its relevant documentation",
	Long: `Runs the full pipeline: fetch the ticket, filter the Confluence space
down to relevant pages, index them for retrieval, and ask the LLM to
generate unit tests grounded in that documentation. Test files and a
report land in the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		defer p.close()

		ctx := cmd.Context()
		ticketKey := args[0]
		spaceKey, err := resolveSpaceKey(cmd)
		if err != nil {
			return err
		}
		language, _ := cmd.Flags().GetString("language")
		outputDir, _ := cmd.Flags().GetString("output")
		topK, _ := cmd.Flags().GetInt("top-k")

		if language == "" {
			language = p.cfg.Output.Language
		}
		if outputDir == "" {
			outputDir = p.cfg.Output.Dir
		}

		ticket, results, metrics, err := p.fetchAndFilter(ctx, ticketKey, spaceKey)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return fmt.Errorf("no relevant documentation found for %s; lower filter.min_score or check the space key", ticketKey)
		}
		fmt.Printf("Using %d of %d pages (%.1f%% reduction)\n", metrics.FilteredPages, metrics.TotalPages, metrics.ReductionPercentage)

		service, store, err := p.newRAGService()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if _, err := service.IndexPages(ctx, ticket.ID, results); err != nil {
			return fmt.Errorf("index documentation: %w", err)
		}

		chunks, err := service.Retrieve(ctx, ticket.ID, ticket.Title+" "+ticket.Description.Text(), topK)
		if err != nil {
			return fmt.Errorf("retrieve documentation: %w", err)
		}

		generator := testgen.NewGenerator(p.cfg.LLM)
		gen, err := generator.Generate(ctx, ticket, rag.BuildContext(chunks), language)
		if err != nil {
			return err
		}

		writer := testgen.NewWriter(outputDir)
		dir, err := writer.WriteGeneration(ticket, gen, metrics)
		if err != nil {
			return err
		}

		_ = p.telemetry.Track(telemetry.EventGenerateRun, telemetry.FilterProperties(metrics))

		fmt.Printf("\n%s\n\n", gen.Summary)
		for _, f := range gen.Files {
			fmt.Printf("  wrote %s/%s\n", dir, f.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("space", "s", "", "Confluence space key")
	generateCmd.Flags().StringP("language", "l", "", "test language (default from config)")
	generateCmd.Flags().StringP("output", "o", "", "output directory (default from config)")
	generateCmd.Flags().Int("top-k", 5, "documentation chunks to retrieve for the prompt")
}
