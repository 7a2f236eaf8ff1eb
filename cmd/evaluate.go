package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/testwing/testwing/internal/rag"
	"github.com/testwing/testwing/internal/telemetry"
	"github.com/testwing/testwing/internal/testgen"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate TICKET-KEY TEST-FILE...",
	Short: "Score existing tests against a ticket's requirements",
	Long: `Reads the given test files and asks the LLM, grounded in the ticket's
relevant documentation, how well they cover the ticket's requirements.
Writes evaluation.md next to the generated tests.`,
	Args: cobra.MinimumNArgs(2),
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
		outputDir, _ := cmd.Flags().GetString("output")
		if outputDir == "" {
			outputDir = p.cfg.Output.Dir
		}

		var testCode strings.Builder
		for _, path := range args[1:] {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read test file %s: %w", path, err)
			}
			fmt.Fprintf(&testCode, "// File: %s\n%s\n\n", path, content)
		}

		ticket, results, metrics, err := p.fetchAndFilter(ctx, ticketKey, spaceKey)
		if err != nil {
			return err
		}

		docContext := ""
		if len(results) > 0 {
			service, store, err := p.newRAGService()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if _, err := service.IndexPages(ctx, ticket.ID, results); err != nil {
				return fmt.Errorf("index documentation: %w", err)
			}
			chunks, err := service.Retrieve(ctx, ticket.ID, ticket.Title, 5)
			if err != nil {
				return fmt.Errorf("retrieve documentation: %w", err)
			}
			docContext = rag.BuildContext(chunks)
		}

		generator := testgen.NewGenerator(p.cfg.LLM)
		eval, err := generator.Evaluate(ctx, ticket, docContext, testCode.String())
		if err != nil {
			return err
		}

		writer := testgen.NewWriter(outputDir)
		path, err := writer.WriteEvaluation(ticket, eval)
		if err != nil {
			return err
		}

		_ = p.telemetry.Track(telemetry.EventEvaluateRun, telemetry.FilterProperties(metrics))

		fmt.Printf("Score: %d/100 (%s)\n", eval.Score, eval.Verdict)
		for _, g := range eval.Gaps {
			fmt.Printf("  gap: %s\n", g)
		}
		fmt.Printf("\nFull report: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringP("space", "s", "", "Confluence space key")
	evaluateCmd.Flags().StringP("output", "o", "", "output directory (default from config)")
}
