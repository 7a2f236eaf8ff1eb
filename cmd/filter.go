package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/testwing/testwing/internal/relevance"
	"github.com/testwing/testwing/internal/telemetry"
)

var filterCmd = &cobra.Command{
	Use:   "filter TICKET-KEY",
	Short: "Show which Confluence pages are relevant to a ticket",
	Long: `Fetches the ticket, scores every page in the Confluence space against
it and prints the pages that pass the relevance threshold, best first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		defer p.close()

		spaceKey, err := resolveSpaceKey(cmd)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		showMetrics, _ := cmd.Flags().GetBool("metrics")

		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			p.cfg.Filter.Debug = true
		}

		ticket, results, metrics, err := p.fetchAndFilter(cmd.Context(), args[0], spaceKey)
		if err != nil {
			return err
		}
		_ = p.telemetry.Track(telemetry.EventFilterRun, telemetry.FilterProperties(metrics))

		if asJSON {
			return printFilterJSON(ticket, results, metrics)
		}

		fmt.Printf("Ticket %s: %s\n", ticket.ID, ticket.Title)
		fmt.Printf("Relevant pages: %d of %d (%.1f%% reduction)\n\n", metrics.FilteredPages, metrics.TotalPages, metrics.ReductionPercentage)
		for i, r := range results {
			fmt.Printf("%2d. [%.2f] %s\n", i+1, r.Score, r.Page.Title)
			if p.cfg.Filter.Debug {
				for signal, sub := range r.Details {
					fmt.Printf("      %s: %.2f\n", signal, sub)
				}
			}
		}

		if showMetrics {
			fmt.Printf("\nAverage score: %.2f\n", metrics.AverageScore)
			fmt.Printf("Duration: %s\n", metrics.Duration)
			fmt.Printf("Keywords: %v\n", metrics.Keywords)
			for signal, count := range metrics.SignalCounts {
				fmt.Printf("Signal %s matched %d pages\n", signal, count)
			}
		}
		return nil
	},
}

func printFilterJSON(ticket relevance.Ticket, results []relevance.Result, metrics relevance.Metrics) error {
	out := struct {
		Ticket  string             `json:"ticket"`
		Results []relevance.Result `json:"results"`
		Metrics relevance.Metrics  `json:"metrics"`
	}{ticket.ID, results, metrics}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().StringP("space", "s", "", "Confluence space key")
	filterCmd.Flags().Bool("json", false, "print results as JSON")
	filterCmd.Flags().Bool("metrics", false, "print filtering metrics")
	filterCmd.Flags().Bool("debug", false, "include per-signal sub-scores")
}
