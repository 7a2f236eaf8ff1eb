package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask TICKET-KEY QUESTION...",
	Short: "Ask a question against a ticket's indexed documentation",
	Long: `Answers a question using only the documentation previously indexed for
the ticket by 'generate' or 'evaluate'. Useful for checking what context
the generator actually saw.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		defer p.close()

		ctx := cmd.Context()
		ticketKey := args[0]
		question := strings.Join(args[1:], " ")
		topK, _ := cmd.Flags().GetInt("top-k")

		service, store, err := p.newRAGService()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		count, err := store.Count(ticketKey)
		if err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("no documentation indexed for %s; run 'testwing generate %s' first", ticketKey, ticketKey)
		}

		chunks, err := service.Retrieve(ctx, ticketKey, question, topK)
		if err != nil {
			return fmt.Errorf("retrieve documentation: %w", err)
		}

		answer, err := service.Answer(ctx, question, chunks)
		if err != nil {
			return err
		}

		fmt.Println(answer)
		if showSources, _ := cmd.Flags().GetBool("sources"); showSources {
			fmt.Println("\nSources:")
			for _, c := range chunks {
				fmt.Printf("  [%.2f] %s\n", c.Score, c.Chunk.Title)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().Int("top-k", 5, "documentation chunks to retrieve")
	askCmd.Flags().Bool("sources", false, "list the pages the answer drew from")
}
