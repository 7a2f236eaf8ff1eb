package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/testwing/testwing/internal/config"
	"github.com/testwing/testwing/internal/confluence"
	"github.com/testwing/testwing/internal/jira"
	"github.com/testwing/testwing/internal/rag"
	"github.com/testwing/testwing/internal/redact"
	"github.com/testwing/testwing/internal/relevance"
	"github.com/testwing/testwing/internal/telemetry"
	"github.com/testwing/testwing/internal/vectorstore"
)

// pipeline bundles the clients a command needs. Built once per invocation.
type pipeline struct {
	cfg        *config.App
	jira       *jira.Client
	confluence *confluence.Client
	telemetry  telemetry.Client
}

func newPipeline() (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateAtlassian(); err != nil {
		return nil, err
	}

	jiraClient, err := jira.NewClient(cfg.Jira)
	if err != nil {
		return nil, fmt.Errorf("create jira client: %w", err)
	}
	confluenceClient, err := confluence.NewClient(cfg.Confluence)
	if err != nil {
		return nil, fmt.Errorf("create confluence client: %w", err)
	}

	return &pipeline{
		cfg:        cfg,
		jira:       jiraClient,
		confluence: confluenceClient,
		telemetry:  telemetry.NewClient(cfg.Telemetry, version),
	}, nil
}

func (p *pipeline) close() {
	_ = p.telemetry.Close()
}

// resolveSpaceKey returns the --space flag value, falling back to the
// confluence.space config key written by 'testwing init'.
func resolveSpaceKey(cmd *cobra.Command) (string, error) {
	spaceKey, _ := cmd.Flags().GetString("space")
	if spaceKey == "" {
		spaceKey = viper.GetString("confluence.space")
	}
	if spaceKey == "" {
		return "", fmt.Errorf("confluence space key is required (--space flag or confluence.space config)")
	}
	return spaceKey, nil
}

// fetchAndFilter runs the front half of every command: fetch the ticket,
// list the space's pages and filter them down to the relevant set.
func (p *pipeline) fetchAndFilter(ctx context.Context, ticketKey, spaceKey string) (relevance.Ticket, []relevance.Result, relevance.Metrics, error) {
	issue, err := p.jira.GetIssue(ctx, ticketKey)
	if err != nil {
		return relevance.Ticket{}, nil, relevance.Metrics{}, fmt.Errorf("fetch ticket %s: %w", ticketKey, err)
	}
	ticket := issue.ToTicket()

	pages, err := p.confluence.ListPages(ctx, spaceKey)
	if err != nil {
		return relevance.Ticket{}, nil, relevance.Metrics{}, fmt.Errorf("list pages in space %s: %w", spaceKey, err)
	}

	results, metrics, err := relevance.Filter(ticket, confluence.ToCandidates(pages), p.cfg.Filter)
	if err != nil {
		return relevance.Ticket{}, nil, relevance.Metrics{}, fmt.Errorf("filter pages: %w", err)
	}
	return ticket, results, metrics, nil
}

// newRAGService opens the vector store and wires redaction into the
// retrieval pipeline. Caller closes the returned store.
func (p *pipeline) newRAGService() (*rag.Service, *vectorstore.Store, error) {
	store, err := vectorstore.NewStore(p.cfg.Output.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open vector store: %w", err)
	}

	var redactor rag.Redactor
	if p.cfg.Redaction.Enabled {
		redactor = redact.New(p.cfg.Redaction)
	}
	return rag.NewService(store, p.cfg.LLM, redactor), store, nil
}
