package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/testwing/testwing/internal/config"
	"github.com/testwing/testwing/internal/jira"
	"github.com/testwing/testwing/internal/redact"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check TestWing configuration and connectivity",
	Long: `Validates your TestWing setup.

Checks:
  - Atlassian credentials and JIRA reachability
  - LLM provider and API key
  - PII redaction services (when enabled)

Use this to troubleshoot before wiring TestWing into CI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctor(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck is a single diagnostic result.
type doctorCheck struct {
	Name    string
	Status  string // "ok", "warn", "fail"
	Message string
}

func runDoctor(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	checks := []doctorCheck{
		checkAtlassian(ctx, cfg),
		checkLLM(cfg),
		checkRedaction(ctx, cfg),
	}

	hasErrors := false
	for _, c := range checks {
		printCheck(c)
		if c.Status == "fail" {
			hasErrors = true
		}
	}

	if hasErrors {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

func checkAtlassian(ctx context.Context, cfg *config.App) doctorCheck {
	if err := cfg.ValidateAtlassian(); err != nil {
		return doctorCheck{"Atlassian credentials", "fail", err.Error()}
	}

	client, err := jira.NewClient(cfg.Jira)
	if err != nil {
		return doctorCheck{"Atlassian credentials", "fail", err.Error()}
	}
	// Any well-formed key proves auth and reachability; a 404 means we got
	// through to JIRA.
	if _, err := client.GetIssue(ctx, "DOCTOR-0"); err != nil && !jira.IsNotFound(err) {
		return doctorCheck{"JIRA connectivity", "fail", err.Error()}
	}
	return doctorCheck{"JIRA connectivity", "ok", cfg.Jira.BaseURL}
}

func checkLLM(cfg *config.App) doctorCheck {
	if cfg.LLM.APIKey == "" && cfg.LLM.BaseURL == "" {
		return doctorCheck{"LLM provider", "fail", fmt.Sprintf("no API key configured for provider %q", cfg.LLM.Provider)}
	}
	return doctorCheck{"LLM provider", "ok", fmt.Sprintf("%s / %s", cfg.LLM.Provider, cfg.LLM.Model)}
}

func checkRedaction(ctx context.Context, cfg *config.App) doctorCheck {
	if !cfg.Redaction.Enabled {
		return doctorCheck{"PII redaction", "warn", "disabled; ticket and page text will reach the LLM unredacted"}
	}

	if err := redact.New(cfg.Redaction).Healthy(ctx); err != nil {
		return doctorCheck{"PII redaction", "fail", err.Error()}
	}
	return doctorCheck{"PII redaction", "ok", cfg.Redaction.AnalyzerURL}
}

func printCheck(c doctorCheck) {
	symbol := map[string]string{"ok": "✓", "warn": "!", "fail": "✗"}[c.Status]
	fmt.Printf("%s %s: %s\n", symbol, c.Name, c.Message)
}
