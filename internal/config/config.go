// Package config loads application configuration from viper: a YAML config
// file plus TESTWING_* environment variables, with per-key defaults.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/testwing/testwing/internal/confluence"
	"github.com/testwing/testwing/internal/jira"
	"github.com/testwing/testwing/internal/llm"
	"github.com/testwing/testwing/internal/redact"
	"github.com/testwing/testwing/internal/relevance"
	"github.com/testwing/testwing/internal/telemetry"
)

// App is the fully resolved configuration for one run.
type App struct {
	Jira       jira.Config
	Confluence confluence.Config
	Redaction  redact.Config
	LLM        llm.Config
	Filter     relevance.Config
	Telemetry  telemetry.Config
	Output     OutputConfig
}

// OutputConfig controls where generated artifacts land.
type OutputConfig struct {
	Dir      string
	Language string
	DBPath   string
}

// Load resolves the full application config from viper.
func Load() (*App, error) {
	llmCfg, err := LoadLLMConfig()
	if err != nil {
		return nil, fmt.Errorf("load llm config: %w", err)
	}

	return &App{
		Jira:       loadAtlassianJira(),
		Confluence: loadAtlassianConfluence(),
		Redaction:  loadRedaction(),
		LLM:        llmCfg,
		Filter:     relevance.LoadConfig(),
		Telemetry:  telemetry.LoadConfig(),
		Output:     loadOutput(),
	}, nil
}

func loadAtlassianJira() jira.Config {
	return jira.Config{
		BaseURL:  viper.GetString("atlassian.baseURL"),
		Email:    viper.GetString("atlassian.email"),
		APIToken: viper.GetString("atlassian.apiToken"),
		Timeout:  viper.GetDuration("atlassian.timeout"),
	}
}

func loadAtlassianConfluence() confluence.Config {
	return confluence.Config{
		BaseURL:  viper.GetString("atlassian.baseURL"),
		Email:    viper.GetString("atlassian.email"),
		APIToken: viper.GetString("atlassian.apiToken"),
		Timeout:  viper.GetDuration("atlassian.timeout"),
	}
}

func loadRedaction() redact.Config {
	viper.SetDefault("redaction.enabled", false)
	viper.SetDefault("redaction.language", "en")
	viper.SetDefault("redaction.timeout", 30*time.Second)

	return redact.Config{
		Enabled:       viper.GetBool("redaction.enabled"),
		AnalyzerURL:   viper.GetString("redaction.analyzerURL"),
		AnonymizerURL: viper.GetString("redaction.anonymizerURL"),
		Language:      viper.GetString("redaction.language"),
		Timeout:       viper.GetDuration("redaction.timeout"),
	}
}

func loadOutput() OutputConfig {
	viper.SetDefault("output.dir", "generated-tests")
	viper.SetDefault("output.language", "go")
	viper.SetDefault("output.dbPath", ".testwing")

	return OutputConfig{
		Dir:      viper.GetString("output.dir"),
		Language: viper.GetString("output.language"),
		DBPath:   viper.GetString("output.dbPath"),
	}
}

// ValidateAtlassian checks that the credentials needed to reach JIRA and
// Confluence are present.
func (a *App) ValidateAtlassian() error {
	if a.Jira.BaseURL == "" {
		return fmt.Errorf("atlassian.baseURL is required (e.g. https://acme.atlassian.net)")
	}
	if a.Jira.Email == "" || a.Jira.APIToken == "" {
		return fmt.Errorf("atlassian.email and atlassian.apiToken are required")
	}
	return nil
}
