package relevance

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Signal weights. Fixed by design, they sum to 1.0; the combined score is a
// ranking key, not a probability. The ticket-ID signal has no enable flag:
// it is the strongest and cheapest signal and is always evaluated when the
// ticket has an ID.
const (
	WeightTicketID   = 0.40
	WeightKeywords   = 0.30
	WeightTitle      = 0.20
	WeightLabels     = 0.05
	WeightComponents = 0.05
)

// Signal names recorded in Result.MatchedBy and Metrics.SignalCounts.
const (
	SignalTicketID   = "ticketId"
	SignalKeywords   = "keywords"
	SignalTitle      = "title"
	SignalLabels     = "labels"
	SignalComponents = "components"
)

// Config controls one filtering run. All knobs are optional; DefaultConfig
// documents the defaults.
type Config struct {
	// MaxPages caps the number of pages returned.
	MaxPages int `mapstructure:"max_pages" validate:"gte=1"`

	// MinScore is the minimum combined score a page must reach to be kept.
	MinScore float64 `mapstructure:"min_score" validate:"gte=0,lte=1"`

	// Signal toggles.
	UseKeywords   bool `mapstructure:"use_keywords"`
	UseTitleMatch bool `mapstructure:"use_title_match"`
	UseLabels     bool `mapstructure:"use_labels"`
	UseComponents bool `mapstructure:"use_components"`

	// Debug includes per-signal sub-scores in each result.
	Debug bool `mapstructure:"debug"`
}

// DefaultConfig returns the default filter configuration.
func DefaultConfig() Config {
	return Config{
		MaxPages:      30,
		MinScore:      0.3,
		UseKeywords:   true,
		UseTitleMatch: true,
		UseLabels:     true,
		UseComponents: true,
		Debug:         false,
	}
}

var validate = validator.New()

// Validate rejects configurations the scoring contract leaves undefined:
// MaxPages below 1 or MinScore outside [0,1]. We reject rather than clamp
// so a misconfigured run fails loudly instead of silently returning
// everything or nothing.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid filter config: %w", err)
	}
	return nil
}

// LoadConfig reads the filter configuration from Viper, falling back to
// defaults for unset keys.
func LoadConfig() Config {
	defaults := DefaultConfig()

	cfg := defaults
	if viper.IsSet("filter.max_pages") {
		cfg.MaxPages = viper.GetInt("filter.max_pages")
	}
	if viper.IsSet("filter.min_score") {
		cfg.MinScore = viper.GetFloat64("filter.min_score")
	}
	if viper.IsSet("filter.use_keywords") {
		cfg.UseKeywords = viper.GetBool("filter.use_keywords")
	}
	if viper.IsSet("filter.use_title_match") {
		cfg.UseTitleMatch = viper.GetBool("filter.use_title_match")
	}
	if viper.IsSet("filter.use_labels") {
		cfg.UseLabels = viper.GetBool("filter.use_labels")
	}
	if viper.IsSet("filter.use_components") {
		cfg.UseComponents = viper.GetBool("filter.use_components")
	}
	if viper.IsSet("filter.debug") {
		cfg.Debug = viper.GetBool("filter.debug")
	}
	return cfg
}
