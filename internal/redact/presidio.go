// Package redact strips PII from page content before it reaches embedding
// or chat APIs, via a Presidio analyzer/anonymizer pair.
package redact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds the Presidio service endpoints. When Enabled is false the
// redactor passes text through untouched.
type Config struct {
	Enabled       bool
	AnalyzerURL   string // e.g. "http://localhost:5001"
	AnonymizerURL string // e.g. "http://localhost:5002"
	Language      string // default "en"
	Timeout       time.Duration
}

// Redactor anonymizes detected PII entities in text.
type Redactor struct {
	cfg    Config
	client *http.Client
}

// entity mirrors the analyzer's recognizer result wire format.
type entity struct {
	EntityType string  `json:"entity_type"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Score      float64 `json:"score"`
}

type analyzeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type anonymizeRequest struct {
	Text            string   `json:"text"`
	AnalyzerResults []entity `json:"analyzer_results"`
}

type anonymizeResponse struct {
	Text string `json:"text"`
}

// New creates a redactor.
func New(cfg Config) *Redactor {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Redactor{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Redact analyzes the text for PII and anonymizes any findings. Disabled
// redaction and empty input both return the text unchanged.
func (r *Redactor) Redact(ctx context.Context, text string) (string, error) {
	if !r.cfg.Enabled || text == "" {
		return text, nil
	}

	entities, err := r.analyze(ctx, text)
	if err != nil {
		return "", fmt.Errorf("analyze: %w", err)
	}
	if len(entities) == 0 {
		return text, nil
	}

	anonymized, err := r.anonymize(ctx, text, entities)
	if err != nil {
		return "", fmt.Errorf("anonymize: %w", err)
	}
	return anonymized, nil
}

func (r *Redactor) analyze(ctx context.Context, text string) ([]entity, error) {
	raw, err := r.post(ctx, r.cfg.AnalyzerURL+"/analyze", analyzeRequest{
		Text:     text,
		Language: r.cfg.Language,
	})
	if err != nil {
		return nil, err
	}

	var entities []entity
	if err := json.Unmarshal(raw, &entities); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return entities, nil
}

func (r *Redactor) anonymize(ctx context.Context, text string, entities []entity) (string, error) {
	raw, err := r.post(ctx, r.cfg.AnonymizerURL+"/anonymize", anonymizeRequest{
		Text:            text,
		AnalyzerResults: entities,
	})
	if err != nil {
		return "", err
	}

	var resp anonymizeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return resp.Text, nil
}

// Healthy reports whether both Presidio services answer their health checks.
func (r *Redactor) Healthy(ctx context.Context) error {
	for _, base := range []string{r.cfg.AnalyzerURL, r.cfg.AnonymizerURL} {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		resp, err := r.client.Do(req)
		if err != nil {
			return fmt.Errorf("health check %s: %w", base, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("health check %s: status %d", base, resp.StatusCode)
		}
	}
	return nil
}

func (r *Redactor) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("presidio returned status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
