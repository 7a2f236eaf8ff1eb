// Package jira is a minimal JIRA Cloud REST client: it fetches the single
// issue that drives a run, with the fields relevance scoring needs.
package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/testwing/testwing/internal/relevance"
)

// StatusError is returned for non-2xx JIRA responses so callers can react
// to specific status codes.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jira returned status %d: %s", e.Code, e.Body)
}

// IsNotFound reports whether err is a 404 from JIRA.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Config holds connection settings for a JIRA Cloud site.
type Config struct {
	// BaseURL is the site URL (e.g. "https://acme.atlassian.net").
	BaseURL string

	// Email and APIToken authenticate via basic auth.
	Email    string
	APIToken string

	// Timeout for HTTP requests (default: 30s).
	Timeout time.Duration
}

// Client talks to the JIRA REST API v3.
type Client struct {
	baseURL string
	email   string
	token   string
	client  *http.Client
}

// Issue is the subset of a JIRA issue used downstream. The description
// arrives as an Atlassian Document Format tree when present.
type Issue struct {
	Key         string
	Summary     string
	Description relevance.Description
	Labels      []string
	Components  []string
}

type issueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string          `json:"summary"`
		Description json.RawMessage `json:"description"`
		Labels      []string        `json:"labels"`
		Components  []struct {
			Name string `json:"name"`
		} `json:"components"`
	} `json:"fields"`
}

// NewClient creates a JIRA client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("jira base URL is required")
	}
	if cfg.Email == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("jira email and API token are required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		email:   cfg.Email,
		token:   cfg.APIToken,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// GetIssue fetches one issue by key with the fields needed for filtering.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	if key == "" {
		return nil, fmt.Errorf("issue key is required")
	}

	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s?fields=%s",
		c.baseURL, url.PathEscape(key), url.QueryEscape("summary,description,labels,components"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var raw issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	issue := &Issue{
		Key:         raw.Key,
		Summary:     raw.Fields.Summary,
		Description: parseDescription(raw.Fields.Description),
		Labels:      raw.Fields.Labels,
	}
	for _, comp := range raw.Fields.Components {
		issue.Components = append(issue.Components, comp.Name)
	}
	return issue, nil
}

// parseDescription handles the two shapes JIRA returns: a plain string
// (API v2 style) or an ADF document object. Null or absent yields the
// empty description.
func parseDescription(raw json.RawMessage) relevance.Description {
	if len(raw) == 0 || string(raw) == "null" {
		return relevance.Description{}
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return relevance.Description{Plain: plain}
	}

	var doc relevance.RichText
	if err := json.Unmarshal(raw, &doc); err == nil {
		return relevance.Description{Doc: &doc}
	}
	return relevance.Description{}
}

// ToTicket converts an issue into the filtering engine's ticket shape.
func (i *Issue) ToTicket() relevance.Ticket {
	return relevance.Ticket{
		ID:          i.Key,
		Title:       i.Summary,
		Description: i.Description,
		Labels:      i.Labels,
		Components:  i.Components,
	}
}
