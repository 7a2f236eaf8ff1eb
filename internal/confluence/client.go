// Package confluence lists candidate documentation pages from a Confluence
// space, with the storage-format body and labels the relevance filter needs.
package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/testwing/testwing/internal/relevance"
)

// pageSize is the batch size used when walking a space.
const pageSize = 50

// Config holds connection settings for a Confluence Cloud site.
type Config struct {
	// BaseURL is the site URL without the /wiki suffix
	// (e.g. "https://acme.atlassian.net").
	BaseURL string

	// Email and APIToken authenticate via basic auth.
	Email    string
	APIToken string

	// Timeout for HTTP requests (default: 30s).
	Timeout time.Duration
}

// Client talks to the Confluence REST API.
type Client struct {
	baseURL string
	email   string
	token   string
	client  *http.Client
}

// Page is a candidate documentation page.
type Page struct {
	ID     string
	Title  string
	Body   string // storage-format markup
	Labels []string
}

type contentResponse struct {
	Results []contentResult `json:"results"`
	Size    int             `json:"size"`
	Limit   int             `json:"limit"`
}

type contentResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Metadata struct {
		Labels struct {
			Results []struct {
				Name string `json:"name"`
			} `json:"results"`
		} `json:"labels"`
	} `json:"metadata"`
}

// NewClient creates a Confluence client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("confluence base URL is required")
	}
	if cfg.Email == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("confluence email and API token are required")
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

// ListPages walks all pages of a space, batch by batch.
func (c *Client) ListPages(ctx context.Context, spaceKey string) ([]Page, error) {
	if spaceKey == "" {
		return nil, fmt.Errorf("space key is required")
	}

	var pages []Page
	for start := 0; ; start += pageSize {
		batch, err := c.fetchBatch(ctx, spaceKey, start)
		if err != nil {
			return nil, err
		}
		pages = append(pages, batch...)
		if len(batch) < pageSize {
			break
		}
	}
	return pages, nil
}

func (c *Client) fetchBatch(ctx context.Context, spaceKey string, start int) ([]Page, error) {
	query := url.Values{}
	query.Set("spaceKey", spaceKey)
	query.Set("type", "page")
	query.Set("expand", "body.storage,metadata.labels")
	query.Set("limit", fmt.Sprintf("%d", pageSize))
	query.Set("start", fmt.Sprintf("%d", start))

	endpoint := fmt.Sprintf("%s/wiki/rest/api/content?%s", c.baseURL, query.Encode())
	raw, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp contentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return convertResults(resp.Results), nil
}

// Search runs a CQL query and returns the matching pages.
func (c *Client) Search(ctx context.Context, cql string) ([]Page, error) {
	if cql == "" {
		return nil, fmt.Errorf("cql query is required")
	}

	query := url.Values{}
	query.Set("cql", cql)
	query.Set("expand", "body.storage,metadata.labels")
	query.Set("limit", fmt.Sprintf("%d", pageSize))

	endpoint := fmt.Sprintf("%s/wiki/rest/api/content/search?%s", c.baseURL, query.Encode())
	raw, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp contentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return convertResults(resp.Results), nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("confluence returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func convertResults(results []contentResult) []Page {
	pages := make([]Page, 0, len(results))
	for _, r := range results {
		p := Page{
			ID:    r.ID,
			Title: r.Title,
			Body:  r.Body.Storage.Value,
		}
		for _, l := range r.Metadata.Labels.Results {
			p.Labels = append(p.Labels, l.Name)
		}
		pages = append(pages, p)
	}
	return pages
}

// ToCandidates converts pages into the filtering engine's candidate shape.
func ToCandidates(pages []Page) []relevance.Page {
	candidates := make([]relevance.Page, len(pages))
	for i, p := range pages {
		candidates[i] = relevance.Page{
			ID:     p.ID,
			Title:  p.Title,
			Body:   p.Body,
			Labels: p.Labels,
		}
	}
	return candidates
}
