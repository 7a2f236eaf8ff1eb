package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageJSON(id int, title string) map[string]any {
	return map[string]any{
		"id":    fmt.Sprintf("%d", id),
		"title": title,
		"body": map[string]any{
			"storage": map[string]any{"value": "<p>body " + title + "</p>"},
		},
		"metadata": map[string]any{
			"labels": map[string]any{
				"results": []map[string]any{{"name": "runbook"}},
			},
		},
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{Email: "a@b.c", APIToken: "t"})
	assert.ErrorContains(t, err, "base URL")

	_, err = NewClient(Config{BaseURL: "https://acme.atlassian.net"})
	assert.ErrorContains(t, err, "API token")
}

func TestListPages_SingleBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/rest/api/content", r.URL.Path)
		assert.Equal(t, "DOCS", r.URL.Query().Get("spaceKey"))
		assert.Equal(t, "page", r.URL.Query().Get("type"))

		resp := map[string]any{
			"results": []map[string]any{pageJSON(1, "Gateway design"), pageJSON(2, "Runbook")},
			"size":    2,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Email: "a@b.c", APIToken: "t"})
	require.NoError(t, err)

	pages, err := c.ListPages(context.Background(), "DOCS")
	require.NoError(t, err)

	require.Len(t, pages, 2)
	assert.Equal(t, "1", pages[0].ID)
	assert.Equal(t, "Gateway design", pages[0].Title)
	assert.Equal(t, "<p>body Gateway design</p>", pages[0].Body)
	assert.Equal(t, []string{"runbook"}, pages[0].Labels)
}

func TestListPages_Paginates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))

		var results []map[string]any
		if start == 0 {
			for i := 0; i < pageSize; i++ {
				results = append(results, pageJSON(i, fmt.Sprintf("doc %d", i)))
			}
		} else {
			results = []map[string]any{pageJSON(pageSize, "last doc")}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results, "size": len(results)})
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Email: "a@b.c", APIToken: "t"})
	require.NoError(t, err)

	pages, err := c.ListPages(context.Background(), "DOCS")
	require.NoError(t, err)
	assert.Len(t, pages, pageSize+1)
	assert.Equal(t, "last doc", pages[pageSize].Title)
}

func TestListPages_EmptySpaceKey(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "https://acme.atlassian.net", Email: "a@b.c", APIToken: "t"})
	require.NoError(t, err)

	_, err = c.ListPages(context.Background(), "")
	assert.ErrorContains(t, err, "space key")
}

func TestListPages_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such space", http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Email: "a@b.c", APIToken: "t"})
	require.NoError(t, err)

	_, err = c.ListPages(context.Background(), "NOPE")
	assert.ErrorContains(t, err, "status 404")
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/rest/api/content/search", r.URL.Path)
		assert.Equal(t, `text ~ "gateway"`, r.URL.Query().Get("cql"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{pageJSON(7, "Gateway timeout notes")},
			"size":    1,
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Email: "a@b.c", APIToken: "t"})
	require.NoError(t, err)

	pages, err := c.Search(context.Background(), `text ~ "gateway"`)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Gateway timeout notes", pages[0].Title)

	_, err = c.Search(context.Background(), "")
	assert.ErrorContains(t, err, "cql")
}

func TestToCandidates(t *testing.T) {
	pages := []Page{{ID: "1", Title: "T", Body: "<p>b</p>", Labels: []string{"l"}}}

	candidates := ToCandidates(pages)
	require.Len(t, candidates, 1)
	assert.Equal(t, "1", candidates[0].ID)
	assert.Equal(t, "T", candidates[0].Title)
	assert.Equal(t, "<p>b</p>", candidates[0].Body)
	assert.Equal(t, []string{"l"}, candidates[0].Labels)
}
