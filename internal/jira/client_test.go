package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adfIssue = `{
	"key": "AB-100",
	"fields": {
		"summary": "Add login retries",
		"description": {
			"type": "doc",
			"version": 1,
			"content": [
				{"type": "paragraph", "content": [{"type": "text", "text": "Retries need exponential backoff."}]}
			]
		},
		"labels": ["backend", "auth"],
		"components": [{"name": "Login"}, {"name": "Gateway"}]
	}
}`

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{Email: "a@b.c", APIToken: "t"})
	assert.ErrorContains(t, err, "base URL")

	_, err = NewClient(Config{BaseURL: "https://acme.atlassian.net"})
	assert.ErrorContains(t, err, "API token")
}

func TestGetIssue_ADF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/issue/AB-100", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "a@b.c", user)
		assert.Equal(t, "secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(adfIssue))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Email: "a@b.c", APIToken: "secret", Timeout: 5 * time.Second})
	require.NoError(t, err)

	issue, err := c.GetIssue(context.Background(), "AB-100")
	require.NoError(t, err)

	assert.Equal(t, "AB-100", issue.Key)
	assert.Equal(t, "Add login retries", issue.Summary)
	assert.Equal(t, "Retries need exponential backoff.", issue.Description.Text())
	assert.Equal(t, []string{"backend", "auth"}, issue.Labels)
	assert.Equal(t, []string{"Login", "Gateway"}, issue.Components)
}

func TestGetIssue_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorMessages":["Issue does not exist"]}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Email: "a@b.c", APIToken: "secret"})
	require.NoError(t, err)

	_, err = c.GetIssue(context.Background(), "AB-404")
	assert.ErrorContains(t, err, "status 404")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(nil))
}

func TestGetIssue_EmptyKey(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "https://acme.atlassian.net", Email: "a@b.c", APIToken: "secret"})
	require.NoError(t, err)

	_, err = c.GetIssue(context.Background(), "")
	assert.ErrorContains(t, err, "issue key")
}

func TestParseDescription(t *testing.T) {
	assert.Empty(t, parseDescription(nil).Text())
	assert.Empty(t, parseDescription(json.RawMessage("null")).Text())
	assert.Equal(t, "plain body", parseDescription(json.RawMessage(`"plain body"`)).Text())

	adf := json.RawMessage(`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"rich"}]}]}`)
	assert.Equal(t, "rich", parseDescription(adf).Text())
}

func TestToTicket(t *testing.T) {
	issue := &Issue{
		Key:        "AB-1",
		Summary:    "A summary",
		Labels:     []string{"x"},
		Components: []string{"y"},
	}

	ticket := issue.ToTicket()
	assert.Equal(t, "AB-1", ticket.ID)
	assert.Equal(t, "A summary", ticket.Title)
	assert.Equal(t, []string{"x"}, ticket.Labels)
	assert.Equal(t, []string{"y"}, ticket.Components)
}
