package testgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testwing/testwing/internal/llm"
	"github.com/testwing/testwing/internal/relevance"
)

type mockChatModel struct {
	response string
	err      error
	prompts  []string
}

func (m *mockChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	for _, msg := range messages {
		m.prompts = append(m.prompts, msg.Content)
	}
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.response, nil), nil
}

func (m *mockChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func newTestGenerator(chat *mockChatModel) *Generator {
	g := NewGenerator(llm.Config{Provider: llm.ProviderOpenAI})
	g.chatModelFactory = func(ctx context.Context, cfg llm.Config) (model.BaseChatModel, error) {
		return chat, nil
	}
	return g
}

func sampleTicket() relevance.Ticket {
	return relevance.Ticket{
		ID:          "AB-100",
		Title:       "Add retry logic to payment gateway",
		Description: relevance.Description{Plain: "Retries with exponential backoff."},
	}
}

func TestGenerate(t *testing.T) {
	chat := &mockChatModel{response: `{
		"summary": "Covers retry behaviour and backoff timing.",
		"files": [
			{"name": "payment_retry_test.go", "language": "go", "content": "package payment"}
		]
	}`}
	g := newTestGenerator(chat)

	gen, err := g.Generate(context.Background(), sampleTicket(), "### Retry guide\nbackoff details", "go")
	require.NoError(t, err)
	assert.Equal(t, "Covers retry behaviour and backoff timing.", gen.Summary)
	require.Len(t, gen.Files, 1)
	assert.Equal(t, "payment_retry_test.go", gen.Files[0].Name)

	// The prompt carries the ticket and the retrieved documentation.
	require.Len(t, chat.prompts, 1)
	assert.Contains(t, chat.prompts[0], "AB-100")
	assert.Contains(t, chat.prompts[0], "Retry guide")
}

func TestGenerate_FencedResponse(t *testing.T) {
	chat := &mockChatModel{response: "```json\n{\"summary\":\"s\",\"files\":[{\"name\":\"a_test.go\",\"language\":\"go\",\"content\":\"x\"}]}\n```"}
	g := newTestGenerator(chat)

	gen, err := g.Generate(context.Background(), sampleTicket(), "", "")
	require.NoError(t, err)
	require.Len(t, gen.Files, 1)
}

func TestGenerate_NoFiles(t *testing.T) {
	chat := &mockChatModel{response: `{"summary":"nothing","files":[]}`}
	g := newTestGenerator(chat)

	_, err := g.Generate(context.Background(), sampleTicket(), "", "go")
	assert.ErrorContains(t, err, "no test files")
}

func TestGenerate_ModelError(t *testing.T) {
	chat := &mockChatModel{err: errors.New("rate limited")}
	g := newTestGenerator(chat)

	_, err := g.Generate(context.Background(), sampleTicket(), "", "go")
	assert.ErrorContains(t, err, "rate limited")
}

func TestGenerate_MalformedJSON(t *testing.T) {
	chat := &mockChatModel{response: "sorry, I cannot help with that"}
	g := newTestGenerator(chat)

	_, err := g.Generate(context.Background(), sampleTicket(), "", "go")
	assert.ErrorContains(t, err, "parse")
}

func TestEvaluate(t *testing.T) {
	chat := &mockChatModel{response: `{
		"score": 72,
		"verdict": "Good coverage of the happy path, weak on failures.",
		"strengths": ["happy path covered"],
		"gaps": ["no timeout test"]
	}`}
	g := newTestGenerator(chat)

	eval, err := g.Evaluate(context.Background(), sampleTicket(), "docs", "func TestRetry(t *testing.T) {}")
	require.NoError(t, err)
	assert.Equal(t, 72, eval.Score)
	assert.Len(t, eval.Gaps, 1)
}

func TestEvaluate_ClampsScore(t *testing.T) {
	chat := &mockChatModel{response: `{"score": 140, "verdict": "v"}`}
	g := newTestGenerator(chat)

	eval, err := g.Evaluate(context.Background(), sampleTicket(), "", "some tests")
	require.NoError(t, err)
	assert.Equal(t, 100, eval.Score)
}

func TestEvaluate_EmptyCode(t *testing.T) {
	g := newTestGenerator(&mockChatModel{})

	_, err := g.Evaluate(context.Background(), sampleTicket(), "", "   ")
	assert.ErrorContains(t, err, "no test code")
}

func TestParseJSONResponse_SurroundingProse(t *testing.T) {
	var out struct {
		Score int `json:"score"`
	}
	err := parseJSONResponse("Here is my assessment:\n{\"score\": 5}\nHope that helps!", &out)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Score)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "AB-100", sanitizeName("AB-100"))
	assert.Equal(t, "a_b_test.go", sanitizeName("a/b_test.go"))
	assert.Equal(t, "unnamed", sanitizeName("  "))
	assert.False(t, strings.Contains(sanitizeName("../../etc/passwd"), ".."))
}
