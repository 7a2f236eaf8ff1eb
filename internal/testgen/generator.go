// Package testgen drives the LLM to generate or evaluate unit tests for a
// ticket, grounded in the documentation context retrieved for it.
package testgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/testwing/testwing/internal/llm"
	"github.com/testwing/testwing/internal/relevance"
)

// TestFile is one generated test source file.
type TestFile struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

// Generation is the structured output of a test-generation run.
type Generation struct {
	Summary string     `json:"summary"`
	Files   []TestFile `json:"files"`
}

// Evaluation is the structured output of a test-evaluation run.
type Evaluation struct {
	Score     int      `json:"score"` // 0-100
	Verdict   string   `json:"verdict"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
}

// Generator invokes the chat model. The factory is a field so tests can
// inject a fake model.
type Generator struct {
	llmCfg           llm.Config
	chatModelFactory func(ctx context.Context, cfg llm.Config) (model.BaseChatModel, error)
}

// NewGenerator creates a Generator for the configured provider.
func NewGenerator(cfg llm.Config) *Generator {
	return &Generator{
		llmCfg:           cfg,
		chatModelFactory: llm.NewChatModel,
	}
}

// Generate produces unit tests for the ticket. docContext is the retrieved
// documentation block; language is the target test language (e.g. "go",
// "typescript").
func (g *Generator) Generate(ctx context.Context, ticket relevance.Ticket, docContext, language string) (*Generation, error) {
	if language == "" {
		language = "go"
	}

	prompt := buildGeneratePrompt(ticket, docContext, language)
	response, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var gen Generation
	if err := parseJSONResponse(response, &gen); err != nil {
		return nil, fmt.Errorf("parse generation response: %w", err)
	}
	if len(gen.Files) == 0 {
		return nil, fmt.Errorf("model returned no test files")
	}
	return &gen, nil
}

// Evaluate scores existing test code against the ticket and documentation.
func (g *Generator) Evaluate(ctx context.Context, ticket relevance.Ticket, docContext, testCode string) (*Evaluation, error) {
	if strings.TrimSpace(testCode) == "" {
		return nil, fmt.Errorf("no test code to evaluate")
	}

	prompt := buildEvaluatePrompt(ticket, docContext, testCode)
	response, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var eval Evaluation
	if err := parseJSONResponse(response, &eval); err != nil {
		return nil, fmt.Errorf("parse evaluation response: %w", err)
	}
	if eval.Score < 0 {
		eval.Score = 0
	}
	if eval.Score > 100 {
		eval.Score = 100
	}
	return &eval, nil
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	chatModel, err := g.chatModelFactory(ctx, g.llmCfg)
	if err != nil {
		return "", fmt.Errorf("create chat model: %w", err)
	}

	resp, err := chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return resp.Content, nil
}

func buildGeneratePrompt(ticket relevance.Ticket, docContext, language string) string {
	return fmt.Sprintf(`You are a senior engineer writing unit tests for the ticket below.
Use the documentation for domain context. Cover the acceptance criteria,
edge cases and failure modes implied by the ticket.

## Ticket %s: %s
%s

## Documentation:
%s

Respond in JSON only:
{
  "summary": "1-2 sentences on what the tests cover",
  "files": [
    {"name": "file name", "language": "%s", "content": "full test source"}
  ]
}

JSON ONLY, no explanation:`, ticket.ID, ticket.Title, ticket.Description.Text(), docContext, language)
}

func buildEvaluatePrompt(ticket relevance.Ticket, docContext, testCode string) string {
	return fmt.Sprintf(`You are reviewing unit tests written for the ticket below.
Judge coverage of the ticket's requirements, not style.

## Ticket %s: %s
%s

## Documentation:
%s

## Tests under review:
%s

Respond in JSON only:
{
  "score": 0-100,
  "verdict": "1-line overall judgement",
  "strengths": ["..."],
  "gaps": ["requirements without test coverage"]
}

JSON ONLY, no explanation:`, ticket.ID, ticket.Title, ticket.Description.Text(), docContext, testCode)
}

// parseJSONResponse extracts the JSON object from a model response that may
// be wrapped in markdown code fences or surrounding prose.
func parseJSONResponse(response string, out any) error {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		response = response[start : end+1]
	}

	if err := json.Unmarshal([]byte(response), out); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}
