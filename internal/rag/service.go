// Package rag turns filtered documentation pages into retrievable context:
// it redacts, embeds and stores the selected pages, and answers retrieval
// queries for the test generator.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/testwing/testwing/internal/llm"
	"github.com/testwing/testwing/internal/relevance"
	"github.com/testwing/testwing/internal/vectorstore"
)

// Redactor removes PII from text before it leaves the process.
type Redactor interface {
	Redact(ctx context.Context, text string) (string, error)
}

// Service wires redaction, embedding and the vector store into one
// retrieval pipeline. Factories are fields so tests can inject fakes.
type Service struct {
	store    *vectorstore.Store
	llmCfg   llm.Config
	redactor Redactor

	embedderFactory  func(ctx context.Context, cfg llm.Config) (embedding.Embedder, error)
	chatModelFactory func(ctx context.Context, cfg llm.Config) (model.BaseChatModel, error)
}

// NewService creates the retrieval pipeline. redactor may be nil when
// redaction is disabled.
func NewService(store *vectorstore.Store, cfg llm.Config, redactor Redactor) *Service {
	return &Service{
		store:            store,
		llmCfg:           cfg,
		redactor:         redactor,
		embedderFactory:  llm.NewEmbedder,
		chatModelFactory: llm.NewChatModel,
	}
}

// IndexPages replaces the stored context for a ticket with the given filter
// results: each page is redacted, embedded and upserted as one chunk.
// Returns the number of chunks stored.
func (s *Service) IndexPages(ctx context.Context, ticketKey string, results []relevance.Result) (int, error) {
	if len(results) == 0 {
		return 0, nil
	}

	// Re-running a ticket replaces its context wholesale.
	if err := s.store.DeleteByTicket(ticketKey); err != nil {
		return 0, fmt.Errorf("purge ticket context: %w", err)
	}

	texts := make([]string, len(results))
	for i, r := range results {
		text := r.Page.Title + "\n" + r.Page.PlainBody()
		if s.redactor != nil {
			redacted, err := s.redactor.Redact(ctx, text)
			if err != nil {
				return 0, fmt.Errorf("redact page %q: %w", r.Page.Title, err)
			}
			text = redacted
		}
		texts[i] = text
	}

	embedder, err := s.embedderFactory(ctx, s.llmCfg)
	if err != nil {
		return 0, fmt.Errorf("create embedder: %w", err)
	}

	vectors, err := embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed pages: %w", err)
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(texts))
	}

	for i, r := range results {
		if _, err := s.store.Upsert(vectorstore.Chunk{
			TicketKey: ticketKey,
			Title:     r.Page.Title,
			Content:   texts[i],
			Embedding: toFloat32(vectors[i]),
		}); err != nil {
			return i, fmt.Errorf("store chunk %q: %w", r.Page.Title, err)
		}
	}

	slog.Debug("indexed ticket context", "ticket", ticketKey, "chunks", len(results))
	return len(results), nil
}

// Retrieve embeds the query and returns the nearest stored chunks for the
// ticket.
func (s *Service) Retrieve(ctx context.Context, ticketKey, query string, limit int) ([]vectorstore.Scored, error) {
	embedder, err := s.embedderFactory(ctx, s.llmCfg)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	vectors, err := embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return s.store.QueryNearest(toFloat32(vectors[0]), ticketKey, limit)
}

// BuildContext renders retrieved chunks into the context block handed to
// the chat model.
func BuildContext(chunks []vectorstore.Scored) string {
	var parts []string
	for _, sc := range chunks {
		parts = append(parts, fmt.Sprintf("### %s\n%s", sc.Chunk.Title, sc.Chunk.Content))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// Answer generates a grounded answer to the question from the retrieved
// chunks.
func (s *Service) Answer(ctx context.Context, question string, chunks []vectorstore.Scored) (string, error) {
	if len(chunks) == 0 {
		return "", fmt.Errorf("no context available for question")
	}

	prompt := fmt.Sprintf(`Answer the question using ONLY the documentation below.
If the documentation does not contain the answer, say so. Be concise.

## Documentation:
%s

## Question:
%s

## Answer:`, BuildContext(chunks), question)

	chatModel, err := s.chatModelFactory(ctx, s.llmCfg)
	if err != nil {
		return "", fmt.Errorf("create chat model: %w", err)
	}

	resp, err := chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return resp.Content, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
