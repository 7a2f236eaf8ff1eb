// Package vectorstore persists embedded page chunks in SQLite and answers
// nearest-neighbor queries by cosine similarity. It is the retrieval backend
// for the RAG pipeline; one row per embedded chunk, scoped by ticket key.
package vectorstore

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Chunk is one embedded unit of page content.
type Chunk struct {
	ID        string
	TicketKey string
	Title     string
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

// Scored pairs a chunk with its similarity to a query embedding.
type Scored struct {
	Chunk Chunk
	Score float32
}

// Store is a SQLite-backed vector store.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the store at basePath/vectors.db. Pass
// ":memory:" for an ephemeral store in tests.
func NewStore(basePath string) (*Store, error) {
	dbPath := basePath
	if basePath != ":memory:" {
		if err := os.MkdirAll(basePath, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		dbPath = filepath.Join(basePath, "vectors.db")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		ticket_key TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		embedding BLOB,                  -- float32 little-endian
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_ticket ON chunks(ticket_key);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Upsert stores a chunk, replacing any existing row with the same ID.
// A missing ID or timestamp is filled in.
func (s *Store) Upsert(c Chunk) (Chunk, error) {
	if c.ID == "" {
		c.ID = "c-" + uuid.New().String()[:8]
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	var embeddingBytes []byte
	if len(c.Embedding) > 0 {
		embeddingBytes = float32SliceToBytes(c.Embedding)
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO chunks (id, ticket_key, title, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.TicketKey, c.Title, c.Content, embeddingBytes, c.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return Chunk{}, fmt.Errorf("insert chunk: %w", err)
	}
	return c, nil
}

// QueryNearest returns up to limit chunks for the ticket, ordered by cosine
// similarity to the query embedding, highest first. Chunks without an
// embedding are skipped.
func (s *Store) QueryNearest(query []float32, ticketKey string, limit int) ([]Scored, error) {
	rows, err := s.db.Query(`
		SELECT id, ticket_key, title, content, embedding, created_at
		FROM chunks WHERE ticket_key = ?
	`, ticketKey)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var scored []Scored
	for rows.Next() {
		var c Chunk
		var embeddingBytes []byte
		var createdAt string
		if err := rows.Scan(&c.ID, &c.TicketKey, &c.Title, &c.Content, &embeddingBytes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if len(embeddingBytes) == 0 {
			continue
		}
		c.Embedding = bytesToFloat32Slice(embeddingBytes)
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		scored = append(scored, Scored{
			Chunk: c,
			Score: CosineSimilarity(query, c.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// DeleteByTicket removes all chunks stored for a ticket.
func (s *Store) DeleteByTicket(ticketKey string) error {
	if _, err := s.db.Exec(`DELETE FROM chunks WHERE ticket_key = ?`, ticketKey); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// Count returns the number of chunks stored for a ticket.
func (s *Store) Count(ticketKey string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM chunks WHERE ticket_key = ?`, ticketKey).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Mismatched lengths or zero vectors yield 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToFloat32Slice(buf []byte) []float32 {
	floats := make([]float32, len(buf)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return floats
}
