package testgen

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/testwing/testwing/internal/relevance"
)

// Writer renders a generation run to disk: one directory per ticket holding
// the generated test files plus a report.md summarising the run.
type Writer struct {
	fs  afero.Fs
	dir string
}

// NewWriter writes under baseDir on the OS filesystem.
func NewWriter(baseDir string) *Writer {
	return &Writer{fs: afero.NewOsFs(), dir: baseDir}
}

// NewWriterFs writes under baseDir on the given filesystem.
func NewWriterFs(fs afero.Fs, baseDir string) *Writer {
	return &Writer{fs: fs, dir: baseDir}
}

// WriteGeneration writes the generated test files and a report for the
// ticket. Returns the ticket's output directory.
func (w *Writer) WriteGeneration(ticket relevance.Ticket, gen *Generation, metrics relevance.Metrics) (string, error) {
	dir := filepath.Join(w.dir, sanitizeName(ticket.ID))
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	for _, f := range gen.Files {
		path := filepath.Join(dir, sanitizeName(f.Name))
		if err := afero.WriteFile(w.fs, path, []byte(f.Content), 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", f.Name, err)
		}
	}

	report := renderReport(ticket, gen, metrics)
	if err := afero.WriteFile(w.fs, filepath.Join(dir, "report.md"), []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return dir, nil
}

// WriteEvaluation writes an evaluation report for the ticket.
func (w *Writer) WriteEvaluation(ticket relevance.Ticket, eval *Evaluation) (string, error) {
	dir := filepath.Join(w.dir, sanitizeName(ticket.ID))
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, "evaluation.md")
	if err := afero.WriteFile(w.fs, path, []byte(renderEvaluation(ticket, eval)), 0o644); err != nil {
		return "", fmt.Errorf("write evaluation: %w", err)
	}
	return path, nil
}

func renderReport(ticket relevance.Ticket, gen *Generation, metrics relevance.Metrics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Test Generation Report: %s\n\n", ticket.ID)
	fmt.Fprintf(&b, "**Ticket:** %s\n\n", ticket.Title)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "## Summary\n\n%s\n\n", gen.Summary)

	b.WriteString("## Generated Files\n\n")
	for _, f := range gen.Files {
		fmt.Fprintf(&b, "- `%s` (%s)\n", f.Name, f.Language)
	}
	b.WriteString("\n")

	b.WriteString("## Documentation Context\n\n")
	fmt.Fprintf(&b, "- Pages considered: %d\n", metrics.TotalPages)
	fmt.Fprintf(&b, "- Pages used: %d\n", metrics.FilteredPages)
	fmt.Fprintf(&b, "- Reduction: %.1f%%\n", metrics.ReductionPercentage)
	fmt.Fprintf(&b, "- Average relevance: %.2f\n", metrics.AverageScore)

	return b.String()
}

func renderEvaluation(ticket relevance.Ticket, eval *Evaluation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Test Evaluation: %s\n\n", ticket.ID)
	fmt.Fprintf(&b, "**Score:** %d/100\n\n", eval.Score)
	fmt.Fprintf(&b, "**Verdict:** %s\n\n", eval.Verdict)

	if len(eval.Strengths) > 0 {
		b.WriteString("## Strengths\n\n")
		for _, s := range eval.Strengths {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}
	if len(eval.Gaps) > 0 {
		b.WriteString("## Gaps\n\n")
		for _, g := range eval.Gaps {
			fmt.Fprintf(&b, "- %s\n", g)
		}
	}

	return b.String()
}

// sanitizeName keeps file and directory names shell and path safe.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "unnamed"
	}
	return name
}
