// Package relevance decides which documentation pages are worth embedding
// for a given ticket. It scores candidate pages against a ticket-derived
// search profile using several independent signals and keeps only the pages
// that clear a configurable threshold.
package relevance

import (
	"regexp"
	"sort"
	"strings"
)

// maxKeywords caps the keyword list derived from the ticket text.
const maxKeywords = 15

// minKeywordLen is the shortest token (exclusive) kept during keyword extraction.
const minKeywordLen = 3

// RichText is one node of a rich-text description tree (e.g. Atlassian
// Document Format). A node may carry text, children, or both. JSON tags
// match the ADF wire shape so a description document unmarshals directly.
type RichText struct {
	Type    string      `json:"type,omitempty"`
	Text    string      `json:"text,omitempty"`
	Content []*RichText `json:"content,omitempty"`
}

// PlainText folds the tree depth-first, left-to-right into plain text.
// Non-empty text values are joined with spaces; paragraph nodes contribute
// a trailing line break so reading order survives flattening.
func (n *RichText) PlainText() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	n.fold(&sb)
	return strings.TrimSpace(sb.String())
}

func (n *RichText) fold(sb *strings.Builder) {
	if n.Text != "" {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteString(" ")
		}
		sb.WriteString(n.Text)
	}
	for _, child := range n.Content {
		child.fold(sb)
	}
	if n.Type == "paragraph" {
		sb.WriteString("\n")
	}
}

// Description holds a ticket body that is either plain text or a parsed
// rich-text tree. The zero value reads as an empty description.
type Description struct {
	Plain string
	Doc   *RichText
}

// Text returns the plain-text form of the description.
func (d Description) Text() string {
	if d.Doc != nil {
		return d.Doc.PlainText()
	}
	return d.Plain
}

// Ticket is the work item driving a filtering run.
type Ticket struct {
	ID          string
	Title       string
	Description Description
	Labels      []string
	Components  []string
}

// TicketContext is the search profile derived once per ticket. It depends
// only on the ticket, never on any candidate page.
type TicketContext struct {
	TicketID       string
	Title          string
	Description    string
	Labels         []string
	Components     []string
	Keywords       []string
	TechnicalTerms []string
}

// ExtractContext derives the search profile used for scoring. Missing
// optional fields (description, labels, components) degrade to empty values.
func ExtractContext(t Ticket) TicketContext {
	// Technical-term extraction needs the original casing for CamelCase
	// detection; keyword extraction works on the lowercased text.
	raw := t.Title + " " + t.Description.Text()

	return TicketContext{
		TicketID:       t.ID,
		Title:          strings.ToLower(t.Title),
		Description:    strings.ToLower(t.Description.Text()),
		Labels:         t.Labels,
		Components:     t.Components,
		Keywords:       extractKeywords(strings.ToLower(raw)),
		TechnicalTerms: extractTechnicalTerms(raw),
	}
}

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// extractKeywords returns the most frequent content words of the text,
// capped at maxKeywords. Ties are broken by first occurrence so the result
// is deterministic for a given input.
func extractKeywords(text string) []string {
	cleaned := nonWordRe.ReplaceAllString(text, " ")

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, tok := range strings.Fields(cleaned) {
		if len(tok) <= minKeywordLen || stopwords[tok] {
			continue
		}
		if _, ok := counts[tok]; !ok {
			firstSeen[tok] = i
		}
		counts[tok]++
	}

	keywords := make([]string, 0, len(counts))
	for tok := range counts {
		keywords = append(keywords, tok)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return firstSeen[keywords[i]] < firstSeen[keywords[j]]
	})

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

// extractTechnicalTerms unions the matches of the pattern battery plus
// CamelCase identifiers, lowercased and deduplicated. The set is not capped.
func extractTechnicalTerms(text string) []string {
	seen := make(map[string]bool)
	var terms []string

	add := func(match string) {
		lowered := strings.ToLower(match)
		if !seen[lowered] {
			seen[lowered] = true
			terms = append(terms, lowered)
		}
	}

	for _, p := range termPatterns {
		for _, m := range p.re.FindAllString(text, -1) {
			add(m)
		}
	}
	for _, m := range camelCaseRe.FindAllString(text, -1) {
		add(m)
	}
	return terms
}
