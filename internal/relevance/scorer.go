package relevance

import (
	"regexp"
	"strings"
)

// Page is a candidate documentation page. Body may be raw markup; labels
// are optional.
type Page struct {
	ID     string
	Title  string
	Body   string
	Labels []string
}

// Result is one scored page. Score is in [0,1]; MatchedBy lists the signals
// that contributed a positive sub-score. Details carries per-signal
// sub-scores when the config enables debug output.
type Result struct {
	Page      Page
	Score     float64
	MatchedBy []string
	Details   map[string]float64
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// stripTags removes markup tags from a page body. A simple removal pass is
// enough here; scoring only needs the visible text as a substring substrate.
func stripTags(body string) string {
	return tagRe.ReplaceAllString(body, " ")
}

// searchableText is the lowercased title plus de-tagged body of a page.
func searchableText(p Page) string {
	return strings.ToLower(p.Title + " " + stripTags(p.Body))
}

// PlainBody returns the page body with markup removed, for callers that
// feed page content onward (embedding, prompts) rather than scoring it.
func (p Page) PlainBody() string {
	return strings.TrimSpace(strings.Join(strings.Fields(stripTags(p.Body)), " "))
}

// scorePage computes the weighted relevance score for one (context, page)
// pair. Each sub-signal is evaluated independently in [0,1], scaled by its
// weight and summed. Degenerate inputs degrade the relevant sub-score to
// zero; scoring never fails.
func scorePage(tc TicketContext, p Page, cfg Config) Result {
	res := Result{Page: p}
	if cfg.Debug {
		res.Details = make(map[string]float64)
	}

	text := searchableText(p)

	record := func(signal string, sub, weight float64) {
		if cfg.Debug {
			res.Details[signal] = sub
		}
		if sub > 0 {
			res.Score += sub * weight
			res.MatchedBy = append(res.MatchedBy, signal)
		}
	}

	if tc.TicketID != "" {
		record(SignalTicketID, ticketIDScore(tc, p, text), WeightTicketID)
	}
	if cfg.UseKeywords {
		record(SignalKeywords, keywordScore(tc, text), WeightKeywords)
	}
	if cfg.UseTitleMatch {
		record(SignalTitle, titleScore(tc, p), WeightTitle)
	}
	if cfg.UseLabels && len(tc.Labels) > 0 {
		record(SignalLabels, labelScore(tc, p), WeightLabels)
	}
	if cfg.UseComponents && len(tc.Components) > 0 {
		record(SignalComponents, componentScore(tc, text), WeightComponents)
	}

	return res
}

// ticketIDScore is binary: 1.0 when the page title or searchable text
// contains the ticket identifier, case-insensitive. A title hit and a body
// hit are equivalent.
func ticketIDScore(tc TicketContext, p Page, text string) float64 {
	id := strings.ToLower(tc.TicketID)
	if strings.Contains(strings.ToLower(p.Title), id) || strings.Contains(text, id) {
		return 1.0
	}
	return 0.0
}

// keywordScore is the hit ratio over the ticket's keywords and technical
// terms. Technical-term hits count double on both sides of the ratio:
// technical vocabulary is a stronger relevance signal than generic frequent
// words.
func keywordScore(tc TicketContext, text string) float64 {
	denom := len(tc.Keywords) + 2*len(tc.TechnicalTerms)
	if denom == 0 {
		return 0.0
	}

	hits := 0
	for _, kw := range tc.Keywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	for _, term := range tc.TechnicalTerms {
		if strings.Contains(text, term) {
			hits += 2
		}
	}

	score := float64(hits) / float64(denom)
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// titleScore is the Jaccard similarity of the word sets (length > 2) of the
// page title and the ticket title, both lowercased.
func titleScore(tc TicketContext, p Page) float64 {
	ticketWords := titleWordSet(tc.Title)
	pageWords := titleWordSet(strings.ToLower(p.Title))
	if len(ticketWords) == 0 || len(pageWords) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range ticketWords {
		if pageWords[w] {
			intersection++
		}
	}
	union := len(ticketWords) + len(pageWords) - intersection
	return float64(intersection) / float64(union)
}

func titleWordSet(title string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(nonWordRe.ReplaceAllString(title, " ")) {
		if len(w) > 2 {
			set[w] = true
		}
	}
	return set
}

// labelScore is the fraction of ticket labels present in the page's label
// set, matched case-insensitively and exactly.
func labelScore(tc TicketContext, p Page) float64 {
	if len(tc.Labels) == 0 || len(p.Labels) == 0 {
		return 0.0
	}

	pageLabels := make(map[string]bool, len(p.Labels))
	for _, l := range p.Labels {
		pageLabels[strings.ToLower(l)] = true
	}

	matches := 0
	for _, l := range tc.Labels {
		if pageLabels[strings.ToLower(l)] {
			matches++
		}
	}
	return float64(matches) / float64(len(tc.Labels))
}

// componentScore is the fraction of ticket components that appear as
// case-insensitive substrings of the page's searchable text.
func componentScore(tc TicketContext, text string) float64 {
	if len(tc.Components) == 0 {
		return 0.0
	}

	matches := 0
	for _, c := range tc.Components {
		if strings.Contains(text, strings.ToLower(c)) {
			matches++
		}
	}
	return float64(matches) / float64(len(tc.Components))
}
