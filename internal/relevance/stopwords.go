package relevance

// stopwords are tokens excluded from keyword extraction: common English
// function words plus process vocabulary that carries no topical signal in
// ticket text.
var stopwords = map[string]bool{
	// English function words
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "are": true,
	"was": true, "were": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "does": true, "did": true, "will": true,
	"would": true, "could": true, "this": true, "that": true, "these": true,
	"those": true, "there": true, "their": true, "them": true, "they": true,
	"then": true, "than": true, "when": true, "where": true, "which": true,
	"while": true, "what": true, "about": true, "into": true, "over": true,
	"also": true, "some": true, "such": true, "only": true, "other": true,
	"more": true, "most": true, "each": true, "very": true, "just": true,
	"like": true, "well": true, "because": true, "after": true, "before": true,
	"between": true, "through": true, "during": true, "without": true,
	"within": true, "using": true, "used": true, "uses": true,

	// Process words common in tickets, useless for matching documentation
	"ticket": true, "jira": true, "issue": true, "task": true, "story": true,
	"epic": true, "feature": true, "requirement": true, "need": true,
	"needs": true, "want": true, "wants": true, "should": true, "must": true,
	"able": true, "make": true, "makes": true, "please": true, "thanks": true,
	"currently": true, "implement": true, "implemented": true, "added": true,
	"adding": true, "change": true, "changed": true, "ensure": true,
}
