package relevance

import "regexp"

// termPattern pairs a vocabulary category with its compiled pattern.
// Categories are evaluated independently and their matches unioned, so
// extending the battery means appending an entry here.
type termPattern struct {
	label string
	re    *regexp.Regexp
}

// termPatterns is the fixed battery used for technical-term detection.
// All patterns are case-insensitive; matches are lowercased before use.
var termPatterns = []termPattern{
	{"api", regexp.MustCompile(`(?i)\b(api|endpoint|rest|graphql|webhook|http|https|get|post|put|patch|delete)\b`)},
	{"database", regexp.MustCompile(`(?i)\b(database|sql|query|table|schema|index|migration|postgres|postgresql|mysql|mongodb|redis|sqlite)\b`)},
	{"framework", regexp.MustCompile(`(?i)\b(react|angular|vue|spring|django|flask|express|rails|laravel|kubernetes|docker|kafka)\b`)},
	{"auth", regexp.MustCompile(`(?i)\b(auth|authentication|authorization|oauth|jwt|token|login|logout|session|permission|role)\b`)},
	{"architecture", regexp.MustCompile(`(?i)\b(service|controller|repository|model|component|module|middleware|handler|gateway)\b`)},
	{"crud", regexp.MustCompile(`(?i)\b(create|read|update|insert|select|upsert|fetch|save|remove)\b`)},
	{"entity", regexp.MustCompile(`(?i)\b(user|customer|order|product|invoice|payment|account|cart|subscription)\b`)},
}

// camelCaseRe detects CamelCase and PascalCase identifiers: two or more
// capitalized segments run together, the usual shape of class and service
// names quoted verbatim in tickets.
var camelCaseRe = regexp.MustCompile(`\b[A-Z][a-z0-9]+(?:[A-Z][a-z0-9]+)+\b`)
