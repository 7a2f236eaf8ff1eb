package relevance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRichText_PlainText(t *testing.T) {
	doc := &RichText{
		Type: "doc",
		Content: []*RichText{
			{
				Type: "paragraph",
				Content: []*RichText{
					{Type: "text", Text: "first line"},
					{Type: "text", Text: "continues"},
				},
			},
			{
				Type: "paragraph",
				Content: []*RichText{
					{Type: "text", Text: "second line"},
				},
			},
		},
	}

	assert.Equal(t, "first line continues\nsecond line", doc.PlainText())
}

func TestRichText_PlainText_DepthFirstOrder(t *testing.T) {
	doc := &RichText{
		Content: []*RichText{
			{Text: "a", Content: []*RichText{{Text: "b"}}},
			{Text: "c"},
		},
	}

	assert.Equal(t, "a b c", doc.PlainText())
}

func TestRichText_PlainText_Nil(t *testing.T) {
	var doc *RichText
	assert.Equal(t, "", doc.PlainText())
}

func TestRichText_UnmarshalADF(t *testing.T) {
	raw := `{"type":"doc","version":1,"content":[{"type":"paragraph","content":[{"type":"text","text":"implement retry logic"}]}]}`

	var doc RichText
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "implement retry logic", doc.PlainText())
}

func TestDescription_Text(t *testing.T) {
	assert.Equal(t, "plain body", Description{Plain: "plain body"}.Text())
	assert.Equal(t, "", Description{}.Text())

	d := Description{Doc: &RichText{Text: "rich body"}}
	assert.Equal(t, "rich body", d.Text())
}

func TestExtractContext_Lowercases(t *testing.T) {
	tc := ExtractContext(Ticket{
		ID:    "AB-12",
		Title: "Add Login Retries",
		Description: Description{
			Plain: "The PaymentGateway times out",
		},
	})

	assert.Equal(t, "AB-12", tc.TicketID)
	assert.Equal(t, "add login retries", tc.Title)
	assert.Equal(t, "the paymentgateway times out", tc.Description)
}

func TestExtractContext_EmptyTicket(t *testing.T) {
	tc := ExtractContext(Ticket{})

	assert.Empty(t, tc.TicketID)
	assert.Empty(t, tc.Description)
	assert.Empty(t, tc.Labels)
	assert.Empty(t, tc.Components)
	assert.Empty(t, tc.Keywords)
}

func TestExtractKeywords_StopwordsExcluded(t *testing.T) {
	// "ticket" and "should" dominate by frequency but carry no signal.
	text := "ticket ticket ticket should should payment gateway payment"

	kws := extractKeywords(text)

	assert.NotContains(t, kws, "ticket")
	assert.NotContains(t, kws, "should")
	assert.Contains(t, kws, "payment")
	assert.Contains(t, kws, "gateway")
}

func TestExtractKeywords_ShortTokensExcluded(t *testing.T) {
	kws := extractKeywords("api db the configuration reload")

	// Tokens of length <= 3 are dropped regardless of content.
	assert.NotContains(t, kws, "api")
	assert.NotContains(t, kws, "db")
	assert.Contains(t, kws, "configuration")
	assert.Contains(t, kws, "reload")
}

func TestExtractKeywords_FrequencyOrder(t *testing.T) {
	kws := extractKeywords("gateway gateway gateway retry retry timeout")

	require.Len(t, kws, 3)
	assert.Equal(t, []string{"gateway", "retry", "timeout"}, kws)
}

func TestExtractKeywords_TieBreakByFirstOccurrence(t *testing.T) {
	kws := extractKeywords("zebra apple zebra apple")

	require.Len(t, kws, 2)
	assert.Equal(t, "zebra", kws[0])
	assert.Equal(t, "apple", kws[1])
}

func TestExtractKeywords_CapAt15(t *testing.T) {
	text := "alpha bravo charlie deltaa echoo foxtrot golfy hotel india juliet kiloo lima mikee november oscar papaa quebec romeo"

	kws := extractKeywords(text)

	assert.Len(t, kws, maxKeywords)
}

func TestExtractKeywords_Deterministic(t *testing.T) {
	text := "payment gateway retry timeout backoff payment gateway schema index worker"

	first := extractKeywords(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, extractKeywords(text))
	}
}

func TestExtractTechnicalTerms_PatternBattery(t *testing.T) {
	terms := extractTechnicalTerms("The REST endpoint writes to Postgres and checks OAuth tokens")

	assert.Contains(t, terms, "rest")
	assert.Contains(t, terms, "endpoint")
	assert.Contains(t, terms, "postgres")
	assert.Contains(t, terms, "oauth")
}

func TestExtractTechnicalTerms_CamelCase(t *testing.T) {
	terms := extractTechnicalTerms("Wire OrderService through the PaymentGatewayClient")

	assert.Contains(t, terms, "orderservice")
	assert.Contains(t, terms, "paymentgatewayclient")
}

func TestExtractTechnicalTerms_Deduplicated(t *testing.T) {
	terms := extractTechnicalTerms("API api Api")

	count := 0
	for _, term := range terms {
		if term == "api" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtractTechnicalTerms_NoMatch(t *testing.T) {
	assert.Empty(t, extractTechnicalTerms("nothing remarkable mentioned anywhere"))
}
