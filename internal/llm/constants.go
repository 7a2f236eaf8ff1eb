package llm

// Provider constants
const (
	// DefaultProvider is used when no provider is configured.
	DefaultProvider = ProviderOpenAI

	// ProviderOpenAI represents the OpenAI provider.
	ProviderOpenAI Provider = "openai"

	// ProviderOllama represents a local Ollama server.
	ProviderOllama Provider = "ollama"

	// ProviderAnthropic represents the Anthropic provider (chat only).
	ProviderAnthropic Provider = "anthropic"

	// ProviderGemini represents the Google Gemini provider.
	ProviderGemini Provider = "gemini"
)

// Default chat models per provider.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultOllamaModel    = "llama3.1"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultGeminiModel    = "gemini-2.0-flash"
)

// Default embedding models.
const (
	DefaultOpenAIEmbeddingModel = "text-embedding-3-small"
	DefaultOllamaEmbeddingModel = "nomic-embed-text"
)

// DefaultOllamaURL is the default URL for a local Ollama server.
const DefaultOllamaURL = "http://localhost:11434"

// DefaultModelForProvider returns the default chat model for a provider.
func DefaultModelForProvider(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderOllama:
		return DefaultOllamaModel
	case ProviderAnthropic:
		return DefaultAnthropicModel
	case ProviderGemini:
		return DefaultGeminiModel
	default:
		return ""
	}
}
