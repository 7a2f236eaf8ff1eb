package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testwing/testwing/internal/llm"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	t.Setenv("OPENAI_API_KEY", "")

	app, err := Load()
	require.NoError(t, err)

	assert.Equal(t, llm.ProviderOpenAI, app.LLM.Provider)
	assert.Equal(t, llm.DefaultOpenAIModel, app.LLM.Model)
	assert.Equal(t, 30, app.Filter.MaxPages)
	assert.InDelta(t, 0.3, app.Filter.MinScore, 1e-9)
	assert.False(t, app.Redaction.Enabled)
	assert.Equal(t, "en", app.Redaction.Language)
	assert.Equal(t, "generated-tests", app.Output.Dir)
	assert.Equal(t, "go", app.Output.Language)
	assert.False(t, app.Telemetry.Enabled)
}

func TestLoad_ViperOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("atlassian.baseURL", "https://acme.atlassian.net")
	viper.Set("atlassian.email", "dev@acme.com")
	viper.Set("atlassian.apiToken", "token")
	viper.Set("atlassian.timeout", "10s")
	viper.Set("llm.provider", "ollama")
	viper.Set("filter.max_pages", 5)
	viper.Set("redaction.enabled", true)
	viper.Set("redaction.analyzerURL", "http://localhost:5001")

	app, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://acme.atlassian.net", app.Jira.BaseURL)
	assert.Equal(t, app.Jira.BaseURL, app.Confluence.BaseURL)
	assert.Equal(t, 10*time.Second, app.Jira.Timeout)
	assert.Equal(t, llm.ProviderOllama, app.LLM.Provider)
	assert.Equal(t, llm.DefaultOllamaURL, app.LLM.BaseURL)
	assert.Equal(t, llm.DefaultOllamaEmbeddingModel, app.LLM.EmbeddingModel)
	assert.Equal(t, 5, app.Filter.MaxPages)
	assert.True(t, app.Redaction.Enabled)
}

func TestLoad_InvalidProvider(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("llm.provider", "skynet")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid provider")
}

func TestResolveAPIKey_Precedence(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	t.Setenv("OPENAI_API_KEY", "sk-env")

	assert.Equal(t, "sk-env", ResolveAPIKey(llm.ProviderOpenAI))

	viper.Set("llm.apiKeys.openai", "sk-config")
	assert.Equal(t, "sk-config", ResolveAPIKey(llm.ProviderOpenAI))
}

func TestResolveAPIKey_GeminiFallback(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "g-key")

	assert.Equal(t, "g-key", ResolveAPIKey(llm.ProviderGemini))
}

func TestValidateAtlassian(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	app, err := Load()
	require.NoError(t, err)
	assert.Error(t, app.ValidateAtlassian())

	app.Jira.BaseURL = "https://acme.atlassian.net"
	assert.Error(t, app.ValidateAtlassian())

	app.Jira.Email = "dev@acme.com"
	app.Jira.APIToken = "token"
	assert.NoError(t, app.ValidateAtlassian())
}
