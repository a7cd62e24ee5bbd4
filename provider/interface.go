// Package provider implements the model.Provider interface for the
// supported LLM backends (Ollama, OpenAI, Anthropic).
//
// Each implementation adapts its SDK's streaming surface to the engine's
// provider-agnostic stream events: text deltas, function-call name fragments
// and function-call argument fragments. All type conversion between iask
// turns and SDK message formats lives in this package, so the engine never
// sees a provider-specific type.
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama    ProviderType = "ollama"
	ProviderTypeOpenAI    ProviderType = "openai"
	ProviderTypeAnthropic ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type         ProviderType
	BaseURL      string
	Model        string
	APIKey       string // OpenAI/Anthropic (unused for Ollama)
	SystemPrompt string
}
