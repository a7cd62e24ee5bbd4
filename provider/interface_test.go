package provider

import (
	"testing"

	"iask/model"
)

// Compile-time checks that every backend implements the Provider interface.
func TestProvidersImplementInterface(t *testing.T) {
	var _ model.Provider = (*OllamaProvider)(nil)
	var _ model.Provider = (*OpenAIProvider)(nil)
	var _ model.Provider = (*AnthropicProvider)(nil)
}

func TestMapProviderIDToType(t *testing.T) {
	tests := []struct {
		id   string
		want ProviderType
	}{
		{"ollama", ProviderTypeOllama},
		{"openai", ProviderTypeOpenAI},
		{"anthropic", ProviderTypeAnthropic},
		{"something-else", ProviderType("something-else")},
	}
	for _, tt := range tests {
		if got := MapProviderIDToType(tt.id); got != tt.want {
			t.Errorf("MapProviderIDToType(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestFactoryRejectsUnknownType(t *testing.T) {
	if _, err := NewProvider(Config{Type: "bogus"}); err == nil {
		t.Error("expected error for unknown provider type")
	}
}

func TestFactoryRequiresAPIKeys(t *testing.T) {
	if _, err := NewProvider(Config{Type: ProviderTypeOpenAI}); err == nil {
		t.Error("OpenAI provider accepted empty API key")
	}
	if _, err := NewProvider(Config{Type: ProviderTypeAnthropic}); err == nil {
		t.Error("Anthropic provider accepted empty API key")
	}
}
