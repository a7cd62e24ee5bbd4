package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/iask",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Provider: ProviderConfig{
			Type:    "ollama",
			BaseURL: "http://localhost:11434",
			Model:   "llama3.1:latest",
		},
		Engine: EngineConfig{
			PublishIntervalMS: 100,
			MaxChainDepth:     8,
			SpeechEnabled:     false,
		},
		Security: SecurityConfig{
			Method: "plaintext",
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# iask System Configuration
# Location: ~/.config/iask/settings.toml
# This file uses TOML format: https://toml.io

# Directory where conversations and user config are stored
data_directory = "~/.local/share/iask"
`
}

func GenerateUserConfigTemplate() string {
	return `# iask User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[provider]
# LLM backend: "ollama", "openai" or "anthropic"
type = "ollama"

# Backend base URL (leave default for cloud providers)
base_url = "http://localhost:11434"

# Model to use
model = "llama3.1:latest"

[engine]
# How often partial answers become visible, in milliseconds
publish_interval_ms = 100

# Maximum answer -> tool -> answer cycles per user request
max_chain_depth = 8

# Feed completed sentences to the speech queue while streaming
speech_enabled = false

[security]
# Credential storage: "plaintext" or "ssh_key" (AES-256-GCM, key derived
# from an SSH private key signature)
method = "plaintext"
# ssh_key_path = "~/.ssh/id_ed25519"

# Default system prompt for new conversations (optional)
default_system_prompt = ""
`
}
