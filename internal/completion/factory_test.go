package completion

import (
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "openai missing key",
			cfg:     Config{Backend: BackendOpenAI},
			wantErr: "OPENAI_API_KEY",
		},
		{
			name: "openai valid",
			cfg:  Config{Backend: BackendOpenAI, OpenAI: OpenAISettings{APIKey: "sk-test", Model: "gpt-4o"}},
		},
		{
			name:    "azure missing endpoint",
			cfg:     Config{Backend: BackendAzure, Azure: AzureSettings{APIKey: "k", Deployment: "d"}},
			wantErr: "AZURE_OPENAI_ENDPOINT",
		},
		{
			name:    "azure missing deployment",
			cfg:     Config{Backend: BackendAzure, Azure: AzureSettings{APIKey: "k", Endpoint: "https://x"}},
			wantErr: "AZURE_OPENAI_DEPLOYMENT",
		},
		{
			name: "azure valid",
			cfg:  Config{Backend: BackendAzure, Azure: AzureSettings{APIKey: "k", Endpoint: "https://x", Deployment: "d"}},
		},
		{
			name:    "ollama missing model",
			cfg:     Config{Backend: BackendOllama, Ollama: OllamaSettings{Host: "http://localhost:11434"}},
			wantErr: "OLLAMA_MODEL",
		},
		{
			name:    "gemini missing key",
			cfg:     Config{Backend: BackendGemini},
			wantErr: "GOOGLE_API_KEY",
		},
		{
			name:    "anthropic missing key",
			cfg:     Config{Backend: BackendAnthropic},
			wantErr: "ANTHROPIC_API_KEY",
		},
		{
			name: "anthropic valid",
			cfg:  Config{Backend: BackendAnthropic, Anthropic: AnthropicSettings{APIKey: "sk-ant", Model: "claude-sonnet-4-20250514"}},
		},
		{
			name:    "unknown backend",
			cfg:     Config{Backend: "mystery"},
			wantErr: "unknown backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}
