package config

import (
	"errors"
	"testing"

	"github.com/ramate-ai/ramate/internal/rag/ragerr"
)

func validBase() Config {
	return Config{
		CompletionProvider: "gemini",
		GeminiAPIKey:       "key",
		AdminToken:         "token",
		ChunkSize:          600,
		ChunkOverlap:       100,
		TopK:               3,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"Valid_Gemini", func(c *Config) {}, false},
		{"Valid_OpenRouter", func(c *Config) {
			c.CompletionProvider = "openrouter"
			c.OpenRouterAPIKey = "or-key"
		}, false},
		{"Missing_Gemini_Key", func(c *Config) { c.GeminiAPIKey = "" }, true},
		{"OpenRouter_Missing_Key", func(c *Config) {
			c.CompletionProvider = "openrouter"
			c.OpenRouterAPIKey = ""
		}, true},
		{"OpenRouter_Still_Needs_Embedding_Key", func(c *Config) {
			c.CompletionProvider = "openrouter"
			c.OpenRouterAPIKey = "or-key"
			c.GeminiAPIKey = ""
		}, true},
		{"Unknown_Provider", func(c *Config) { c.CompletionProvider = "ollama" }, true},
		{"Missing_Admin_Token", func(c *Config) { c.AdminToken = "" }, true},
		{"Overlap_Too_Large", func(c *Config) { c.ChunkOverlap = 600 }, true},
		{"TopK_Zero", func(c *Config) { c.TopK = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBase()
			tt.mutate(&cfg)
			err := cfg.validate()

			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if err != nil && !errors.Is(err, ragerr.ErrConfiguration) {
				t.Errorf("config errors must wrap ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("http://a.example, http://b.example ,,")
	if len(got) != 2 || got[0] != "http://a.example" || got[1] != "http://b.example" {
		t.Errorf("splitList got %v", got)
	}
}
