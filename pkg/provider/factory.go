package provider

import (
	"fmt"
)

// Profile holds the credentials and model selection for one backend.
// Exactly one backend is active per process; which one is a deploy-time
// choice, not a runtime fan-out.
type Profile struct {
	Provider string `json:"provider"` // "anthropic", "openai", "gemini"
	APIKey   string `json:"api_key"`
	Model    string `json:"model,omitempty"`
}

// New creates the provider named by the profile.
func New(profile Profile) (Provider, error) {
	if profile.APIKey == "" {
		return nil, fmt.Errorf("provider %s: api key is required", profile.Provider)
	}
	switch profile.Provider {
	case "anthropic":
		return NewAnthropicProvider(profile.APIKey, profile.Model), nil
	case "openai":
		return NewOpenAIProvider(profile.APIKey, profile.Model), nil
	case "gemini":
		return NewGeminiProvider(profile.APIKey, profile.Model), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", profile.Provider)
	}
}
