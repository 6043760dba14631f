package classifier

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/termwatch/internal/errors"
)

// Provider names accepted in Settings.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderCustom = "custom"
	ProviderGemini = "gemini"
)

// Request is a single completion request handed to a Provider.
type Request struct {
	Endpoint string
	APIKey   string
	Model    string
	Prompt   string
}

// Provider speaks one vendor's request/response protocol.
type Provider interface {
	// Name returns the provider tag used in configuration.
	Name() string
	// DefaultEndpoint returns the vendor's public endpoint, or "" when the
	// protocol has no canonical endpoint.
	DefaultEndpoint() string
	// DefaultModel returns the model used when Settings.Model is empty.
	DefaultModel() string
	// Complete sends the prompt and returns the raw reply text.
	Complete(ctx context.Context, req Request) (string, error)
}

// ProviderNames returns the supported provider tags, sorted.
func ProviderNames() []string {
	names := []string{ProviderOpenAI, ProviderClaude, ProviderCustom, ProviderGemini}
	slices.Sort(names)
	return names
}

// NewProvider returns the provider for name. Unknown names are a
// configuration error.
func NewProvider(name string, transport Transport) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderOpenAI:
		return &OpenAI{transport: transport}, nil
	case ProviderClaude:
		return &Claude{transport: transport}, nil
	case ProviderCustom:
		return &Custom{transport: transport}, nil
	case ProviderGemini:
		return &Gemini{transport: transport}, nil
	default:
		msg := fmt.Sprintf("unsupported provider %q", name)
		return nil, errors.NewClassifierError(errors.KindConfig, msg, errors.ErrUnknownProvider).WithProvider(name)
	}
}
