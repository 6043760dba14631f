package classifier

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/Iron-Ham/termwatch/internal/errors"
)

// Gemini calls the Gemini API through the Google Gen AI SDK. The configured
// endpoint becomes the SDK's base URL.
type Gemini struct {
	transport Transport
}

func (p *Gemini) Name() string            { return ProviderGemini }
func (p *Gemini) DefaultEndpoint() string { return "https://generativelanguage.googleapis.com/" }
func (p *Gemini) DefaultModel() string    { return "gemini-2.0-flash" }

// Complete generates a short completion and returns its text.
func (p *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	cfg := &genai.ClientConfig{
		APIKey:  req.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL(req.Endpoint),
		},
	}
	// The SDK only accepts a concrete *http.Client.
	if hc, ok := p.transport.(*http.Client); ok {
		cfg.HTTPClient = hc
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", errors.NewClassifierError(errors.KindConfig, "create gemini client", err).WithProvider(p.Name())
	}

	temp := float32(replyTemperature)
	res, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(replyTokens),
	})
	if err != nil {
		return "", p.classify(ctx, err)
	}

	text := res.Text()
	if text == "" {
		return "", errors.NewClassifierError(errors.KindProtocol, "no candidate text", errors.ErrMalformedResponse).
			WithProvider(p.Name())
	}
	return text, nil
}

// classify maps SDK failures onto the shared error kinds. API errors carry
// the HTTP status; anything else went wrong on the wire.
func (p *Gemini) classify(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.NewClassifierError(errors.KindAuth, "request rejected", errors.ErrUnauthorized).
				WithProvider(p.Name()).
				WithStatusCode(apiErr.Code)
		default:
			return errors.NewClassifierError(errors.KindProtocol, apiErr.Message, errors.ErrUnexpectedStatus).
				WithProvider(p.Name()).
				WithStatusCode(apiErr.Code)
		}
	}
	return classifyTransportError(ctx, err).WithProvider(p.Name())
}

// baseURL trims an endpoint down to scheme and host plus any path prefix
// before the SDK's own "/v1beta/models/..." suffix.
func baseURL(endpoint string) string {
	if i := strings.Index(endpoint, "/v1beta"); i >= 0 {
		endpoint = endpoint[:i]
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return endpoint
}
