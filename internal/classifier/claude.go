package classifier

import (
	"context"

	"github.com/Iron-Ham/termwatch/internal/errors"
)

const anthropicVersion = "2023-06-01"

// Claude speaks the Anthropic messages protocol.
type Claude struct {
	transport Transport
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string  `json:"type"`
		Text *string `json:"text"`
	} `json:"content"`
}

func (p *Claude) Name() string            { return ProviderClaude }
func (p *Claude) DefaultEndpoint() string { return "https://api.anthropic.com/v1/messages" }
func (p *Claude) DefaultModel() string    { return "claude-3-haiku-20240307" }

// Complete sends a single user message and returns the first content
// block's text.
func (p *Claude) Complete(ctx context.Context, req Request) (string, error) {
	body := claudeRequest{
		Model:     req.Model,
		MaxTokens: replyTokens,
		Messages:  []claudeMessage{{Role: "user", Content: req.Prompt}},
	}
	headers := map[string]string{
		"x-api-key":         req.APIKey,
		"anthropic-version": anthropicVersion,
	}

	var resp claudeResponse
	if err := postJSON(ctx, p.transport, p.Name(), req.Endpoint, headers, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return "", errors.NewClassifierError(errors.KindProtocol, "missing content[0].text", errors.ErrMalformedResponse).
			WithProvider(p.Name())
	}
	return *resp.Content[0].Text, nil
}
