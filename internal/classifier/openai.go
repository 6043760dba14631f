package classifier

import (
	"context"

	"github.com/Iron-Ham/termwatch/internal/errors"
)

const openAISystemMessage = "You are a helpful assistant that analyzes terminal output."

// OpenAI speaks the chat-completions protocol.
type OpenAI struct {
	transport Transport
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAI) Name() string            { return ProviderOpenAI }
func (p *OpenAI) DefaultEndpoint() string { return "https://api.openai.com/v1/chat/completions" }
func (p *OpenAI) DefaultModel() string    { return "gpt-3.5-turbo" }

// Complete sends a system + user message pair and returns the first
// choice's message content.
func (p *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	body := openAIRequest{
		Model: req.Model,
		Messages: []openAIMessage{
			{Role: "system", Content: openAISystemMessage},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   replyTokens,
		Temperature: replyTemperature,
	}
	headers := map[string]string{"Authorization": "Bearer " + req.APIKey}

	var resp openAIResponse
	if err := postJSON(ctx, p.transport, p.Name(), req.Endpoint, headers, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return "", errors.NewClassifierError(errors.KindProtocol, "missing choices[0].message.content", errors.ErrMalformedResponse).
			WithProvider(p.Name())
	}
	return *resp.Choices[0].Message.Content, nil
}
