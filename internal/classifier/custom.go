package classifier

import (
	"context"
	"encoding/json"

	"github.com/Iron-Ham/termwatch/internal/errors"
)

// Custom speaks a minimal contract for self-hosted classifiers:
//
//	request:  {"prompt": "...", "model": "..."}   (model only when set)
//	response: {"response": "YES"} or {"text": "YES"}
type Custom struct {
	transport Transport
}

type customRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

func (p *Custom) Name() string            { return ProviderCustom }
func (p *Custom) DefaultEndpoint() string { return "" }
func (p *Custom) DefaultModel() string    { return "" }

// Complete posts the prompt and returns "response", falling back to "text".
// A present but non-string field is malformed.
func (p *Custom) Complete(ctx context.Context, req Request) (string, error) {
	headers := map[string]string{"Authorization": "Bearer " + req.APIKey}

	var resp map[string]json.RawMessage
	if err := postJSON(ctx, p.transport, p.Name(), req.Endpoint, headers, customRequest{Prompt: req.Prompt, Model: req.Model}, &resp); err != nil {
		return "", err
	}

	for _, field := range []string{"response", "text"} {
		raw, ok := resp[field]
		if !ok || string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", errors.NewClassifierError(errors.KindProtocol, field+" is not a string", errors.ErrMalformedResponse).
				WithProvider(p.Name())
		}
		if s != "" {
			return s, nil
		}
	}
	return "", errors.NewClassifierError(errors.KindProtocol, "missing response or text field", errors.ErrMalformedResponse).
		WithProvider(p.Name())
}
