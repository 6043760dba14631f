package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/Iron-Ham/termwatch/internal/errors"
)

// DefaultTimeout bounds every classifier request.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a reply body is read.
const maxResponseBytes = 1 << 20

// Transport sends HTTP requests. *http.Client satisfies it.
type Transport interface {
	Do(*http.Request) (*http.Response, error)
}

var _ Transport = (*http.Client)(nil)

// NewHTTPTransport returns an *http.Client with the given timeout. A
// non-positive timeout uses DefaultTimeout.
func NewHTTPTransport(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// postJSON marshals body, POSTs it to endpoint with the given headers and
// decodes the JSON reply into out. Every failure comes back as a
// *errors.ClassifierError tagged with provider.
func postJSON(ctx context.Context, t Transport, provider, endpoint string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.NewClassifierError(errors.KindProtocol, "encode request", err).WithProvider(provider)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.NewClassifierError(errors.KindConfig, "build request", err).WithProvider(provider)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err).WithProvider(provider)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classifyTransportError(ctx, err).WithProvider(provider)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.NewClassifierError(errors.KindAuth, "request rejected", errors.ErrUnauthorized).
			WithProvider(provider).
			WithStatusCode(resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := fmt.Sprintf("endpoint answered %s", resp.Status)
		return errors.NewClassifierError(errors.KindProtocol, msg, errors.ErrUnexpectedStatus).
			WithProvider(provider).
			WithStatusCode(resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewClassifierError(errors.KindProtocol, "decode response", errors.Join(errors.ErrMalformedResponse, err)).
			WithProvider(provider).
			WithStatusCode(resp.StatusCode)
	}
	return nil
}

// classifyTransportError sorts a failed round trip into timeout,
// unreachable endpoint or generic transport failure.
func classifyTransportError(ctx context.Context, err error) *errors.ClassifierError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewClassifierError(errors.KindTimeout, "request timed out", errors.Join(errors.ErrTimeout, err))
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return errors.NewClassifierError(errors.KindTimeout, "request timed out", errors.Join(errors.ErrTimeout, err))
	}
	if errors.Is(err, context.Canceled) {
		return errors.NewClassifierError(errors.KindTransport, "request canceled", errors.Join(errors.ErrCanceled, err))
	}
	if isUnreachable(err) {
		return errors.NewClassifierError(errors.KindTransport, "endpoint unreachable", errors.Join(errors.ErrUnreachable, err))
	}
	return errors.NewClassifierError(errors.KindTransport, "request failed", err)
}

func isUnreachable(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
