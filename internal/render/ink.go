package render

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// Sentinel errors for the hosted rendering API strategy.
var (
	ErrAPIStatus = errors.New("rendering API returned non-success status")
)

// Default hosted renderer parameters.
const (
	DefaultAPIEndpoint = "https://mermaid.ink"
	DefaultAPITimeout  = 10 * time.Second
)

// APIStrategy renders diagrams through a hosted rendering service:
// GET <endpoint>/img/<base64url(source)> returning image bytes on 200.
// Any non-success status or network error falls through to the next tier.
type APIStrategy struct {
	client   *resty.Client
	endpoint string
}

// NewAPIStrategy creates an API strategy against endpoint with a bounded
// per-request timeout. Empty endpoint and non-positive timeout use defaults.
func NewAPIStrategy(endpoint string, timeout time.Duration) *APIStrategy {
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultAPITimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "go-llm2pdf")
	return &APIStrategy{client: client, endpoint: endpoint}
}

// Name identifies the strategy in logs and job records.
func (a *APIStrategy) Name() string { return "api" }

// EncodeSource encodes diagram source for use as a URL path segment.
func EncodeSource(source string) string {
	return base64.URLEncoding.EncodeToString([]byte(source))
}

// Render fetches the rendered image from the hosted service and persists the
// response body at outPath.
func (a *APIStrategy) Render(ctx context.Context, source, outPath string) error {
	url := a.endpoint + "/img/" + EncodeSource(source)

	resp, err := a.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("rendering API request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrAPIStatus, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", ErrAPIStatus)
	}

	if err := os.WriteFile(outPath, body, 0o600); err != nil {
		return fmt.Errorf("writing diagram image: %w", err)
	}
	return nil
}
