package hal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

const (
	acceptHAL  = "application/hal+json, application/json"
	acceptBlob = "*/*"

	// maxErrorBody bounds how much of a failed response is kept on a
	// TransportError.
	maxErrorBody = 2048

	// CorrelationHeader carries a per-request ID that is also logged.
	CorrelationHeader = "X-Correlation-ID"
)

// Config configures a Navigator.
type Config struct {
	// BaseURL is the scheme and host every relative href resolves against.
	BaseURL string

	// Client performs the requests. It is expected to authenticate them.
	Client *http.Client

	Logger hclog.Logger
}

// Navigator fetches HAL resources relative to a base URL.
type Navigator struct {
	base   *url.URL
	client *http.Client
	logger hclog.Logger
}

// NewNavigator creates a new Navigator.
func NewNavigator(cfg Config) (*Navigator, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL must use http or https scheme, got: %q", base.Scheme)
	}

	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	return &Navigator{
		base:   base,
		client: cfg.Client,
		logger: cfg.Logger.Named("hal"),
	}, nil
}

// BaseURL returns the base URL.
func (n *Navigator) BaseURL() string {
	return n.base.String()
}

// Resolve returns the absolute URL for path.
func (n *Navigator) Resolve(path string) (string, error) {
	u, err := n.resolve(path)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Root fetches the resource at path.
func (n *Navigator) Root(ctx context.Context, path string) (*Resource, error) {
	u, err := n.resolve(path)
	if err != nil {
		return nil, err
	}
	return n.fetchResource(ctx, u.String(), "")
}

// Blob is a raw binary response.
type Blob struct {
	Data        []byte
	ContentType string
}

// Fetch performs a raw GET of path and returns the body as opaque bytes.
// When the server declares a Content-Length, the body must match it.
func (n *Navigator) Fetch(ctx context.Context, path string) (*Blob, error) {
	u, err := n.resolve(path)
	if err != nil {
		return nil, err
	}

	resp, body, err := n.do(ctx, u.String(), acceptBlob)
	if err != nil {
		return nil, err
	}

	if resp.ContentLength >= 0 && int64(len(body)) != resp.ContentLength {
		return nil, &DecodeError{
			Target: "blob",
			URL:    u.String(),
			Err:    fmt.Errorf("received %d bytes, server declared %d", len(body), resp.ContentLength),
		}
	}

	return &Blob{
		Data:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (n *Navigator) resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", ref, err)
	}
	return n.base.ResolveReference(u), nil
}

func (n *Navigator) fetchResource(ctx context.Context, target, rel string) (*Resource, error) {
	_, body, err := n.do(ctx, target, acceptHAL)
	if err != nil {
		return nil, err
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &DecodeError{Target: "HAL resource", URL: target, Err: err}
	}

	switch v := raw.(type) {
	case map[string]any:
		return newResource(n, target, rel, v), nil
	case []any:
		members := make([]*Resource, 0, len(v))
		for i, elem := range v {
			obj, ok := elem.(map[string]any)
			if !ok {
				return nil, &DecodeError{
					Target: "HAL resource",
					URL:    target,
					Err:    fmt.Errorf("element %d is %T, not an object", i, elem),
				}
			}
			members = append(members, newResource(n, target, rel, obj))
		}
		return &Resource{nav: n, url: target, rel: rel, members: members}, nil
	default:
		return nil, &DecodeError{
			Target: "HAL resource",
			URL:    target,
			Err:    fmt.Errorf("body is %T, not an object or array", raw),
		}
	}
}

func (n *Navigator) do(ctx context.Context, target, accept string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	correlationID := uuid.NewString()
	req.Header.Set("Accept", accept)
	req.Header.Set(CorrelationHeader, correlationID)

	start := time.Now()
	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Debug("request failed", "url", target, "correlation_id", correlationID, "error", err)
		return nil, nil, &TransportError{Method: http.MethodGet, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &TransportError{
			Method:     http.MethodGet,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response: %w", err),
		}
	}

	n.logger.Debug("request completed",
		"url", target,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
		"correlation_id", correlationID,
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &TransportError{
			Method:     http.MethodGet,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(body)), maxErrorBody),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return resp, body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
