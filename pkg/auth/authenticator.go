package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
)

const (
	// DefaultTokenPath is the token endpoint path relative to the host.
	DefaultTokenPath = "/auth/connect/token"

	// DefaultScope is the only scope the document store grants.
	DefaultScope = "get-documents"
)

// AuthenticatorConfig configures an Authenticator.
type AuthenticatorConfig struct {
	Host      string        // e.g. "https://api.example.com"
	TokenPath string        // default: DefaultTokenPath
	Scope     string        // default: DefaultScope
	Client    *http.Client  // default: http.DefaultClient
	Logger    hclog.Logger  // optional
	Timeout   time.Duration // applied to the exchange when the context has no deadline
}

// Authenticator performs the OAuth2 resource owner password credentials
// exchange against the token endpoint.
type Authenticator struct {
	tokenURL string
	scope    string
	client   *http.Client
	timeout  time.Duration
	logger   hclog.Logger
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(cfg AuthenticatorConfig) (*Authenticator, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.TokenPath == "" {
		cfg.TokenPath = DefaultTokenPath
	}
	if cfg.Scope == "" {
		cfg.Scope = DefaultScope
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	return &Authenticator{
		tokenURL: strings.TrimRight(cfg.Host, "/") + cfg.TokenPath,
		scope:    cfg.Scope,
		client:   cfg.Client,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger.Named("authenticator"),
	}, nil
}

// TokenURL returns the token endpoint this authenticator posts to.
func (a *Authenticator) TokenURL() string {
	return a.tokenURL
}

// Authenticate exchanges credentials for a token. Only HTTP 200 and 202 are
// accepted; anything else, an unreachable endpoint, or a body without an
// access token yields an *AuthError. There are no retries.
func (a *Authenticator) Authenticate(ctx context.Context, creds Credentials) (Token, error) {
	if err := creds.Validate(); err != nil {
		return Token{}, &AuthError{Err: err}
	}

	if _, ok := ctx.Deadline(); !ok && a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scopes:       []string{a.scope},
		Endpoint: oauth2.Endpoint{
			TokenURL:  a.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	rec := &responseRecorder{base: a.client.Transport}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Transport: rec,
		Timeout:   a.client.Timeout,
		Jar:       a.client.Jar,
	})

	a.logger.Debug("requesting token", "token_url", a.tokenURL, "client_id", creds.ClientID, "username", creds.Username)

	tok, err := conf.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			return Token{}, &AuthError{
				StatusCode: rErr.Response.StatusCode,
				Body:       string(rErr.Body),
				Err:        errors.New("could not authenticate"),
			}
		}
		status, body := rec.result()
		return Token{}, &AuthError{StatusCode: status, Body: body, Err: err}
	}

	// oauth2 accepts any 2xx; the token endpoint contract is 200 or 202 only.
	status, body := rec.result()
	if status != http.StatusOK && status != http.StatusAccepted {
		return Token{}, &AuthError{
			StatusCode: status,
			Body:       body,
			Err:        fmt.Errorf("unexpected status %d", status),
		}
	}

	if tok.AccessToken == "" {
		return Token{}, &AuthError{StatusCode: status, Err: errors.New("no token returned from OAuth2 endpoint")}
	}

	token := Token{
		AccessToken: tok.AccessToken,
		TokenType:   tok.Type(),
		ExpiresIn:   tok.ExpiresIn,
	}

	a.logger.Debug("token issued", "token_type", token.TokenType, "expires_in", token.ExpiresIn)
	return token, nil
}

// responseRecorder captures the status and body of the token response so the
// exact status contract can be enforced after oauth2 has parsed it.
type responseRecorder struct {
	base http.RoundTripper

	mu     sync.Mutex
	status int
	body   []byte
}

func (r *responseRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	base := r.base
	if base == nil {
		base = http.DefaultTransport
	}

	req = req.Clone(req.Context())
	req.Header.Set("Accept", "application/json")

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	r.mu.Lock()
	r.status = resp.StatusCode
	r.body = body
	r.mu.Unlock()

	return resp, nil
}

func (r *responseRecorder) result() (int, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status, string(r.body)
}
