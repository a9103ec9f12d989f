package auth

import (
	"fmt"
	"net/http"
)

// Transport authenticates every outgoing request. The Authorization header
// is set on a clone of each request; nothing is cached on the transport, so
// a change of credentials takes effect on the next token refresh.
type Transport struct {
	Store       *TokenStore
	Credentials CredentialsSource

	// Base is the underlying transport. http.DefaultTransport when nil.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	creds, err := t.Credentials.Credentials(ctx)
	if err != nil {
		closeBody(req)
		return nil, &AuthError{Err: fmt.Errorf("failed to obtain credentials: %w", err)}
	}

	tok, err := t.Store.EnsureValidToken(ctx, creds)
	if err != nil {
		closeBody(req)
		return nil, err
	}

	req2 := req.Clone(ctx)
	req2.Header.Set("Authorization", tok.Header())

	return t.base().RoundTrip(req2)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// closeBody honors the RoundTripper contract of closing the request body
// even on error.
func closeBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}
