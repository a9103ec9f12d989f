package auth

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// TokenSource issues tokens. *Authenticator satisfies it.
type TokenSource interface {
	Authenticate(ctx context.Context, creds Credentials) (Token, error)
}

// TokenStore holds the current token of one client session and the instant
// it expires. The check/refresh/store sequence runs under a mutex so that
// concurrent callers authenticate at most once per expiry.
type TokenStore struct {
	source TokenSource
	now    func() time.Time
	logger hclog.Logger

	mu     sync.Mutex
	token  *Token
	expiry time.Time
}

// StoreOption configures a TokenStore.
type StoreOption func(*TokenStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *TokenStore) {
		s.now = now
	}
}

// WithLogger sets the store logger.
func WithLogger(logger hclog.Logger) StoreOption {
	return func(s *TokenStore) {
		s.logger = logger.Named("token-store")
	}
}

// NewTokenStore creates an empty store backed by source.
func NewTokenStore(source TokenSource, opts ...StoreOption) *TokenStore {
	s := &TokenStore{
		source: source,
		now:    time.Now,
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureValidToken returns the held token while now < expiry. Otherwise it
// authenticates with creds and replaces both token and expiry. A failed
// authentication leaves the store empty so the next call starts over.
func (s *TokenStore) EnsureValidToken(ctx context.Context, creds Credentials) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && s.now().Before(s.expiry) {
		return *s.token, nil
	}

	if s.token != nil {
		s.logger.Debug("token expired, re-authenticating", "expiry", s.expiry)
	}
	s.token = nil
	s.expiry = time.Time{}

	tok, err := s.source.Authenticate(ctx, creds)
	if err != nil {
		return Token{}, err
	}

	issued := s.now()
	s.token = &tok
	s.expiry = issued.Add(time.Duration(tok.ExpiresIn) * time.Second)

	s.logger.Debug("token stored", "token_type", tok.TokenType, "expiry", s.expiry)
	return tok, nil
}

// Expiry returns the expiry of the held token, or the zero time when no
// token is held.
func (s *TokenStore) Expiry() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiry
}

// Invalidate drops the held token.
func (s *TokenStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	s.expiry = time.Time{}
}
