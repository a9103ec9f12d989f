package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Credentials are the password-grant inputs for one authentication attempt.
// They are never persisted or cached by this package.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// Validate checks that every field needed by the token endpoint is present.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ClientID, validation.Required.Error("client id is required")),
		validation.Field(&c.ClientSecret, validation.Required.Error("client secret is required")),
		validation.Field(&c.Username, validation.Required.Error("username is required")),
		validation.Field(&c.Password, validation.Required.Error("password is required")),
	)
}

// String never includes the secret or the password.
func (c Credentials) String() string {
	return fmt.Sprintf("client=%s user=%s", c.ClientID, c.Username)
}

// CredentialsSource supplies credentials each time the token store needs to
// authenticate.
type CredentialsSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// StaticCredentials is a CredentialsSource that always returns the same value.
type StaticCredentials Credentials

// Credentials implements CredentialsSource.
func (s StaticCredentials) Credentials(context.Context) (Credentials, error) {
	return Credentials(s), nil
}

// CredentialsFunc adapts a function to CredentialsSource.
type CredentialsFunc func(ctx context.Context) (Credentials, error)

// Credentials implements CredentialsSource.
func (f CredentialsFunc) Credentials(ctx context.Context) (Credentials, error) {
	return f(ctx)
}

// Token is an issued access token. It is immutable once returned by the
// Authenticator.
type Token struct {
	AccessToken string
	TokenType   string
	// ExpiresIn is the lifetime in seconds reported by the token endpoint.
	ExpiresIn int64
}

// Header returns the value for the Authorization header.
func (t Token) Header() string {
	return t.TokenType + " " + t.AccessToken
}

// ErrAuthentication is matched by every *AuthError.
var ErrAuthentication = errors.New("authentication failed")

// AuthError describes a failed token exchange: bad credentials, an
// unreachable endpoint or a malformed token response.
type AuthError struct {
	// StatusCode is zero when no HTTP response was received.
	StatusCode int
	// Body is the raw response body, if any.
	Body string
	Err  error
}

func (e *AuthError) Error() string {
	var b strings.Builder
	b.WriteString("error occurred during authentication")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ", response from server: %d", e.StatusCode)
		if e.Body != "" {
			fmt.Fprintf(&b, ": %s", e.Body)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrAuthentication.
func (e *AuthError) Is(target error) bool {
	return target == ErrAuthentication
}
