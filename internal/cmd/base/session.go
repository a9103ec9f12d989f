package base

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/docstore/internal/config"
	"github.com/hashicorp-forge/docstore/internal/telemetry"
	"github.com/hashicorp-forge/docstore/internal/version"
	"github.com/hashicorp-forge/docstore/pkg/auth"
	"github.com/hashicorp-forge/docstore/pkg/documents"
)

// ClientFlags are shared by every command that talks to the API.
type ClientFlags struct {
	Config   string
	Env      string
	Host     string
	Format   string
	LogLevel string
}

// AddClientFlags registers the shared flags on f.
func AddClientFlags(f *FlagSet, cf *ClientFlags) {
	f.StringVar(&cf.Config, "config", "", "Path to an HCL config file")
	f.StringVar(&cf.Env, "env-file", "", "Path to a .env file (default: .env when present)")
	f.StringVar(&cf.Host, "host", "", "[DOCSTORE_HOST] API scheme and host, e.g. https://api.example.com")
	f.StringVar(&cf.Format, "format", "", "[DOCSTORE_FORMAT] Output format: table, json or yaml")
	f.StringVar(&cf.LogLevel, "log-level", "", "[DOCSTORE_LOG_LEVEL] Log level: trace, debug, info, warn or error")
}

// Session is an authenticated client session.
type Session struct {
	Config        *config.Config
	Credentials   auth.Credentials
	Authenticator *auth.Authenticator
	Store         *auth.TokenStore
	Client        *documents.Client
	Format        documents.Format

	shutdown telemetry.ShutdownFunc
}

// Close flushes telemetry.
func (s *Session) Close(ctx context.Context) error {
	if s.shutdown == nil {
		return nil
	}
	return s.shutdown(ctx)
}

// LoadConfig loads and validates configuration, applying flag overrides.
func (c *Command) LoadConfig(cf *ClientFlags) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		File:   cf.Config,
		DotEnv: cf.Env,
	})
	if err != nil {
		return nil, err
	}

	if cf.Host != "" {
		cfg.Host = cf.Host
	}
	if cf.Format != "" {
		cfg.Format = cf.Format
	}
	if cf.LogLevel != "" {
		cfg.LogLevel = cf.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c.Log.SetLevel(hclog.LevelFromString(cfg.LogLevel))
	return cfg, nil
}

// NewSession loads configuration and builds an authenticated client. A
// missing password is prompted for.
func (c *Command) NewSession(ctx context.Context, cf *ClientFlags) (*Session, error) {
	cfg, err := c.LoadConfig(cf)
	if err != nil {
		return nil, err
	}

	format, err := documents.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	creds := cfg.Credentials()
	if creds.Password == "" && creds.Username != "" {
		pw, err := c.readPassword(creds.Username)
		if err != nil {
			return nil, err
		}
		creds.Password = pw
	}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}

	shutdown, err := telemetry.Init(ctx, telemetry.Options{
		ServiceName:    "docstore",
		ServiceVersion: version.Version,
		Logger:         c.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing telemetry: %w", err)
	}

	transport := telemetry.Transport(http.DefaultTransport)

	authn, err := auth.NewAuthenticator(auth.AuthenticatorConfig{
		Host:      cfg.Host,
		TokenPath: cfg.Auth.TokenPath,
		Scope:     cfg.Auth.Scope,
		Client:    &http.Client{Transport: transport, Timeout: cfg.Timeout()},
		Logger:    c.Log,
	})
	if err != nil {
		return nil, err
	}

	store := auth.NewTokenStore(authn, auth.WithLogger(c.Log))

	client, err := documents.NewClient(documents.Config{
		BaseURL:  cfg.Host,
		RootPath: cfg.RootPath,
		PageSize: cfg.PageSize,
		HTTPClient: &http.Client{
			Transport: &auth.Transport{
				Store:       store,
				Credentials: auth.StaticCredentials(creds),
				Base:        transport,
			},
			Timeout: cfg.Timeout(),
		},
		Logger: c.Log,
	})
	if err != nil {
		return nil, err
	}

	c.Log.Debug("session created", "host", cfg.Host, "user", creds.Username)

	return &Session{
		Config:        cfg,
		Credentials:   creds,
		Authenticator: authn,
		Store:         store,
		Client:        client,
		Format:        format,
		shutdown:      shutdown,
	}, nil
}
