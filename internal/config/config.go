package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/joho/godotenv"

	"github.com/hashicorp-forge/docstore/pkg/auth"
	"github.com/hashicorp-forge/docstore/pkg/documents"
	"github.com/hashicorp-forge/docstore/pkg/sink"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "DOCSTORE_"

// DefaultDotEnv is read when present and no other file is named.
const DefaultDotEnv = ".env"

// Config contains the docstore client configuration.
type Config struct {
	// Host is the scheme and host of the API, e.g. "https://api.example.com".
	Host string `hcl:"host,optional"`

	// RootPath is the HAL root of the document store.
	RootPath string `hcl:"root_path,optional"`

	PageSize       int    `hcl:"page_size,optional"`
	TimeoutSeconds int    `hcl:"timeout_seconds,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	Format         string `hcl:"format,optional"`

	Auth   *Auth          `hcl:"auth,block"`
	Output *Output        `hcl:"output,block"`
	S3     *sink.S3Config `hcl:"s3,block"`
}

// Auth configures the OAuth2 password grant.
type Auth struct {
	ClientID     string `hcl:"client_id,optional"`
	ClientSecret string `hcl:"client_secret,optional"`
	Username     string `hcl:"username,optional"`
	Password     string `hcl:"password,optional"`
	TokenPath    string `hcl:"token_path,optional"`
	Scope        string `hcl:"scope,optional"`
}

// Output configures where downloads are written.
type Output struct {
	Dir       string `hcl:"dir,optional"`
	Overwrite bool   `hcl:"overwrite,optional"`
}

// LoadOptions control where configuration is read from.
type LoadOptions struct {
	// File is an optional HCL config file.
	File string

	// DotEnv is an optional .env file. DefaultDotEnv is used if it exists
	// and this is empty.
	DotEnv string

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds the configuration from, in increasing precedence, the HCL
// file, the .env file and the process environment. Defaults fill whatever
// is still unset.
func Load(opts LoadOptions) (*Config, error) {
	cfg := &Config{}

	if opts.File != "" {
		if err := hclsimple.DecodeFile(opts.File, nil, cfg); err != nil {
			return nil, fmt.Errorf("error decoding config file %q: %w", opts.File, err)
		}
	}

	dotenv, err := readDotEnv(opts.DotEnv)
	if err != nil {
		return nil, err
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	cfg.SetDefaults()

	return cfg, nil
}

func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		if _, err := os.Stat(DefaultDotEnv); err != nil {
			return map[string]string{}, nil
		}
		path = DefaultDotEnv
	}

	vals, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("error reading env file %q: %w", path, err)
	}
	return vals, nil
}

func (c *Config) applyEnv(env func(string) (string, bool)) error {
	if c.Auth == nil {
		c.Auth = &Auth{}
	}
	if c.Output == nil {
		c.Output = &Output{}
	}

	str := func(name string, dst *string) {
		if v, ok := env(EnvPrefix + name); ok {
			*dst = v
		}
	}

	str("HOST", &c.Host)
	str("ROOT_PATH", &c.RootPath)
	str("LOG_LEVEL", &c.LogLevel)
	str("FORMAT", &c.Format)
	str("CLIENT_ID", &c.Auth.ClientID)
	str("CLIENT_SECRET", &c.Auth.ClientSecret)
	str("USERNAME", &c.Auth.Username)
	str("PASSWORD", &c.Auth.Password)
	str("TOKEN_PATH", &c.Auth.TokenPath)
	str("SCOPE", &c.Auth.Scope)
	str("OUTPUT_DIR", &c.Output.Dir)

	var errs []error
	if v, ok := env(EnvPrefix + "PAGE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPAGE_SIZE: %w", EnvPrefix, err))
		}
		c.PageSize = n
	}
	if v, ok := env(EnvPrefix + "TIMEOUT_SECONDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIMEOUT_SECONDS: %w", EnvPrefix, err))
		}
		c.TimeoutSeconds = n
	}
	if v, ok := env(EnvPrefix + "OUTPUT_OVERWRITE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sOUTPUT_OVERWRITE: %w", EnvPrefix, err))
		}
		c.Output.Overwrite = b
	}

	if bucket, ok := env(EnvPrefix + "S3_BUCKET"); ok {
		if c.S3 == nil {
			c.S3 = &sink.S3Config{}
		}
		c.S3.Bucket = bucket
	}
	if c.S3 != nil {
		str("S3_ENDPOINT", &c.S3.Endpoint)
		str("S3_REGION", &c.S3.Region)
		str("S3_PREFIX", &c.S3.Prefix)
		str("S3_ACCESS_KEY", &c.S3.AccessKey)
		str("S3_SECRET_KEY", &c.S3.SecretKey)
	}

	return errors.Join(errs...)
}

// SetDefaults sets default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Auth == nil {
		c.Auth = &Auth{}
	}
	if c.Output == nil {
		c.Output = &Output{}
	}
	if c.RootPath == "" {
		c.RootPath = documents.DefaultRootPath
	}
	if c.PageSize == 0 {
		c.PageSize = documents.DefaultPageSize
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 60
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.Format == "" {
		c.Format = string(documents.FormatTable)
	}
	if c.Auth.TokenPath == "" {
		c.Auth.TokenPath = auth.DefaultTokenPath
	}
	if c.Auth.Scope == "" {
		c.Auth.Scope = auth.DefaultScope
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.S3 != nil {
		c.S3.SetDefaults()
	}
}

// Validate validates the configuration. Credentials are not required here
// because the CLI prompts for a missing password.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host,
			validation.Required.Error("host is required"),
			validation.By(validateHost)),
		validation.Field(&c.PageSize, validation.Min(1)),
		validation.Field(&c.TimeoutSeconds, validation.Min(1)),
		validation.Field(&c.LogLevel, validation.By(validateLogLevel)),
		validation.Field(&c.Format,
			validation.In(string(documents.FormatTable), string(documents.FormatJSON), string(documents.FormatYAML)).
				Error("must be one of: table, json, yaml")),
		validation.Field(&c.S3),
	)
}

// Timeout returns the HTTP client timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Credentials returns the configured credentials.
func (c *Config) Credentials() auth.Credentials {
	a := c.Auth
	if a == nil {
		a = &Auth{}
	}
	return auth.Credentials{
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
		Username:     a.Username,
		Password:     a.Password,
	}
}

func validateHost(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must use http or https scheme")
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}

func validateLogLevel(value interface{}) error {
	s, _ := value.(string)
	if hclog.LevelFromString(strings.TrimSpace(s)) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", s)
	}
	return nil
}
