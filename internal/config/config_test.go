package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/docstore/pkg/sink"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

const testHCL = `
host      = "https://file.example.com"
page_size = 50
log_level = "info"

auth {
  client_id     = "file-client"
  client_secret = "file-secret"
  username      = "file-user"
}

output {
  dir       = "/tmp/out"
  overwrite = true
}

s3 {
  bucket = "docs"
  prefix = "archive/"
}
`

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	dotenv := writeFile(t, dir, "empty.env", "")

	cfg, err := Load(LoadOptions{DotEnv: dotenv, LookupEnv: envFrom(nil)})
	require.NoError(t, err)

	assert.Equal(t, "/api/document-store", cfg.RootPath)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, 60*time.Second, cfg.Timeout())
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "table", cfg.Format)
	assert.Equal(t, "/auth/connect/token", cfg.Auth.TokenPath)
	assert.Equal(t, "get-documents", cfg.Auth.Scope)
	assert.Equal(t, ".", cfg.Output.Dir)
	assert.Nil(t, cfg.S3)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host is required")
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "docstore.hcl", testHCL)
	dotenv := writeFile(t, dir, "empty.env", "")

	cfg, err := Load(LoadOptions{File: file, DotEnv: dotenv, LookupEnv: envFrom(nil)})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://file.example.com", cfg.Host)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.True(t, cfg.Output.Overwrite)

	creds := cfg.Credentials()
	assert.Equal(t, "file-client", creds.ClientID)
	assert.Equal(t, "file-secret", creds.ClientSecret)
	assert.Equal(t, "file-user", creds.Username)
	assert.Empty(t, creds.Password)

	require.NotNil(t, cfg.S3)
	assert.Equal(t, "docs", cfg.S3.Bucket)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "docstore.hcl", testHCL)
	dotenv := writeFile(t, dir, "test.env", `
DOCSTORE_HOST=https://dotenv.example.com
DOCSTORE_USERNAME=dotenv-user
DOCSTORE_PASSWORD=dotenv-pass
`)

	cfg, err := Load(LoadOptions{
		File:   file,
		DotEnv: dotenv,
		LookupEnv: envFrom(map[string]string{
			"DOCSTORE_USERNAME":  "env-user",
			"DOCSTORE_S3_REGION": "eu-west-2",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://dotenv.example.com", cfg.Host)
	assert.Equal(t, "env-user", cfg.Auth.Username)
	assert.Equal(t, "dotenv-pass", cfg.Auth.Password)
	assert.Equal(t, "file-client", cfg.Auth.ClientID)
	assert.Equal(t, "eu-west-2", cfg.S3.Region)
}

func TestLoad_EnvOnlyS3(t *testing.T) {
	dir := t.TempDir()
	dotenv := writeFile(t, dir, "empty.env", "")

	cfg, err := Load(LoadOptions{
		DotEnv: dotenv,
		LookupEnv: envFrom(map[string]string{
			"DOCSTORE_HOST":             "http://localhost:8080",
			"DOCSTORE_S3_BUCKET":        "bucket",
			"DOCSTORE_S3_ENDPOINT":      "http://localhost:9000",
			"DOCSTORE_PAGE_SIZE":        "25",
			"DOCSTORE_OUTPUT_OVERWRITE": "true",
		}),
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.NotNil(t, cfg.S3)
	assert.Equal(t, "bucket", cfg.S3.Bucket)
	assert.Equal(t, "http://localhost:9000", cfg.S3.Endpoint)
	assert.Equal(t, 25, cfg.PageSize)
	assert.True(t, cfg.Output.Overwrite)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	dotenv := writeFile(t, dir, "empty.env", "")

	_, err := Load(LoadOptions{File: filepath.Join(dir, "missing.hcl"), DotEnv: dotenv, LookupEnv: envFrom(nil)})
	assert.Error(t, err)

	_, err = Load(LoadOptions{DotEnv: filepath.Join(dir, "missing.env"), LookupEnv: envFrom(nil)})
	assert.Error(t, err)

	_, err = Load(LoadOptions{
		DotEnv:    dotenv,
		LookupEnv: envFrom(map[string]string{"DOCSTORE_PAGE_SIZE": "lots"}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOCSTORE_PAGE_SIZE")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{Host: "https://api.example.com"}
		cfg.SetDefaults()
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"bad scheme":   func(c *Config) { c.Host = "ftp://api.example.com" },
		"no host":      func(c *Config) { c.Host = "https://" },
		"page size":    func(c *Config) { c.PageSize = -1 },
		"log level":    func(c *Config) { c.LogLevel = "loud" },
		"format":       func(c *Config) { c.Format = "xml" },
		"s3 no bucket": func(c *Config) { c.S3 = &sink.S3Config{} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
