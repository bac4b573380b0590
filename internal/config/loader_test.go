package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  address: ":9090"
  readTimeout: "5s"

log:
  level: debug
  format: console

auth:
  keystoreURL: "https://issuer.example.com/jwks"
  refreshInterval: "12h"
  retryInterval: "30m"
  checks:
    - typ
    - alg
    - exp
    - kid
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Duration())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "https://issuer.example.com/jwks", cfg.Auth.KeystoreURL)
	assert.Equal(t, 12*time.Hour, cfg.Auth.RefreshInterval.Duration())
	assert.Equal(t, 30*time.Minute, cfg.Auth.RetryInterval.Duration())
	assert.Equal(t, []string{"typ", "alg", "exp", "kid"}, cfg.Auth.Checks)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromReader(strings.NewReader(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
}

func TestLoadFromReader_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := LoadFromReader(strings.NewReader("server: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	t.Parallel()

	// A document that only sets the keystore URL inherits every default.
	cfg, err := LoadFromReader(strings.NewReader(`
auth:
  keystoreURL: "https://issuer.example.com/jwks"
`))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 24*time.Hour, cfg.Auth.RefreshInterval.Duration())
	assert.Equal(t, []string{"typ", "alg", "exp"}, cfg.Auth.Checks)
	assert.NoError(t, cfg.Validate())
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TOKENGATE_TEST_URL", "https://env.example.com/jwks")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "set variable",
			input: "url: ${TOKENGATE_TEST_URL}",
			want:  "url: https://env.example.com/jwks",
		},
		{
			name:  "set variable ignores default",
			input: "url: ${TOKENGATE_TEST_URL:-fallback}",
			want:  "url: https://env.example.com/jwks",
		},
		{
			name:  "unset variable with default",
			input: "url: ${TOKENGATE_TEST_UNSET:-fallback}",
			want:  "url: fallback",
		},
		{
			name:  "unset variable without default",
			input: "url: ${TOKENGATE_TEST_UNSET}",
			want:  "url: ",
		},
		{
			name:  "escaped dollar",
			input: "price: $$5",
			want:  "price: $5",
		},
		{
			name:  "no substitution",
			input: "plain: value",
			want:  "plain: value",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, substituteEnvVars(tt.input))
		})
	}
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("TOKENGATE_TEST_ADDRESS", ":7070")

	cfg, err := LoadFromReader(strings.NewReader(`
server:
  address: "${TOKENGATE_TEST_ADDRESS:-:8080}"
auth:
  keystoreURL: "${TOKENGATE_TEST_KEYSTORE:-https://issuer.example.com/jwks}"
`))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "https://issuer.example.com/jwks", cfg.Auth.KeystoreURL)
}
