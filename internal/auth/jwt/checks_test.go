package jwt

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChecks(t *testing.T) {
	t.Parallel()

	t.Run("all known checks", func(t *testing.T) {
		t.Parallel()

		checks, err := ParseChecks([]string{"typ", "alg", "iss", "iat", "nbf", "exp", "kid"}, "https://issuer.example.com")
		require.NoError(t, err)
		require.Len(t, checks, 7)

		check, ok := hasCheck(checks, CheckIss)
		require.True(t, ok)
		assert.Equal(t, "https://issuer.example.com", check.Value)
	})

	t.Run("iss requires issuer", func(t *testing.T) {
		t.Parallel()

		_, err := ParseChecks([]string{"iss"}, "")
		assert.Error(t, err)
	})

	t.Run("unknown check", func(t *testing.T) {
		t.Parallel()

		_, err := ParseChecks([]string{"aud"}, "")
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		checks, err := ParseChecks(nil, "")
		require.NoError(t, err)
		assert.Empty(t, checks)
	})
}

func TestValidateHeader(t *testing.T) {
	t.Parallel()

	allChecks, err := ParseChecks([]string{"typ", "alg"}, "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  Claims
		checks  []Check
		wantErr error
	}{
		{
			name:   "valid header",
			header: Claims{"typ": "JWT", "alg": "HS256"},
			checks: allChecks,
		},
		{
			name:   "no checks requested",
			header: Claims{},
			checks: nil,
		},
		{
			name:    "missing typ",
			header:  Claims{"alg": "HS256"},
			checks:  allChecks,
			wantErr: ErrMissingTyp,
		},
		{
			name:    "wrong typ",
			header:  Claims{"typ": "JWE", "alg": "HS256"},
			checks:  allChecks,
			wantErr: ErrInvalidTyp,
		},
		{
			name:    "non-string typ",
			header:  Claims{"typ": json.Number("1"), "alg": "HS256"},
			checks:  allChecks,
			wantErr: ErrInvalidTyp,
		},
		{
			name:    "missing alg",
			header:  Claims{"typ": "JWT"},
			checks:  allChecks,
			wantErr: ErrMissingAlg,
		},
		{
			name:    "unsupported alg",
			header:  Claims{"typ": "JWT", "alg": "none"},
			checks:  allChecks,
			wantErr: ErrInvalidAlg,
		},
		{
			name:    "typ checked before alg",
			header:  Claims{"alg": "none"},
			checks:  allChecks,
			wantErr: ErrMissingTyp,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateHeader(tt.header, tt.checks)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidatePayload(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	n := func(v int64) json.Number {
		return json.Number(strconv.FormatInt(v, 10))
	}

	allChecks, err := ParseChecks([]string{"iss", "iat", "nbf", "exp"}, "https://issuer.example.com")
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload Claims
		checks  []Check
		wantErr error
	}{
		{
			name: "valid payload",
			payload: Claims{
				"iss": "https://issuer.example.com",
				"iat": n(now.Unix() - 60),
				"nbf": n(now.Unix() - 60),
				"exp": n(now.Unix() + 3600),
			},
			checks: allChecks,
		},
		{
			name:    "no checks requested",
			payload: Claims{},
			checks:  nil,
		},
		{
			name: "missing iss",
			payload: Claims{
				"iat": n(now.Unix() - 60),
			},
			checks:  allChecks,
			wantErr: ErrMissingIss,
		},
		{
			name: "wrong iss",
			payload: Claims{
				"iss": "https://other.example.com",
			},
			checks:  allChecks,
			wantErr: ErrInvalidIss,
		},
		{
			name: "missing iat",
			payload: Claims{
				"iss": "https://issuer.example.com",
			},
			checks:  allChecks,
			wantErr: ErrMissingIat,
		},
		{
			name: "fractional iat",
			payload: Claims{
				"iss": "https://issuer.example.com",
				"iat": json.Number("1700000000.5"),
			},
			checks:  allChecks,
			wantErr: ErrInvalidIat,
		},
		{
			name: "string iat",
			payload: Claims{
				"iss": "https://issuer.example.com",
				"iat": "1700000000",
			},
			checks:  allChecks,
			wantErr: ErrInvalidIat,
		},
		{
			name: "missing nbf",
			payload: Claims{
				"iss": "https://issuer.example.com",
				"iat": n(now.Unix() - 60),
			},
			checks:  allChecks,
			wantErr: ErrMissingNbf,
		},
		{
			name: "nbf equal to now fails",
			payload: Claims{
				"iss": "https://issuer.example.com",
				"iat": n(now.Unix() - 60),
				"nbf": n(now.Unix()),
			},
			checks:  allChecks,
			wantErr: ErrNbfNotInPast,
		},
		{
			name: "nbf in the future",
			payload: Claims{
				"iss": "https://issuer.example.com",
				"iat": n(now.Unix() - 60),
				"nbf": n(now.Unix() + 1),
			},
			checks:  allChecks,
			wantErr: ErrNbfNotInPast,
		},
		{
			name: "non-numeric nbf",
			payload: Claims{
				"iss": "https://issuer.example.com",
				"iat": n(now.Unix() - 60),
				"nbf": "soon",
			},
			checks:  allChecks,
			wantErr: ErrNbfNotInPast,
		},
		{
			name: "missing exp",
			payload: Claims{
				"iss": "https://issuer.example.com",
				"iat": n(now.Unix() - 60),
				"nbf": n(now.Unix() - 60),
			},
			checks:  allChecks,
			wantErr: ErrMissingExp,
		},
		{
			name: "exp equal to now fails",
			payload: Claims{
				"iss": "https://issuer.example.com",
				"iat": n(now.Unix() - 60),
				"nbf": n(now.Unix() - 60),
				"exp": n(now.Unix()),
			},
			checks:  allChecks,
			wantErr: ErrExpNotInFuture,
		},
		{
			name: "expired",
			payload: Claims{
				"iss": "https://issuer.example.com",
				"iat": n(now.Unix() - 60),
				"nbf": n(now.Unix() - 60),
				"exp": n(now.Unix() - 1),
			},
			checks:  allChecks,
			wantErr: ErrExpNotInFuture,
		},
		{
			name: "non-numeric exp",
			payload: Claims{
				"iss": "https://issuer.example.com",
				"iat": n(now.Unix() - 60),
				"nbf": n(now.Unix() - 60),
				"exp": "later",
			},
			checks:  allChecks,
			wantErr: ErrExpNotInFuture,
		},
		{
			name: "iss checked before temporal claims",
			payload: Claims{
				"exp": n(now.Unix() - 1),
			},
			checks:  allChecks,
			wantErr: ErrMissingIss,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidatePayload(tt.payload, tt.checks, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
