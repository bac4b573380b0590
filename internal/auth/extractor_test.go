package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderExtractor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{
			name:   "bearer token",
			header: "Bearer abc.def.ghi",
			want:   "abc.def.ghi",
		},
		{
			name:   "lowercase prefix",
			header: "bearer abc.def.ghi",
			want:   "abc.def.ghi",
		},
		{
			name:   "extra whitespace",
			header: "Bearer   abc.def.ghi",
			want:   "abc.def.ghi",
		},
		{
			name:    "missing header",
			header:  "",
			wantErr: ErrMissingHeader,
		},
		{
			name:    "wrong prefix",
			header:  "Basic dXNlcjpwYXNz",
			wantErr: ErrInvalidPrefix,
		},
		{
			name:    "prefix only shorter than Bearer",
			header:  "Bear",
			wantErr: ErrInvalidPrefix,
		},
	}

	extractor := NewHeaderExtractor("", "")

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			token, err := extractor.Extract(r)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestQueryExtractor(t *testing.T) {
	t.Parallel()

	extractor := NewQueryExtractor("access_token")

	r := httptest.NewRequest("GET", "/?access_token=abc.def.ghi", nil)
	token, err := extractor.Extract(r)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	r = httptest.NewRequest("GET", "/", nil)
	_, err = extractor.Extract(r)
	assert.ErrorIs(t, err, ErrNoTokenFound)
}

func TestDefaultExtractor(t *testing.T) {
	t.Parallel()

	extractor := DefaultExtractor()

	t.Run("header wins over query", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/?access_token=from-query", nil)
		r.Header.Set("Authorization", "Bearer from-header")

		token, err := extractor.Extract(r)
		require.NoError(t, err)
		assert.Equal(t, "from-header", token)
	})

	t.Run("falls back to query", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/?access_token=from-query", nil)
		token, err := extractor.Extract(r)
		require.NoError(t, err)
		assert.Equal(t, "from-query", token)
	})

	t.Run("no token anywhere", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		_, err := extractor.Extract(r)
		assert.Error(t, err)
	})
}
