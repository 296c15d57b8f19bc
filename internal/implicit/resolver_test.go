package implicit

import (
	"crypto/tls"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestResolveRedirectURI(t *testing.T) {
	tests := []struct {
		name     string
		location string
		expected string
	}{
		{
			name:     "trailing_slash_stripped",
			location: "https://host/app/",
			expected: "https%3A%2F%2Fhost%2Fapp",
		},
		{
			name:     "no_trailing_slash",
			location: "https://host/app",
			expected: "https%3A%2F%2Fhost%2Fapp",
		},
		{
			name:     "root_path",
			location: "http://localhost:3000/",
			expected: "http%3A%2F%2Flocalhost%3A3000",
		},
		{
			name:     "query_and_fragment_ignored",
			location: "https://host/app/?x=1#access_token=abc",
			expected: "https%3A%2F%2Fhost%2Fapp",
		},
		{
			name:     "only_one_slash_stripped",
			location: "https://host/app//",
			expected: "https%3A%2F%2Fhost%2Fapp%2F",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveRedirectURI(mustParse(t, tt.location)))
		})
	}
}

func TestRequestLocation(t *testing.T) {
	t.Run("plain_http", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://demo.local/app/?q=1", nil)
		loc := RequestLocation(req, "", false)
		assert.Equal(t, "http://demo.local/app/", loc.String())
	})

	t.Run("tls", func(t *testing.T) {
		req := httptest.NewRequest("GET", "https://demo.local/app", nil)
		req.TLS = &tls.ConnectionState{}
		loc := RequestLocation(req, "", false)
		assert.Equal(t, "https", loc.Scheme)
	})

	t.Run("forwarded_headers_ignored_when_untrusted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://internal:8080/", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		req.Header.Set("X-Forwarded-Host", "public.example.com")
		loc := RequestLocation(req, "", false)
		assert.Equal(t, "http://internal:8080/", loc.String())
	})

	t.Run("forwarded_headers_trusted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://internal:8080/app/", nil)
		req.Header.Set("X-Forwarded-Proto", "https, http")
		req.Header.Set("X-Forwarded-Host", "public.example.com")
		loc := RequestLocation(req, "", true)
		assert.Equal(t, "https://public.example.com/app/", loc.String())
	})

	t.Run("public_url_wins", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://internal:8080/", nil)
		loc := RequestLocation(req, "https://demo.example.com/login/", true)
		assert.Equal(t, "https%3A%2F%2Fdemo.example.com%2Flogin", ResolveRedirectURI(loc))
	})
}

func TestEncodeComponent(t *testing.T) {
	assert.Equal(t, "spark%3Aall%20spark%3Akms", EncodeComponent("spark:all spark:kms"))
	assert.Equal(t, "a%2Bb", EncodeComponent("a+b"))
}
