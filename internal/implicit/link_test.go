package implicit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAuthorizeURL(t *testing.T) {
	got := BuildAuthorizeURL("https://x/authorize", "abc", "enc", DefaultScopes)
	assert.Equal(t, "https://x/authorize?client_id=abc&response_type=token&redirect_uri=enc&scope=spark%3Aall%20spark%3Akms", got)
}

func TestNewLink(t *testing.T) {
	t.Run("default_scopes", func(t *testing.T) {
		link := NewLink(LinkParams{
			ClientID:         "abc",
			RedirectURI:      "enc",
			BaseAuthorizeURL: "https://x/authorize",
			DisplayText:      "Login with Webex",
		})
		assert.Equal(t, "https://x/authorize?client_id=abc&response_type=token&redirect_uri=enc&scope=spark%3Aall%20spark%3Akms", link.Href)
		assert.Equal(t, "Login with Webex", link.Text)
	})

	t.Run("custom_scopes", func(t *testing.T) {
		link := NewLink(LinkParams{
			ClientID:         "abc",
			RedirectURI:      "enc",
			BaseAuthorizeURL: "https://x/authorize",
			Scopes:           []string{"spark:people_read"},
		})
		assert.Equal(t, "https://x/authorize?client_id=abc&response_type=token&redirect_uri=enc&scope=spark%3Apeople_read", link.Href)
	})

	t.Run("empty_config_does_not_panic", func(t *testing.T) {
		link := NewLink(LinkParams{})
		assert.Equal(t, "?client_id=&response_type=token&redirect_uri=&scope=spark%3Aall%20spark%3Akms", link.Href)
	})
}
