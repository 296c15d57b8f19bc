package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dgellow/webex-implicit/internal"
	"github.com/dgellow/webex-implicit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startApp(t *testing.T, webexURL string) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := config.Config{
		Server: config.ServerConfig{
			Addr:              ln.Addr().String(),
			ReadHeaderTimeout: time.Second,
			ShutdownTimeout:   time.Second,
		},
		Webex: config.WebexConfig{
			ClientID:     "integration-client",
			AuthorizeURL: webexURL + "/v1/authorize",
			Scopes:       []string{"spark:all", "spark:kms"},
			DisplayText:  "Login with Webex",
			APIBaseURL:   webexURL + "/v1",
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- internal.NewWebexImplicit(cfg).Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("application did not shut down")
		}
	})

	return "http://" + ln.Addr().String()
}

func getJSON(t *testing.T, client *http.Client, req *http.Request, into any) *http.Response {
	t.Helper()
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if into != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(body, into), string(body))
	}
	return resp
}

func TestImplicitFlow_EndToEnd(t *testing.T) {
	webex := NewFakeWebexServer("integration-access-token")
	defer webex.Close()

	baseURL := startApp(t, webex.URL)
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	// 1. the page hands out the login link
	req, err := http.NewRequest("GET", baseURL+"/api/link", nil)
	require.NoError(t, err)
	var linkResp struct {
		Link struct {
			Href string `json:"href"`
		} `json:"link"`
	}
	resp := getJSON(t, client, req, &linkResp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, linkResp.Link.Href)

	// 2. the browser follows it; the provider redirects back with a fragment
	req, err = http.NewRequest("GET", linkResp.Link.Href, nil)
	require.NoError(t, err)
	resp = getJSON(t, client, req, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.Contains(t, location, "#access_token=integration-access-token")

	authorize := webex.AuthorizeRequests()
	require.Len(t, authorize, 1)
	assert.Equal(t, "integration-client", authorize[0].Get("client_id"))
	assert.Equal(t, baseURL, authorize[0].Get("redirect_uri"))
	assert.Equal(t, "spark:all spark:kms", authorize[0].Get("scope"))

	// 3. the page posts its address and gets the token plus a clean URL
	body, err := json.Marshal(map[string]string{"url": location})
	require.NoError(t, err)
	req, err = http.NewRequest("POST", baseURL+"/api/fragment", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	var fragment struct {
		Authenticated bool   `json:"authenticated"`
		AccessToken   string `json:"accessToken"`
		TokenType     string `json:"tokenType"`
		URL           string `json:"url"`
	}
	resp = getJSON(t, client, req, &fragment)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, fragment.Authenticated)
	assert.Equal(t, "integration-access-token", fragment.AccessToken)
	assert.Equal(t, "Bearer", fragment.TokenType)
	assert.Equal(t, baseURL, fragment.URL)

	// 4. the token works against the provider API
	req, err = http.NewRequest("GET", baseURL+"/api/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+fragment.AccessToken)
	var person struct {
		DisplayName string   `json:"displayName"`
		Emails      []string `json:"emails"`
	}
	resp = getJSON(t, client, req, &person)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Demo User", person.DisplayName)
	assert.Equal(t, []string{"demo@example.com"}, person.Emails)
}

func TestImplicitFlow_MisconfiguredClientIsRejectedByProvider(t *testing.T) {
	webex := NewFakeWebexServer("unused")
	defer webex.Close()

	link := webex.URL + "/v1/authorize?client_id=&response_type=token&redirect_uri=x&scope=spark%3Aall"
	resp, err := http.Get(link)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
