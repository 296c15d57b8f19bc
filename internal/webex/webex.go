package webex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgellow/webex-implicit/internal/implicit"
	"github.com/dgellow/webex-implicit/internal/ioutil"
	"github.com/dgellow/webex-implicit/internal/urlutil"
	"golang.org/x/oauth2"
)

// Endpoint is the Webex OAuth endpoint. Only AuthURL is used by the
// implicit grant; TokenURL is listed for completeness.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://webexapis.com/v1/authorize",
	TokenURL: "https://webexapis.com/v1/access_token",
}

// ErrUnauthorized is returned when Webex rejects the access token.
var ErrUnauthorized = errors.New("webex rejected the access token")

// Person is the subset of the Webex people API the demo shows.
type Person struct {
	ID          string   `json:"id"`
	Emails      []string `json:"emails"`
	DisplayName string   `json:"displayName"`
	NickName    string   `json:"nickName,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	OrgID       string   `json:"orgId,omitempty"`
}

// Provider builds login links for, and talks to, Webex.
type Provider struct {
	config      oauth2.Config
	displayText string
	apiBaseURL  string
	httpClient  *http.Client
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient sets the base client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// NewProvider creates a Provider. authorizeURL and apiBaseURL fall back to
// the public Webex endpoints when empty; scopes fall back to
// implicit.DefaultScopes when nil.
func NewProvider(clientID, authorizeURL, apiBaseURL, displayText string, scopes []string, opts ...Option) *Provider {
	endpoint := Endpoint
	if authorizeURL != "" {
		endpoint.AuthURL = authorizeURL
	}
	if apiBaseURL == "" {
		apiBaseURL = "https://webexapis.com/v1"
	}
	if scopes == nil {
		scopes = implicit.DefaultScopes
	}

	p := &Provider{
		config: oauth2.Config{
			ClientID: clientID,
			Endpoint: endpoint,
			Scopes:   scopes,
		},
		displayText: displayText,
		apiBaseURL:  apiBaseURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Type returns the provider type.
func (p *Provider) Type() string {
	return "webex"
}

// Link returns the login link for an already encoded redirect URI.
func (p *Provider) Link(redirectURI string) implicit.Link {
	return implicit.NewLink(implicit.LinkParams{
		ClientID:         p.config.ClientID,
		RedirectURI:      redirectURI,
		BaseAuthorizeURL: p.config.Endpoint.AuthURL,
		DisplayText:      p.displayText,
		Scopes:           p.config.Scopes,
	})
}

// Me fetches the profile of the token's owner.
func (p *Provider) Me(ctx context.Context, token *oauth2.Token) (*Person, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	endpoint, err := urlutil.JoinPath(p.apiBaseURL, "people", "me")
	if err != nil {
		return nil, fmt.Errorf("building people endpoint: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("failed to get person: status %d: %s", resp.StatusCode, ioutil.ReadLimited(resp.Body, 512))
	}

	var person Person
	if err := json.NewDecoder(resp.Body).Decode(&person); err != nil {
		return nil, fmt.Errorf("failed to decode person: %w", err)
	}
	return &person, nil
}
