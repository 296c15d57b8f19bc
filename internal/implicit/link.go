package implicit

import "strings"

// DefaultScopes is the Webex scope set the demo asks for.
var DefaultScopes = []string{"spark:all", "spark:kms"}

// ResponseType is the implicit grant response type.
const ResponseType = "token"

// LinkParams configures an authorization link. None of the fields are
// validated; empty values produce a link that goes nowhere useful.
type LinkParams struct {
	ClientID         string
	RedirectURI      string // already encoded, see ResolveRedirectURI
	BaseAuthorizeURL string
	DisplayText      string
	Scopes           []string // DefaultScopes when nil
}

// Link is a clickable reference to the provider's authorize endpoint.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// NewLink builds the login link for p.
func NewLink(p LinkParams) Link {
	scopes := p.Scopes
	if scopes == nil {
		scopes = DefaultScopes
	}
	return Link{
		Href: BuildAuthorizeURL(p.BaseAuthorizeURL, p.ClientID, p.RedirectURI, scopes),
		Text: p.DisplayText,
	}
}

// BuildAuthorizeURL composes the implicit-grant authorize URL. Parameter
// order is fixed; clientID and redirectURI are inserted verbatim.
func BuildAuthorizeURL(baseAuthorizeURL, clientID, redirectURI string, scopes []string) string {
	var b strings.Builder
	b.WriteString(baseAuthorizeURL)
	b.WriteString("?client_id=")
	b.WriteString(clientID)
	b.WriteString("&response_type=")
	b.WriteString(ResponseType)
	b.WriteString("&redirect_uri=")
	b.WriteString(redirectURI)
	b.WriteString("&scope=")
	b.WriteString(EncodeComponent(strings.Join(scopes, " ")))
	return b.String()
}
