package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgellow/webex-implicit/internal/config"
	"github.com/dgellow/webex-implicit/internal/implicit"
	jsonwriter "github.com/dgellow/webex-implicit/internal/json"
	"github.com/dgellow/webex-implicit/internal/log"
	"github.com/dgellow/webex-implicit/internal/metrics"
	"github.com/dgellow/webex-implicit/internal/webex"
	"golang.org/x/oauth2"
)

const maxFragmentBody = 64 << 10

// LoginProvider is what the handlers need from the identity provider.
type LoginProvider interface {
	Type() string
	Link(redirectURI string) implicit.Link
	Me(ctx context.Context, token *oauth2.Token) (*webex.Person, error)
}

// LoginHandlers serves the implicit-grant demo.
type LoginHandlers struct {
	provider LoginProvider
	server   config.ServerConfig
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewLoginHandlers creates the demo handlers.
func NewLoginHandlers(provider LoginProvider, serverCfg config.ServerConfig, m *metrics.Metrics) *LoginHandlers {
	return &LoginHandlers{
		provider: provider,
		server:   serverCfg,
		metrics:  m,
		now:      time.Now,
	}
}

func (h *LoginHandlers) redirectURI(r *http.Request) string {
	return implicit.ResolveRequestRedirectURI(r, h.server.PublicURL, h.server.TrustProxy)
}

// IndexHandler renders the demo page with the login link. Whether the user
// is already authenticated is only known to the page script.
func (h *LoginHandlers) IndexHandler(w http.ResponseWriter, r *http.Request) {
	redirectURI := h.redirectURI(r)
	link := h.provider.Link(redirectURI)

	decoded, err := url.QueryUnescape(redirectURI)
	if err != nil {
		decoded = redirectURI
	}

	data := IndexPageData{
		Title:            "Webex implicit grant demo",
		Link:             link,
		RedirectURI:      decoded,
		FragmentEndpoint: "/api/fragment",
		ProfileEndpoint:  "/api/me",
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := indexPageTemplate.Execute(w, data); err != nil {
		log.LogErrorWithFields("login", "Failed to render index page", map[string]any{
			"error": err.Error(),
		})
		return
	}
	h.metrics.IncrementLinkRendered()
}

// LinkHandler returns the login link for the demo page as JSON. The page
// lives at the root unless a public URL pins it elsewhere.
func (h *LoginHandlers) LinkHandler(w http.ResponseWriter, r *http.Request) {
	loc := implicit.RequestLocation(r, h.server.PublicURL, h.server.TrustProxy)
	if h.server.PublicURL == "" {
		loc.Path = "/"
	}
	redirectURI := implicit.ResolveRedirectURI(loc)
	link := h.provider.Link(redirectURI)
	h.metrics.IncrementLinkRendered()
	_ = jsonwriter.Write(w, map[string]any{
		"provider":    h.provider.Type(),
		"redirectUri": redirectURI,
		"link":        link,
	})
}

type fragmentRequest struct {
	URL string `json:"url"`
}

type fragmentResponse struct {
	Authenticated bool       `json:"authenticated"`
	AccessToken   string     `json:"accessToken,omitempty"`
	TokenType     string     `json:"tokenType,omitempty"`
	ExpiresIn     int64      `json:"expiresIn,omitempty"`
	Expiry        *time.Time `json:"expiry,omitempty"`
	URL           string     `json:"url"`
}

// FragmentHandler runs the token extractor against the address the page
// was loaded with and returns the captured token plus the scrubbed
// address for history.replaceState.
func (h *LoginHandlers) FragmentHandler(w http.ResponseWriter, r *http.Request) {
	var req fragmentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFragmentBody)).Decode(&req); err != nil {
		jsonwriter.WriteBadRequest(w, "request body must be {\"url\": \"...\"}")
		return
	}

	bar, err := implicit.NewMemoryAddressBar(req.URL)
	if err != nil || req.URL == "" {
		h.metrics.ObserveFragment(metrics.OutcomeInvalidURL)
		jsonwriter.WriteBadRequest(w, "url is not a valid address")
		return
	}

	extractor := implicit.NewExtractor(implicit.WithClock(h.now))
	token, captured := extractor.Observe(bar)

	resp := fragmentResponse{URL: bar.String()}
	if !captured {
		h.metrics.ObserveFragment(metrics.OutcomeNoToken)
		log.LogDebugWithFields("login", "No access token in fragment", map[string]any{
			"request_id": RequestID(r.Context()),
		})
		_ = jsonwriter.Write(w, resp)
		return
	}

	h.metrics.ObserveFragment(metrics.OutcomeCaptured)
	log.LogInfoWithFields("login", "Access token captured", map[string]any{
		"token":      log.Redact(token.AccessToken),
		"token_type": token.TokenType,
		"request_id": RequestID(r.Context()),
	})

	resp.Authenticated = true
	resp.AccessToken = token.AccessToken
	resp.TokenType = token.TokenType
	resp.ExpiresIn = token.ExpiresIn
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		resp.Expiry = &expiry
	}
	_ = jsonwriter.Write(w, resp)
}

// MeHandler looks up the Webex profile of the bearer token's owner.
func (h *LoginHandlers) MeHandler(w http.ResponseWriter, r *http.Request) {
	accessToken, ok := bearerToken(r)
	if !ok {
		jsonwriter.WriteUnauthorized(w, h.provider.Type(), "missing bearer token")
		return
	}

	person, err := h.provider.Me(r.Context(), &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	switch {
	case errors.Is(err, webex.ErrUnauthorized):
		h.metrics.ObserveProfileLookup(metrics.OutcomeProfileDenied)
		jsonwriter.WriteUnauthorized(w, h.provider.Type(), "token rejected by provider")
		return
	case err != nil:
		h.metrics.ObserveProfileLookup(metrics.OutcomeProfileFailed)
		log.LogWarnWithFields("login", "Profile lookup failed", map[string]any{
			"error":      err.Error(),
			"token":      log.Redact(accessToken),
			"request_id": RequestID(r.Context()),
		})
		jsonwriter.WriteBadGateway(w, "profile lookup failed")
		return
	}

	h.metrics.ObserveProfileLookup(metrics.OutcomeProfileOK)
	_ = jsonwriter.Write(w, person)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
