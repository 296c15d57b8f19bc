package implicit

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Fragment fields returned by the provider on an implicit-grant redirect.
const (
	FieldAccessToken           = "access_token"
	FieldTokenType             = "token_type"
	FieldExpiresIn             = "expires_in"
	FieldRefreshToken          = "refresh_token"
	FieldRefreshTokenExpiresIn = "refresh_token_expires_in"
)

// SensitiveFields are removed from the visible fragment once a token has
// been captured.
var SensitiveFields = []string{
	FieldAccessToken,
	FieldTokenType,
	FieldExpiresIn,
	FieldRefreshToken,
	FieldRefreshTokenExpiresIn,
}

// ParseFragment parses a URL fragment as form fields. A leading '#' is
// allowed. Malformed pairs are skipped.
func ParseFragment(fragment string) url.Values {
	fragment = strings.TrimPrefix(fragment, "#")
	// ParseQuery keeps every pair it could decode alongside the error.
	values, _ := url.ParseQuery(fragment)
	if values == nil {
		values = url.Values{}
	}
	return values
}

// ScrubFragment returns values without SensitiveFields, re-encoded.
func ScrubFragment(values url.Values) string {
	kept := url.Values{}
	for k, v := range values {
		if isSensitive(k) {
			continue
		}
		kept[k] = v
	}
	return kept.Encode()
}

func isSensitive(field string) bool {
	for _, s := range SensitiveFields {
		if s == field {
			return true
		}
	}
	return false
}

// TokenFromFragment builds a token from fragment values. ok is false when
// access_token is missing or empty.
func TokenFromFragment(values url.Values, now time.Time) (*oauth2.Token, bool) {
	accessToken := values.Get(FieldAccessToken)
	if accessToken == "" {
		return nil, false
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		TokenType:    values.Get(FieldTokenType),
		RefreshToken: values.Get(FieldRefreshToken),
	}

	extra := map[string]any{}
	if raw := values.Get(FieldExpiresIn); raw != "" {
		extra[FieldExpiresIn] = raw
		if secs, err := strconv.ParseInt(raw, 10, 64); err == nil && secs > 0 {
			token.Expiry = now.Add(time.Duration(secs) * time.Second)
			token.ExpiresIn = secs
		}
	}
	if raw := values.Get(FieldRefreshTokenExpiresIn); raw != "" {
		extra[FieldRefreshTokenExpiresIn] = raw
	}
	if len(extra) > 0 {
		token = token.WithExtra(extra)
	}
	return token, true
}

// Extractor captures an access token from the address bar fragment.
//
// It starts unauthenticated. The first Observe that sees a non-empty
// access_token captures it, strips SensitiveFields from the fragment and
// moves to authenticated. There is no way back; build a new Extractor for a
// new page lifetime.
type Extractor struct {
	mu    sync.Mutex
	token *oauth2.Token
	now   func() time.Time
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithClock overrides the clock used to compute token expiry.
func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) {
		e.now = now
	}
}

// NewExtractor returns an unauthenticated Extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Observe inspects bar and returns the held token. captured is true only on
// the observation that performed the transition. Once authenticated the
// address bar is never touched again.
func (e *Extractor) Observe(bar AddressBar) (token *oauth2.Token, captured bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.token != nil {
		return e.token, false
	}

	values := ParseFragment(bar.Location().EscapedFragment())
	token, ok := TokenFromFragment(values, e.now())
	if !ok {
		return nil, false
	}

	bar.ReplaceFragment(ScrubFragment(values))
	e.token = token
	return token, true
}

// Token returns the captured token, or nil.
func (e *Extractor) Token() *oauth2.Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token
}

// Authenticated reports whether a token has been captured.
func (e *Extractor) Authenticated() bool {
	return e.Token() != nil
}
