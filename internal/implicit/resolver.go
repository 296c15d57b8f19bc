package implicit

import (
	"net/http"
	"net/url"
	"strings"
)

// ResolveRedirectURI derives the redirect URI a page at loc is served from:
// scheme://host/path with one trailing slash stripped, percent-encoded.
// Query and fragment are ignored.
func ResolveRedirectURI(loc *url.URL) string {
	raw := loc.Scheme + "://" + loc.Host + loc.EscapedPath()
	raw = strings.TrimSuffix(raw, "/")
	return EncodeComponent(raw)
}

// RequestLocation reconstructs the address the browser used to reach r.
// When publicURL is set it wins over anything derived from the request.
// Forwarded headers are only honored when trustProxy is set.
func RequestLocation(r *http.Request, publicURL string, trustProxy bool) *url.URL {
	if publicURL != "" {
		if u, err := url.Parse(publicURL); err == nil && u.Host != "" {
			return u
		}
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if trustProxy {
		if proto := firstHeaderValue(r, "X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		if fwdHost := firstHeaderValue(r, "X-Forwarded-Host"); fwdHost != "" {
			host = fwdHost
		}
	}

	return &url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   r.URL.Path,
	}
}

// ResolveRequestRedirectURI is ResolveRedirectURI applied to RequestLocation.
func ResolveRequestRedirectURI(r *http.Request, publicURL string, trustProxy bool) string {
	return ResolveRedirectURI(RequestLocation(r, publicURL, trustProxy))
}

func firstHeaderValue(r *http.Request, name string) string {
	v := r.Header.Get(name)
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// EncodeComponent percent-encodes s the way encodeURIComponent does:
// spaces become %20, not '+'.
func EncodeComponent(s string) string {
	// QueryEscape turns a literal '+' into %2B, so every '+' left is a space.
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
