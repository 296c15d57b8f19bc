package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// JoinPath appends path segments to base, collapsing duplicate slashes.
// A trailing slash on the last segment is kept.
func JoinPath(base string, segments ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	u.Path = path.Join(append([]string{u.Path}, segments...)...)
	if n := len(segments); n > 0 && strings.HasSuffix(segments[n-1], "/") {
		u.Path += "/"
	}
	u.RawPath = ""

	return u.String(), nil
}
