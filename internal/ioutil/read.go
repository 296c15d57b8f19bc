package ioutil

import (
	"fmt"
	"io"
	"strings"
)

// ReadLimited reads at most limit bytes from r for use in error messages.
// A read failure is described in the returned string rather than dropped.
func ReadLimited(r io.Reader, limit int64) string {
	body, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return fmt.Sprintf("<unreadable: %v>", err)
	}
	return strings.TrimSpace(string(body))
}
