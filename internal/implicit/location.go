package implicit

import (
	"net/url"
	"sync"
)

// AddressBar is the navigation context the resolver and extractor work
// against. In a browser it is window.location plus history.replaceState.
type AddressBar interface {
	// Location returns the current address. Callers must not mutate it.
	Location() *url.URL

	// ReplaceFragment swaps the fragment without navigating. An empty
	// fragment removes it entirely.
	ReplaceFragment(fragment string)
}

// MemoryAddressBar is an in-process AddressBar.
type MemoryAddressBar struct {
	mu           sync.Mutex
	current      *url.URL
	replacements int
}

// NewMemoryAddressBar parses rawURL into an address bar.
func NewMemoryAddressBar(rawURL string) (*MemoryAddressBar, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return &MemoryAddressBar{current: u}, nil
}

func (b *MemoryAddressBar) Location() *url.URL {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := *b.current
	return &u
}

func (b *MemoryAddressBar) ReplaceFragment(fragment string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := *b.current
	u.Fragment = ""
	u.RawFragment = ""
	if fragment != "" {
		// fragment is already encoded
		if unescaped, err := url.PathUnescape(fragment); err == nil {
			u.Fragment = unescaped
		} else {
			u.Fragment = fragment
		}
		u.RawFragment = fragment
	}
	b.current = &u
	b.replacements++
}

// Replacements reports how many times the fragment was rewritten.
func (b *MemoryAddressBar) Replacements() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.replacements
}

// String returns the current address.
func (b *MemoryAddressBar) String() string {
	return b.Location().String()
}
