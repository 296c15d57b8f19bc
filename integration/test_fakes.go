package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

// FakeWebexServer mimics the two Webex endpoints the demo touches: the
// implicit-grant authorize page and people/me.
type FakeWebexServer struct {
	*httptest.Server

	AccessToken string

	mu       sync.Mutex
	requests []url.Values
}

// NewFakeWebexServer starts a fake that issues accessToken to anyone who
// asks for response_type=token.
func NewFakeWebexServer(accessToken string) *FakeWebexServer {
	f := &FakeWebexServer{AccessToken: accessToken}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/authorize", f.authorize)
	mux.HandleFunc("GET /v1/people/me", f.me)
	f.Server = httptest.NewServer(mux)
	return f
}

// AuthorizeRequests returns the query of every authorize call seen so far.
func (f *FakeWebexServer) AuthorizeRequests() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.requests...)
}

func (f *FakeWebexServer) authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	f.requests = append(f.requests, q)
	f.mu.Unlock()

	if q.Get("response_type") != "token" || q.Get("client_id") == "" {
		http.Error(w, "invalid_request", http.StatusBadRequest)
		return
	}

	fragment := url.Values{
		"access_token":             {f.AccessToken},
		"token_type":               {"Bearer"},
		"expires_in":               {"1209599"},
		"refresh_token":            {"refresh-" + f.AccessToken},
		"refresh_token_expires_in": {"7775999"},
	}
	http.Redirect(w, r, q.Get("redirect_uri")+"#"+fragment.Encode(), http.StatusFound)
}

func (f *FakeWebexServer) me(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+f.AccessToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":          "Y2lzY29zcGFyazovL3VzL1BFT1BMRS8x",
		"emails":      []string{"demo@example.com"},
		"displayName": "Demo User",
	})
}
