package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// overlayString replaces *dst when raw is present.
func overlayString(dst *string, raw json.RawMessage, field string) error {
	if raw == nil {
		return nil
	}
	value, err := ParseConfigValue(raw)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", field, err)
	}
	*dst = value
	return nil
}

func overlayDuration(dst *time.Duration, raw string, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", field, err)
	}
	*dst = d
	return nil
}

// UnmarshalJSON overlays the fields present in data onto w, so values
// loaded from the environment survive when the file omits them.
func (w *WebexConfig) UnmarshalJSON(data []byte) error {
	type rawWebex struct {
		ClientID     json.RawMessage   `json:"clientId"`
		AuthorizeURL json.RawMessage   `json:"authorizeUrl"`
		Scopes       []json.RawMessage `json:"scopes"`
		DisplayText  json.RawMessage   `json:"displayText"`
		APIBaseURL   json.RawMessage   `json:"apiBaseUrl"`
	}

	var raw rawWebex
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if err := overlayString(&w.ClientID, raw.ClientID, "clientId"); err != nil {
		return err
	}
	if err := overlayString(&w.AuthorizeURL, raw.AuthorizeURL, "authorizeUrl"); err != nil {
		return err
	}
	if err := overlayString(&w.DisplayText, raw.DisplayText, "displayText"); err != nil {
		return err
	}
	if err := overlayString(&w.APIBaseURL, raw.APIBaseURL, "apiBaseUrl"); err != nil {
		return err
	}

	if raw.Scopes != nil {
		scopes := make([]string, len(raw.Scopes))
		for i, item := range raw.Scopes {
			value, err := ParseConfigValue(item)
			if err != nil {
				return fmt.Errorf("parsing scopes[%d]: %w", i, err)
			}
			scopes[i] = value
		}
		w.Scopes = scopes
	}

	return nil
}

// UnmarshalJSON overlays the fields present in data onto s.
func (s *ServerConfig) UnmarshalJSON(data []byte) error {
	type rawServer struct {
		Addr              json.RawMessage `json:"addr"`
		PublicURL         json.RawMessage `json:"publicUrl"`
		TrustProxy        *bool           `json:"trustProxy"`
		ReadHeaderTimeout string          `json:"readHeaderTimeout"`
		ShutdownTimeout   string          `json:"shutdownTimeout"`
	}

	var raw rawServer
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if err := overlayString(&s.Addr, raw.Addr, "addr"); err != nil {
		return err
	}
	if err := overlayString(&s.PublicURL, raw.PublicURL, "publicUrl"); err != nil {
		return err
	}
	if raw.TrustProxy != nil {
		s.TrustProxy = *raw.TrustProxy
	}
	if err := overlayDuration(&s.ReadHeaderTimeout, raw.ReadHeaderTimeout, "readHeaderTimeout"); err != nil {
		return err
	}
	return overlayDuration(&s.ShutdownTimeout, raw.ShutdownTimeout, "shutdownTimeout")
}
