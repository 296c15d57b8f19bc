package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Version is the config file version this build understands.
const Version = "v1"

// Webex defaults
const (
	DefaultAuthorizeURL = "https://webexapis.com/v1/authorize"
	DefaultAPIBaseURL   = "https://webexapis.com/v1"
	DefaultDisplayText  = "Login with Webex"
)

// WebexConfig holds what the login link and profile lookup need.
//
// ClientID and AuthorizeURL are not validated beyond warnings: a broken
// value produces a dead link, and the provider's own page reports the
// rejection.
type WebexConfig struct {
	ClientID     string   `json:"clientId" env:"WEBEX_CLIENT_ID"`
	AuthorizeURL string   `json:"authorizeUrl" env:"WEBEX_AUTHORIZE_URL" envDefault:"https://webexapis.com/v1/authorize"`
	Scopes       []string `json:"scopes" env:"WEBEX_SCOPES" envSeparator:"," envDefault:"spark:all,spark:kms"`
	DisplayText  string   `json:"displayText" env:"WEBEX_DISPLAY_TEXT" envDefault:"Login with Webex"`
	APIBaseURL   string   `json:"apiBaseUrl" env:"WEBEX_API_BASE_URL" envDefault:"https://webexapis.com/v1"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr string `json:"addr" env:"WEBEX_IMPLICIT_ADDR" envDefault:":8080"`

	// PublicURL pins the address the redirect URI is derived from. When
	// empty it is reconstructed from each request.
	PublicURL string `json:"publicUrl" env:"WEBEX_IMPLICIT_PUBLIC_URL"`

	// TrustProxy honors X-Forwarded-Proto and X-Forwarded-Host.
	TrustProxy bool `json:"trustProxy" env:"WEBEX_IMPLICIT_TRUST_PROXY"`

	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" env:"WEBEX_IMPLICIT_READ_HEADER_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout   time.Duration `json:"shutdownTimeout" env:"WEBEX_IMPLICIT_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Config is the resolved configuration.
type Config struct {
	Server ServerConfig `json:"server"`
	Webex  WebexConfig  `json:"webex"`
}

// ParseConfigValue parses a JSON value that is either a plain string or an
// {"$env": "VAR"} reference, resolving the reference immediately.
func ParseConfigValue(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str, nil
	}

	var ref map[string]string
	if err := json.Unmarshal(raw, &ref); err != nil {
		return "", fmt.Errorf("config value must be string or reference object")
	}

	envVar, ok := ref["$env"]
	if !ok {
		return "", fmt.Errorf("unknown reference type in config value")
	}
	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("environment variable %s not set", envVar)
	}
	// Strip surrounding quotes if present (only matching pairs)
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return value, nil
}
