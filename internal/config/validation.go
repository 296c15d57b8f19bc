package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

// ValidationResult holds validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// ValidationError represents a validation issue
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// IsValid returns true if there are no errors
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

func (v *ValidationResult) addError(path, format string, args ...any) {
	v.Errors = append(v.Errors, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *ValidationResult) addWarning(path, format string, args ...any) {
	v.Warnings = append(v.Warnings, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

// ValidateConfig checks a resolved config. Only problems that stop the
// server from starting are errors; a misconfigured Webex client merely
// yields a dead login link and is reported as a warning.
func ValidateConfig(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	if cfg.Server.Addr == "" {
		result.addError("server.addr", "addr is required")
	}
	if cfg.Server.PublicURL != "" {
		u, err := url.Parse(cfg.Server.PublicURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			result.addError("server.publicUrl", "publicUrl must be an absolute URL, got %q", cfg.Server.PublicURL)
		}
	}
	if cfg.Server.ReadHeaderTimeout < 0 {
		result.addError("server.readHeaderTimeout", "readHeaderTimeout cannot be negative")
	}
	if cfg.Server.ShutdownTimeout < 0 {
		result.addError("server.shutdownTimeout", "shutdownTimeout cannot be negative")
	}

	if cfg.Webex.ClientID == "" {
		result.addWarning("webex.clientId", "clientId is empty - the login link will be rejected by the provider. Hint: set WEBEX_CLIENT_ID")
	}
	if cfg.Webex.AuthorizeURL == "" {
		result.addWarning("webex.authorizeUrl", "authorizeUrl is empty - the login link will not leave this page")
	} else if u, err := url.Parse(cfg.Webex.AuthorizeURL); err != nil || u.Scheme != "https" || u.Host == "" {
		result.addWarning("webex.authorizeUrl", "authorizeUrl %q is not an absolute https URL", cfg.Webex.AuthorizeURL)
	}
	if len(cfg.Webex.Scopes) == 0 {
		result.addWarning("webex.scopes", "no scopes configured")
	}
	if cfg.Webex.APIBaseURL == "" {
		result.addWarning("webex.apiBaseUrl", "apiBaseUrl is empty - profile lookups will fail")
	}

	return result
}

var knownKeys = map[string][]string{
	"":       {"version", "server", "webex"},
	"server": {"addr", "publicUrl", "trustProxy", "readHeaderTimeout", "shutdownTimeout"},
	"webex":  {"clientId", "authorizeUrl", "scopes", "displayText", "apiBaseUrl"},
}

// ValidateFile validates a config file structure without requiring env vars
func ValidateFile(path string) (*ValidationResult, error) {
	result := &ValidationResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		result.addError("", "invalid JSON: %v", err)
		return result, nil
	}

	checkBashStyleSyntax(rawConfig, "", result)
	checkUnknownKeys(rawConfig, "", result)

	version, ok := rawConfig["version"].(string)
	if !ok {
		result.addError("version", "version field is required. Hint: Add \"version\": %q", Version)
	} else if !strings.HasPrefix(version, Version) {
		result.addError("version", "unsupported version '%s' - use %q", version, Version)
	}

	for _, section := range []string{"server", "webex"} {
		value, exists := rawConfig[section]
		if !exists {
			continue
		}
		fields, ok := value.(map[string]any)
		if !ok {
			result.addError(section, "%s must be an object", section)
			continue
		}
		checkUnknownKeys(fields, section, result)
		for key, field := range fields {
			if err := validateValueShape(field); err != nil {
				result.addError(section+"."+key, "%v", err)
			}
		}
	}

	return result, nil
}

// validateValueShape accepts strings, booleans, env refs and arrays of those
func validateValueShape(value any) error {
	switch v := value.(type) {
	case string, bool:
		return nil
	case map[string]any:
		ref, ok := v["$env"].(string)
		if !ok || len(v) != 1 {
			return fmt.Errorf("must be a string or {\"$env\": \"VAR_NAME\"}")
		}
		if ref == "" {
			return fmt.Errorf("$env reference must name a variable")
		}
		return nil
	case []any:
		for i, item := range v {
			if err := validateValueShape(item); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported value type %T", value)
	}
}

func checkUnknownKeys(fields map[string]any, path string, result *ValidationResult) {
	allowed := knownKeys[path]
	for key := range fields {
		known := false
		for _, a := range allowed {
			if a == key {
				known = true
				break
			}
		}
		if !known {
			fieldPath := key
			if path != "" {
				fieldPath = path + "." + key
			}
			result.addWarning(fieldPath, "unknown field %q is ignored", key)
		}
	}
}

var bashStyleRegex = regexp.MustCompile(`\$\{?[A-Z_][A-Z0-9_]*\}?`)

func checkBashStyleSyntax(value any, path string, result *ValidationResult) {
	switch v := value.(type) {
	case string:
		for _, match := range bashStyleRegex.FindAllString(v, -1) {
			varName := strings.Trim(match, "${}")
			result.addWarning(path, "found bash-style syntax '%s' - use {\"$env\": \"%s\"} instead", match, varName)
		}
	case map[string]any:
		if _, hasEnv := v["$env"]; hasEnv {
			return
		}
		for key, val := range v {
			newPath := key
			if path != "" {
				newPath = path + "." + key
			}
			checkBashStyleSyntax(val, newPath, result)
		}
	case []any:
		for i, item := range v {
			checkBashStyleSyntax(item, fmt.Sprintf("%s[%d]", path, i), result)
		}
	}
}
