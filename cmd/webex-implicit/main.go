package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgellow/webex-implicit/internal"
	"github.com/dgellow/webex-implicit/internal/config"
	"github.com/dgellow/webex-implicit/internal/implicit"
	"github.com/dgellow/webex-implicit/internal/log"
	"github.com/dgellow/webex-implicit/internal/webex"
	"github.com/jessevdk/go-flags"
)

var BuildVersion = "dev"

type options struct {
	Version  bool   `long:"version" description:"print version and exit"`
	LogLevel string `long:"log-level" description:"override LOG_LEVEL (error, warn, info, debug, trace)"`

	out io.Writer
}

type serveCommand struct {
	Config string `short:"c" long:"config" description:"path to config file; environment only when omitted"`
}

func (c *serveCommand) Execute(args []string) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log.LogInfoWithFields("main", "Starting webex-implicit", map[string]any{
		"version": BuildVersion,
		"config":  c.Config,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return internal.NewWebexImplicit(cfg).Run(ctx)
}

type linkCommand struct {
	Config      string `short:"c" long:"config" description:"path to config file; environment only when omitted"`
	RedirectURL string `short:"r" long:"redirect-url" required:"true" description:"address of the page the provider should return to"`

	opts *options
}

func (c *linkCommand) Execute(args []string) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loc, err := url.Parse(c.RedirectURL)
	if err != nil {
		return fmt.Errorf("invalid redirect URL: %w", err)
	}

	provider := webex.NewProvider(cfg.Webex.ClientID, cfg.Webex.AuthorizeURL, cfg.Webex.APIBaseURL, cfg.Webex.DisplayText, cfg.Webex.Scopes)
	_, err = fmt.Fprintln(c.opts.out, provider.Link(implicit.ResolveRedirectURI(loc)).Href)
	return err
}

type extractCommand struct {
	ShowToken bool `long:"show-token" description:"print the access token instead of a redacted form"`
	Args      struct {
		URL string `positional-arg-name:"url" required:"yes" description:"address the provider redirected to"`
	} `positional-args:"yes"`

	opts *options
	now  func() time.Time
}

type extractResult struct {
	Authenticated bool       `json:"authenticated"`
	AccessToken   string     `json:"accessToken,omitempty"`
	TokenType     string     `json:"tokenType,omitempty"`
	Expiry        *time.Time `json:"expiry,omitempty"`
	URL           string     `json:"url"`
}

var errNoToken = errors.New("no access token in URL fragment")

func (c *extractCommand) Execute(args []string) error {
	bar, err := implicit.NewMemoryAddressBar(c.Args.URL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	now := c.now
	if now == nil {
		now = time.Now
	}
	token, captured := implicit.NewExtractor(implicit.WithClock(now)).Observe(bar)

	result := extractResult{Authenticated: captured, URL: bar.String()}
	if captured {
		result.AccessToken = log.Redact(token.AccessToken)
		if c.ShowToken {
			result.AccessToken = token.AccessToken
		}
		result.TokenType = token.TokenType
		if !token.Expiry.IsZero() {
			expiry := token.Expiry.UTC()
			result.Expiry = &expiry
		}
	}

	enc := json.NewEncoder(c.opts.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return err
	}
	if !captured {
		return errNoToken
	}
	return nil
}

type validateCommand struct {
	Config string `short:"c" long:"config" required:"true" description:"path to config file"`

	opts *options
}

func (c *validateCommand) Execute(args []string) error {
	out := c.opts.out
	result, err := config.ValidateFile(c.Config)
	if err != nil {
		return fmt.Errorf("error during validation: %w", err)
	}

	fmt.Fprintf(out, "Validating: %s\n", c.Config)

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "\nErrors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", e.Error())
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  - %s\n", w.Error())
		}
	}

	fmt.Fprintln(out)
	switch {
	case len(result.Errors) == 0 && len(result.Warnings) == 0:
		fmt.Fprintln(out, "Result: PASS")
		return nil
	case len(result.Errors) == 0:
		fmt.Fprintln(out, "Result: PASS (with warnings)")
		return nil
	default:
		fmt.Fprintln(out, "Result: FAIL")
		return fmt.Errorf("validation failed: %d error(s), %d warning(s)", len(result.Errors), len(result.Warnings))
	}
}

type configInitCommand struct {
	Args struct {
		Path string `positional-arg-name:"path" required:"yes" description:"where to write the config file"`
	} `positional-args:"yes"`

	opts *options
}

func (c *configInitCommand) Execute(args []string) error {
	defaultConfig := map[string]any{
		"version": config.Version,
		"server": map[string]any{
			"addr":            ":8080",
			"publicUrl":       "",
			"trustProxy":      false,
			"shutdownTimeout": "10s",
		},
		"webex": map[string]any{
			"clientId":     map[string]string{"$env": "WEBEX_CLIENT_ID"},
			"authorizeUrl": config.DefaultAuthorizeURL,
			"scopes":       implicit.DefaultScopes,
			"displayText":  config.DefaultDisplayText,
			"apiBaseUrl":   config.DefaultAPIBaseURL,
		},
	}

	data, err := json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.Args.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	_, err = fmt.Fprintf(c.opts.out, "Generated default config at: %s\n", c.Args.Path)
	return err
}

func newParser(opts *options) (*flags.Parser, error) {
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.SubcommandsOptional = true

	commands := []struct {
		name, short, long string
		data              any
	}{
		{"serve", "Serve the login demo", "Serve the implicit-grant login demo page and API.", &serveCommand{}},
		{"link", "Print the authorize URL", "Print the Webex authorize URL for a page address.", &linkCommand{opts: opts}},
		{"extract", "Extract a token from a redirect URL", "Capture the access token from a redirect URL fragment and print the scrubbed URL.", &extractCommand{opts: opts}},
		{"validate", "Validate a config file", "Validate a config file without resolving environment references.", &validateCommand{opts: opts}},
		{"config-init", "Write a default config file", "Write a default config file to the given path.", &configInitCommand{opts: opts}},
	}
	for _, cmd := range commands {
		if _, err := parser.AddCommand(cmd.name, cmd.short, cmd.long, cmd.data); err != nil {
			return nil, err
		}
	}

	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if opts.LogLevel != "" {
			if err := log.SetLogLevel(opts.LogLevel); err != nil {
				return err
			}
		}
		if command == nil {
			return nil
		}
		return command.Execute(args)
	}
	return parser, nil
}

func run(args []string, out io.Writer) error {
	opts := &options{out: out}
	parser, err := newParser(opts)
	if err != nil {
		return err
	}

	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}

	if opts.Version {
		_, err := fmt.Fprintln(out, BuildVersion)
		return err
	}
	if parser.Active == nil {
		parser.WriteHelp(out)
		return fmt.Errorf("a command is required")
	}
	return nil
}

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
		fmt.Fprintln(os.Stdout, flagsErr.Message)
		return
	}
	log.LogError("%v", err)
	os.Exit(1)
}
