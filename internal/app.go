package internal

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/dgellow/webex-implicit/internal/config"
	"github.com/dgellow/webex-implicit/internal/log"
	"github.com/dgellow/webex-implicit/internal/metrics"
	"github.com/dgellow/webex-implicit/internal/server"
	"github.com/dgellow/webex-implicit/internal/webex"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// WebexImplicit is the demo front end: one HTTP server, no state.
type WebexImplicit struct {
	config     config.Config
	httpServer *server.HTTPServer
}

// NewWebexImplicit builds the application from cfg.
func NewWebexImplicit(cfg config.Config) *WebexImplicit {
	log.LogInfoWithFields("app", "Building application", map[string]any{
		"addr":         cfg.Server.Addr,
		"publicUrl":    cfg.Server.PublicURL,
		"authorizeUrl": cfg.Webex.AuthorizeURL,
		"scopes":       cfg.Webex.Scopes,
	})

	for _, warning := range config.ValidateConfig(&cfg).Warnings {
		log.LogWarnWithFields("config", warning.Message, map[string]any{
			"path": warning.Path,
		})
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	provider := webex.NewProvider(
		cfg.Webex.ClientID,
		cfg.Webex.AuthorizeURL,
		cfg.Webex.APIBaseURL,
		cfg.Webex.DisplayText,
		cfg.Webex.Scopes,
	)
	handlers := server.NewLoginHandlers(provider, cfg.Server, metrics.New(reg))

	return &WebexImplicit{
		config:     cfg,
		httpServer: server.NewHTTPServer(server.NewRouter(handlers, reg), cfg.Server.Addr, cfg.Server.ReadHeaderTimeout),
	}
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (a *WebexImplicit) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.config.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *WebexImplicit) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.httpServer.Serve(ln)
	})

	g.Go(func() error {
		<-gctx.Done()
		reason := "context cancelled"
		if err := context.Cause(gctx); err != nil && !errors.Is(err, context.Canceled) {
			reason = err.Error()
		}
		log.LogInfoWithFields("app", "Starting graceful shutdown", map[string]any{
			"reason":  reason,
			"timeout": a.config.Server.ShutdownTimeout.String(),
		})

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.Server.ShutdownTimeout)
		defer cancel()
		return a.httpServer.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.LogErrorWithFields("app", "Application stopped with error", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	log.LogInfoWithFields("app", "Application shutdown complete", nil)
	return nil
}
