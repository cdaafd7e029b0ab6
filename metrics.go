package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/helpcomp/firefly-iii-gnucash-importer/prom"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
	"github.com/prometheus/exporter-toolkit/web"
	"github.com/rs/zerolog/log"
)

const metricsNamespace = "gnucash_importer"

type MetricsCmd struct {
	MetricsPath   string `env:"EXPORTER_METRICS_PATH" help:"${env} - Path under which to expose metrics" default:"/metrics"`
	ListenAddress string `env:"EXPORTER_LISTEN_ADDRESS" help:"${env} - Address to listen on for web interface and telemetry" default:":9718"`
}

func (c *MetricsCmd) Run(ctx context.Context, app *App) error {
	if err := c.register(app); err != nil {
		return err
	}

	mux, err := c.handler(app)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         c.ListenAddress,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting HTTP server on listen address %s and metric path %s", c.ListenAddress, c.MetricsPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutdown Signal Received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	log.Info().Msg("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("Shutdown Complete; Exiting...")
	return nil
}

// register adds the account exporter to the app's registry.
func (c *MetricsCmd) register(app *App) error {
	return app.registry.Register(prom.NewExporter(metricsNamespace, app.ff))
}

func (c *MetricsCmd) handler(app *App) (*http.ServeMux, error) {
	mux := http.NewServeMux()
	mux.Handle(c.MetricsPath, promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	mux.Handle("/health", prom.HealthHandler(app.ff))

	if c.MetricsPath != "/" && c.MetricsPath != "" {
		landingConfig := web.LandingConfig{
			Name:        AppName,
			Description: AppDesc,
			Version:     version.Print(AppName),
			Links: []web.LandingLinks{
				{
					Address: c.MetricsPath,
					Text:    "Metrics",
				},
				{
					Address: "/health",
					Text:    "Health",
				},
			},
		}
		landingPage, err := web.NewLandingPage(landingConfig)
		if err != nil {
			return nil, err
		}
		mux.Handle("/", landingPage)
	}
	return mux, nil
}
