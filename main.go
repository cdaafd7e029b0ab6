package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/helpcomp/firefly-iii-gnucash-importer/config"
	"github.com/helpcomp/firefly-iii-gnucash-importer/firefly"
	"github.com/helpcomp/firefly-iii-gnucash-importer/prom"
	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/prometheus/common/version"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type CLI struct {
	ConfigPath   string           `name:"config" env:"CONFIG_PATH" help:"${env} - Path to config file" default:"./config.yml"`
	FireflyToken string           `name:"firefly-token" env:"FIREFLY_TOKEN" help:"${env} - Firefly Token (overrides server.token)"`
	FireflyBase  string           `name:"firefly-url" env:"FIREFLY_URL" help:"${env} - Firefly URL (overrides server.url)"`
	LogLevel     string           `env:"LOG_LEVEL" help:"${env} - Log level" enum:"trace,debug,info,warn,error" default:"info"`
	LogJSON      bool             `env:"LOG_JSON" help:"${env} - Log as JSON instead of console output"`
	PushGateway  string           `env:"PUSHGATEWAY_URL" help:"${env} - Push run metrics to this Prometheus Pushgateway"`
	Version      kong.VersionFlag `help:"Print version information and exit"`

	AccountList   AccountListCmd   `cmd:"" name:"account-list" help:"List Firefly accounts."`
	AccountDelete AccountDeleteCmd `cmd:"" name:"account-delete" help:"Delete all Firefly accounts, or only the ones imported from GnuCash."`
	Import        ImportCmd        `cmd:"" help:"Import data exported from GnuCash."`
	Metrics       MetricsCmd       `cmd:"" help:"Serve Prometheus metrics about Firefly accounts."`
}

// App carries everything a command needs.
type App struct {
	cfg      *config.MasterConfig
	ff       *firefly.Firefly
	op       *Operator
	stats    *prom.APIStats
	registry *prometheus.Registry
	out      io.Writer
}

func newApp(cli *CLI, out io.Writer) (*App, error) {
	cfg, err := config.InitConfig(cli.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.Override(cli.FireflyBase, cli.FireflyToken)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stats := prom.NewAPIStats(metricsNamespace)
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		versioncollector.NewCollector(metricsNamespace),
		stats,
	)

	ff := firefly.New(&http.Client{Timeout: time.Second * 30}, cfg.Server.Token, cfg.Server.URL, firefly.WithObserver(stats))
	return &App{
		cfg:      cfg,
		ff:       ff,
		op:       NewOperator(ff),
		stats:    stats,
		registry: registry,
		out:      out,
	}, nil
}

func setupLogger(level string, json bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	if json {
		w = os.Stderr
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	if lvl <= zerolog.DebugLevel {
		log.Logger = log.Logger.With().Caller().Logger()
	}
}

// run parses args and executes the selected command.
func run(ctx context.Context, args []string, out io.Writer, options ...kong.Option) error {
	var cli CLI
	options = append([]kong.Option{
		kong.Name(AppName),
		kong.Description(AppDesc),
		kong.UsageOnError(),
		kong.Vars{"version": version.Print(AppName)},
		kong.BindTo(ctx, (*context.Context)(nil)),
	}, options...)

	parser, err := kong.New(&cli, options...)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	setupLogger(cli.LogLevel, cli.LogJSON)

	app, err := newApp(&cli, out)
	if err != nil {
		return err
	}

	log.Debug().Str("version", version.Info()).Str("command", kctx.Command()).Msg("Starting " + AppName)
	runErr := kctx.Run(app)

	if cli.PushGateway != "" && kctx.Command() != "metrics" {
		if err := push.New(cli.PushGateway, metricsNamespace).Gatherer(app.registry).Push(); err != nil {
			log.Error().Err(err).Str("url", cli.PushGateway).Msg("Could not push metrics")
		}
	}
	return runErr
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("Interrupted")
		} else {
			log.Error().Err(err).Msg("Command failed")
		}
		stop()
		os.Exit(1)
	}
}
