package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/citizenwallet/govdash/internal/app"
	"github.com/citizenwallet/govdash/internal/config"
	"github.com/citizenwallet/govdash/internal/metrics"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/citizenwallet/govdash/pkg/router"
	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	env := flag.String("env", "", "path to .env file")

	port := flag.Int("port", 3000, "port to listen on")

	debug := flag.Bool("debug", false, "enable debug logging")

	flag.Parse()

	logger, err := getLogger(*debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	_, err = maxprocs.Set(maxprocs.Logger(logger.Sugar().Infof))
	if err != nil {
		logger.Fatal("failed to set max procs", zap.Error(err))
	}

	logger.Info("launching dashboard...", zap.String("version", governance.Version))

	ctx := context.Background()

	conf, err := config.New(ctx, *env, logger)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	if conf.SentryURL != "" && conf.SentryURL != "x" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:              conf.SentryURL,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			logger.Fatal("sentry.Init", zap.Error(err))
		}
		// Flush buffered events before the program terminates.
		defer sentry.Flush(2 * time.Second)
	}

	roles, err := conf.Roles()
	if err != nil {
		logger.Fatal("invalid roles", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, closeApp, err := app.FromConfig(ctx, conf, logger, metrics.New(registry))
	if err != nil {
		logger.Fatal("failed to start dashboard", zap.Error(err))
	}
	defer closeApp()

	quitAck := make(chan error)

	go func() {
		logger.Info("fetching proposals...")
		err := a.Refresh(ctx)
		if err != nil {
			logger.Warn("initial proposal refresh failed", zap.Error(err))
		}
	}()

	logger.Info("starting api service...")

	api := router.NewServer(conf.APIKey, conf.ChainName, conf.WalletKeystoreDir != "" && conf.WalletPrivateKey == "", roles, a, registry, logger)

	go func() {
		quitAck <- api.Start(*port)
	}()

	logger.Info("listening", zap.Int("port", *port))

	for err := range quitAck {
		if err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}
}

func getLogger(debug bool) (*zap.Logger, error) {
	options := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zap.FatalLevel),
	}

	zc := zap.NewProductionConfig()
	zc.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	if debug {
		zc.Level.SetLevel(zap.DebugLevel)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}

	return logger.WithOptions(options...), nil
}
