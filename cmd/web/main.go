package main

import (
	"fmt"
	"os"

	"github.com/de-tools/sales-atlas/pkg/client/dashboard"
	"github.com/de-tools/sales-atlas/pkg/notify"
	"github.com/de-tools/sales-atlas/pkg/notify/amqp"
	"github.com/de-tools/sales-atlas/pkg/server"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/de-tools/sales-atlas/pkg/services/entry"
	"github.com/de-tools/sales-atlas/pkg/services/submission"
	"github.com/de-tools/sales-atlas/pkg/store/providers"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	verbose bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Sales Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the YAML config file (defaults and ATLAS_* environment variables are used when empty)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := dashboard.NewClient(dashboard.Config{
		BaseURL:  cfg.API.BaseURL,
		Token:    cfg.API.Token,
		Timeout:  cfg.API.Timeout,
		RetryMax: cfg.API.RetryMax,
		Logger:   &logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create dashboard client: %w", err)
	}

	var providerSource entry.ProviderSource = client
	if cfg.ProvidersFile != "" {
		providerSource, err = providers.NewIniSource(cfg.ProvidersFile)
		if err != nil {
			return err
		}
		logger.Info().Msgf("Providers loaded from `%s`", cfg.ProvidersFile)
	}

	var notifier submission.Notifier = notify.LogNotifier{}
	if cfg.AMQP.URL != "" {
		publisher, err := amqp.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
		if err != nil {
			return fmt.Errorf("failed to connect to broker: %w", err)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close broker connection")
			}
		}()
		notifier = publisher
		logger.Info().Str("exchange", cfg.AMQP.Exchange).Msg("publishing saved weeks to broker")
	}

	registry := entry.NewRegistry(entry.Dependencies{
		Summaries: client,
		Dashboard: client,
		Goals:     client,
		Providers: providerSource,
		Saver:     client,
		Notifier:  notifier,
	}, entry.Options{
		DebounceDelay:    cfg.Entry.DebounceDelay,
		LaborPromptDelay: cfg.Entry.LaborPromptDelay,
	})
	defer registry.Close()

	zerolog.Ctx(ctx).Info().Str("api", cfg.API.BaseURL).Msg("dashboard API configured")

	web := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Sessions: registry,
		},
	})
	return web.Start()
}
