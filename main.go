package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "nass3archive",
		Usage: "Incremental, fingerprinted tar.gz backups of a directory tree to object storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"configfile"},
				Usage:    "Configuration File Path",
				EnvVars:  []string{envPrefix + "_CONFIG"},
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Decide and log what would be uploaded without writing anything",
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single backup even if a schedule is configured",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Action: backupAction,
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func backupAction(c *cli.Context) error {
	appConfig, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if c.Bool("dry-run") {
		appConfig.DryRun = true
	}
	if c.IsSet("log-level") {
		appConfig.LogLevel = c.String("log-level")
	}
	if err := appConfig.Validate(); err != nil {
		return err
	}
	if err := setupLogging(appConfig.LogLevel, appConfig.LogFile); err != nil {
		return err
	}

	log.Info("Configuration:")
	for _, line := range appConfig.ConfigStringArray() {
		log.Info(line)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bucketClient, err := appConfig.ClientFromConfig(ctx)
	if err != nil {
		return err
	}

	var notifier Notifier
	if appConfig.SNSTopic != "" {
		notifier, err = NewSNSNotifier(ctx, appConfig)
		if err != nil {
			return fmt.Errorf("Error creating sns notifier: %w", err)
		}
	}

	runner := NewRunner(appConfig, bucketClient, notifier)
	if appConfig.Schedule != "" && !c.Bool("once") {
		return runScheduled(ctx, appConfig.Schedule, runner)
	}

	resultMap, runErr := runner.Run(ctx)
	if runErr != nil {
		return runErr
	}
	if resultMap.HasFailures() {
		return fmt.Errorf("%d units failed", len(resultMap.Failed()))
	}

	return nil
}
