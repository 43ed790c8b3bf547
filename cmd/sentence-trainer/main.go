// cmd/sentence-trainer/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smith3v/sentence-trainer/pkg/accounts"
	"github.com/smith3v/sentence-trainer/pkg/config"
	"github.com/smith3v/sentence-trainer/pkg/db"
	"github.com/smith3v/sentence-trainer/pkg/generator"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/smith3v/sentence-trainer/pkg/notify"
	"github.com/smith3v/sentence-trainer/pkg/providers"
	"github.com/smith3v/sentence-trainer/pkg/sentences"
	"github.com/smith3v/sentence-trainer/pkg/web"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "sentence-trainer",
		Short:         "Sentence trainer for Polish, English and German",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfig(configFile); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.Configure(logger.Options{
				Level: config.AppConfig.Logging.Level,
				File:  config.AppConfig.Logging.File,
			}); err != nil {
				logger.Error("failed to configure logger", "error", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "JSON config file (environment variables override it)")

	root.AddCommand(newServeCommand(), newMigrateCommand(), newCreateUserCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg := config.AppConfig
	if err := db.InitDB(cfg.Database); err != nil {
		return err
	}
	if cfg.Server.SessionSecret == "dev" {
		logger.Warn("using the development session secret, set SERVER_SESSION_SECRET in production")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	resolver := providers.NewResolver(db.DB, cfg)
	notifier := notify.FromConfig(cfg.Telegram)
	srv, err := web.New(web.Deps{
		DB:          db.DB,
		Resolver:    resolver,
		Trainer:     sentences.NewTrainer(db.DB, resolver),
		Shared:      sentences.NewShared(db.DB, resolver, notifier),
		Generator:   generator.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.GeneratorModel),
		Server:      cfg.Server,
		AudioDir:    localAudioDir(cfg.Storage),
		AudioPrefix: cfg.Storage.PublicPrefix,
	})
	if err != nil {
		return err
	}

	retention := time.Duration(cfg.Generation.BatchRetentionDays) * 24 * time.Hour
	go db.StartBatchCleanup(ctx, db.DB, db.BatchCleanupInterval, retention)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

// localAudioDir is only served when blobs stay on disk.
func localAudioDir(cfg config.StorageConfig) string {
	if cfg.S3Bucket != "" {
		return ""
	}
	return cfg.LocalDir
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.InitDB(config.AppConfig.Database); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func newCreateUserCommand() *cobra.Command {
	var (
		username string
		password string
		admin    bool
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a student or admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}
			if err := db.InitDB(config.AppConfig.Database); err != nil {
				return err
			}
			student, err := accounts.Create(cmd.Context(), db.DB, username, password, admin)
			if err != nil {
				return err
			}
			role := "student"
			if student.IsAdmin {
				role = "admin"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %q (id %d)\n", role, student.Username, student.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account name")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant admin access")
	return cmd
}
