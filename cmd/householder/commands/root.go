// Package commands holds the householder command tree.
package commands

import (
	"database/sql"
	"log/slog"

	"github.com/dukerupert/householder/internal/app"
	"github.com/dukerupert/householder/internal/auth"
	"github.com/dukerupert/householder/internal/config"
	"github.com/dukerupert/householder/internal/database"
	"github.com/dukerupert/householder/internal/email"
	"github.com/dukerupert/householder/internal/logging"
	"github.com/dukerupert/householder/internal/store"
	"github.com/dukerupert/householder/internal/websocket"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        config.Config
	logger     *slog.Logger
)

func Execute() error {
	root := &cobra.Command{
		Use:           "householder",
		Short:         "Shared household ledger, shopping and chores server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(configPath); err != nil {
				return err
			}
			logger = logging.Setup(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(serveCmd(), migrateCmd(), userCmd())
	err := root.Execute()
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("command failed", "error", err)
	}
	return err
}

// stack is everything a command needs to run application commands.
type stack struct {
	sqlDB *sql.DB
	db    *store.DB
	hub   *websocket.Hub
	app   *app.App
}

func openStack() (*stack, error) {
	sqlDB, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	db := store.New(sqlDB)
	hub := websocket.NewHub(logger)
	mailer := email.NewClient(cfg.Postmark.ServerToken, cfg.Postmark.FromEmail, cfg.BaseURL)
	if !mailer.Configured() {
		logger.Warn("postmark not configured, mail is disabled")
	}
	a := app.New(app.Deps{
		DB:              db,
		Publisher:       hub,
		Mailer:          mailer,
		Hasher:          auth.NewHasher(cfg.BcryptCost),
		Logger:          logger,
		SessionTTL:      cfg.SessionTTL,
		DefaultCurrency: cfg.Currency(),
	})
	return &stack{sqlDB: sqlDB, db: db, hub: hub, app: a}, nil
}

func (s *stack) Close() error {
	return s.sqlDB.Close()
}
