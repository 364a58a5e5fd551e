package cli

import (
	"context"
	"fmt"

	"chatbot/chatbot"
	"chatbot/config"
	"chatbot/database"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// StoreOpener opens the answer store for a command.
type StoreOpener func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (database.Store, error)

// App holds what every command shares. It is filled in by the root
// command's pre-run hook, once flags and config are known.
type App struct {
	OpenStore StoreOpener

	Config  *config.Config
	Logger  *zap.Logger
	Store   database.Store
	Service *chatbot.Service
}

func NewApp() *App {
	return &App{OpenStore: database.Open}
}

// NewRootCmd creates the top-level "chatbot" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "chatbot",
		Short:         "Canned-answer chatbot backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
	}

	root.PersistentFlags().String("store", "", "store driver: postgres, sqlite, badger or memory")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	viper.BindPFlag("STORE_DRIVER", root.PersistentFlags().Lookup("store"))
	viper.BindPFlag("LOG_LEVEL", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		newServeCmd(app),
		newAskCmd(app),
		newTeachCmd(app),
		newForgetCmd(app),
		newAnswersCmd(app),
		newNotifyCmd(app),
	)

	return root
}

func (a *App) init(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to re-initialize logger with configured level: %w", err)
	}

	store, err := a.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	service, err := chatbot.NewServiceFromConfig(cfg, store, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("build chatbot service: %w", err)
	}

	a.Config = cfg
	a.Logger = logger
	a.Store = store
	a.Service = service
	return nil
}

// Close releases the store and flushes logs. Safe to call more than once.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil && a.Logger != nil {
			a.Logger.Warn("Failed to close store", zap.Error(err))
		}
		a.Store = nil
	}
	config.Cleanup()
}
