package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gallery/internal/auth"
	"gallery/internal/cli"
	"gallery/internal/config"
	serviceGallery "gallery/internal/service/gallery"
	"gallery/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Browse and edit the artwork gallery",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive gallery shell",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		// Keep stdout for the shell; logs go to LOG_DIR only
		logger, closeLog, err := config.NewLoggerTo(cfg, nil)
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer stop()

		provider, err := auth.NewLocalProvider(cfg.UserEmail, cfg.UserPassword, cfg.AuthSecret, logger)
		if err != nil {
			return err
		}
		session := auth.NewSession(provider)

		content, err := storage.NewContentStore(ctx, cfg, logger)
		if err != nil {
			return err
		}

		ctrl, backend, err := serviceGallery.SetupController(ctx, cfg, content, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		defer ctrl.BindSession(session)()
		go logSessionChanges(ctx, session, logger)

		shell := cli.NewShell(ctrl, session, os.Stdin, os.Stdout, logger,
			cli.WithColor(!noColor && os.Getenv("NO_COLOR") == ""),
			cli.WithCascadeDelete(cfg.CascadeDelete),
		)
		return shell.Run(ctx)
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the folder tree as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger, closeLog, err := config.NewLoggerTo(cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer closeLog()

		ctrl, backend, err := serviceGallery.SetupController(cmd.Context(), cfg, nil, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ctrl.Tree())
	},
}

// logSessionChanges records sign-ins and sign-outs in the log file.
func logSessionChanges(ctx context.Context, session *auth.Session, logger *slog.Logger) {
	changes, unsubscribe := session.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case identity, ok := <-changes:
			if !ok {
				return
			}
			if identity == nil {
				logger.Info("session signed out")
				continue
			}
			logger.Info("session signed in", "user_id", identity.UserID, "email", identity.Email)
		}
	}
}

func init() {
	shellCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors")
	rootCmd.AddCommand(shellCmd, treeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}
