package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edusurvey/edusurvey/internal/app"
	"github.com/edusurvey/edusurvey/internal/cli/commands"
	"github.com/edusurvey/edusurvey/internal/config"
	"github.com/edusurvey/edusurvey/internal/logger"
	"github.com/edusurvey/edusurvey/internal/notify"
)

var version = "dev" // Will be set during build

var (
	ephemeral bool
	verbose   bool
)

// openApp loads the configuration and assembles the application for one command
func openApp(n notify.Notifier) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Keep stdout clean for command output unless asked otherwise
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.Logging.Format, os.Stderr)

	return app.New(cfg, log, app.Options{Ephemeral: ephemeral, Notifier: n})
}

// NewRootCmd builds the command tree against env
func NewRootCmd(env *commands.Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "edusurvey",
		Short: "EduSurvey - education migration survey client",
		Long: `EduSurvey CLI - Take the education migration survey from your terminal.

Log in once and the session is kept in your OS keychain (or a local SQLite
file) until you log out or it expires.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep the session in memory only, nothing is stored")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs to stderr")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(env.Out, "edusurvey version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd(env))
	rootCmd.AddCommand(commands.NewSignupCmd(env))
	rootCmd.AddCommand(commands.NewLogoutCmd(env))
	rootCmd.AddCommand(commands.NewWhoamiCmd(env))
	rootCmd.AddCommand(commands.NewProfileCmd(env))
	rootCmd.AddCommand(commands.NewPasswordCmd(env))
	rootCmd.AddCommand(commands.NewSurveyCmd(env))
	rootCmd.AddCommand(commands.NewDashboardCmd(env))
	rootCmd.AddCommand(commands.NewAdminCmd(env))
	rootCmd.AddCommand(commands.NewOpenCmd(env))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := commands.NewEnv(openApp)
	if err := NewRootCmd(env).ExecuteContext(ctx); err != nil {
		// Session failures were already printed as notifications
		if !commands.Reported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}
