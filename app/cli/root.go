package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bookborrow/config"
)

var (
	cfg *config.App
	log *slog.Logger

	flagConfig  string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "bookborrow",
	Short: "Library lending backend: catalog, borrows, payments and the overdue sweep",
	Long: `bookborrow runs the lending API and its daily overdue sweep.

Settings come from the environment (DATABASE_URL, JWT_SECRET, XENDIT_*,
TELEGRAM_*, SWEEP_HOUR, ...), optionally layered over a config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (env vars take precedence)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if flagNoColor {
			color.NoColor = true
		}
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		log = newLogger(cfg.LogLevel)
		slog.SetDefault(log)
		return nil
	}

	rootCmd.AddCommand(serveCmd, sweepCmd, migrateCmd, tokenCmd)
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lv}))
}
