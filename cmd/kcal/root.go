package kcal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
	envPath    string
	logLevel   string
	userFlag   string
	baseURL    string
)

var rootCmd = &cobra.Command{
	Use:   "kcal-sync",
	Short: "kcal-sync keeps a local view of your daily nutrition in sync with the wellness backend",
	Long: "kcal-sync mirrors today's nutrition totals from the wellness backend, applies diary changes " +
		"optimistically, and resolves entries back to the food, drink or caffeine product they came from.",
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", "", "Path to .env file (default next to the config file)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User whose diary is synced")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Wellness backend base URL")
}
