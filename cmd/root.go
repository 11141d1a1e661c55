package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	cfgpkg "github.com/KaramelBytes/tablelens/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// HTTP flags (override config if set)
	flagHTTPTimeoutSec int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "tablelens",
	Short: "tablelens: quick exploratory analysis of tabular data",
	Long: `tablelens loads a CSV, JSON or XLSX table from a file or URL, reports missing
values, descriptive statistics and correlations, and renders a correlation
heatmap plus distribution plots for key columns.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tablelens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
}

func loadConfig() {
	setupLogging()
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
}

// ensureConfig loads configuration for callers that run without Execute.
func ensureConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

func setupLogging() {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func httpClient(c *cfgpkg.Global) *http.Client {
	timeout := 60 * time.Second
	if c != nil && c.HTTPTimeoutSec > 0 {
		timeout = time.Duration(c.HTTPTimeoutSec) * time.Second
	}
	return &http.Client{Timeout: timeout}
}
