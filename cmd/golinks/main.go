package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/joshdurbin/golinks/internal/clicks"
	"github.com/joshdurbin/golinks/internal/config"
	"github.com/joshdurbin/golinks/internal/logger"
	"github.com/joshdurbin/golinks/internal/metrics"
	"github.com/joshdurbin/golinks/internal/repository/sqlite"
	"github.com/joshdurbin/golinks/internal/service"
	"github.com/joshdurbin/golinks/internal/transport/cli"
	httpTransport "github.com/joshdurbin/golinks/internal/transport/http"
)

const commandTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:           "golinks [shortcut]",
	Short:         "Memorable go/ links backed by a local SQLite registry",
	Long:          "golinks maps short mnemonic aliases to full URLs. Run with a shortcut to open it, or use a subcommand to manage links and serve redirects over HTTP.",
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runOpen,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the redirect and management HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var addCmd = &cobra.Command{
	Use:   "add [SHORTCUT] [URL]",
	Short: "Add a link",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

var updateCmd = &cobra.Command{
	Use:   "update [SHORTCUT] [URL]",
	Short: "Change the URL and description of a link",
	Args:  cobra.ExactArgs(2),
	RunE:  runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [SHORTCUT]",
	Short: "Delete a link",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var infoCmd = &cobra.Command{
	Use:   "info [SHORTCUT]",
	Short: "Show a link without counting a click",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all links, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show link and click totals",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db-path", "", "Database file path (default $HOME/.golinks/links.db)")
	flags.String("config", "", "YAML config file (default $HOME/.golinks/config.yaml)")
	flags.StringP("port", "p", "", "Server port")
	flags.String("base-url", "", "Base URL used to build short links")
	flags.BoolP("verbose", "v", false, "Enable verbose logging (HTTP requests/responses and error details)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text or json")

	addCmd.Flags().StringP("description", "d", "", "Optional description")
	updateCmd.Flags().StringP("description", "d", "", "Optional description")

	rootCmd.AddCommand(serveCmd, addCmd, updateCmd, deleteCmd, infoCmd, listCmd, statsCmd)
}

// loadConfig resolves the data directory, reads the config sources and
// applies flags that were set explicitly
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dataDir, err := config.DefaultDataDir()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDataDir(dataDir); err != nil {
		return nil, err
	}

	sources := config.DefaultSources(dataDir)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		sources.ConfigFile = path
	}

	cfg, err := config.Load(dataDir, sources)
	if err != nil {
		return nil, err
	}

	overrides := map[string]*string{
		"db-path":    &cfg.Database.Path,
		"port":       &cfg.Server.Port,
		"base-url":   &cfg.Server.BaseURL,
		"log-level":  &cfg.Logging.Level,
		"log-format": &cfg.Logging.Format,
	}
	for name, field := range overrides {
		if cmd.Flags().Changed(name) {
			*field, _ = cmd.Flags().GetString(name)
		}
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Logging.Verbose, _ = cmd.Flags().GetBool("verbose")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(logger.Config{
		Level:  cfg.LogLevel(),
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	appLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer appLog.Close()
	log := appLog.Logger

	log.Info("starting golinks server", "port", cfg.Server.Port, "db_path", cfg.Database.Path)

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	recorder := clicks.NewAsyncRecorder(repo, cfg.Clicks.QueueSize, log, m)
	links := service.NewLinkService(repo, recorder, log, m)
	defer func() {
		if err := links.Close(); err != nil {
			log.Error("error closing link service", "error", err)
		}
	}()

	server := httpTransport.NewServer(links, registry, cfg.Server.Port, cfg.Server.BaseURL, cfg.Logging.Verbose, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		log.Info("received signal, shutting down gracefully", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("error during server shutdown", "error", err)
		}
	}

	log.Info("server stopped")
	return nil
}

// withCommands opens the store for a single CLI invocation, runs fn and
// closes everything again. Clicks are recorded inline.
func withCommands(cmd *cobra.Command, fn func(ctx context.Context, commands *cli.Commands) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	appLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer appLog.Close()
	log := appLog.Logger

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.New(nil)
	links := service.NewLinkService(repo, clicks.NewSyncRecorder(repo, log, m), log, m)
	defer func() {
		if err := links.Close(); err != nil {
			log.Error("error closing link service", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	return fn(ctx, cli.NewCommands(links, cli.BrowserOpener, cmd.OutOrStdout()))
}

func optionalDescription(cmd *cobra.Command) *string {
	if !cmd.Flags().Changed("description") {
		return nil
	}
	description, _ := cmd.Flags().GetString("description")
	return &description
}

func runOpen(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	return withCommands(cmd, func(ctx context.Context, c *cli.Commands) error {
		return c.Open(ctx, args[0])
	})
}

func runAdd(cmd *cobra.Command, args []string) error {
	return withCommands(cmd, func(ctx context.Context, c *cli.Commands) error {
		return c.Add(ctx, args[0], args[1], optionalDescription(cmd))
	})
}

func runUpdate(cmd *cobra.Command, args []string) error {
	return withCommands(cmd, func(ctx context.Context, c *cli.Commands) error {
		return c.Update(ctx, args[0], args[1], optionalDescription(cmd))
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withCommands(cmd, func(ctx context.Context, c *cli.Commands) error {
		return c.Delete(ctx, args[0])
	})
}

func runInfo(cmd *cobra.Command, args []string) error {
	return withCommands(cmd, func(ctx context.Context, c *cli.Commands) error {
		return c.Info(ctx, args[0])
	})
}

func runList(cmd *cobra.Command, args []string) error {
	return withCommands(cmd, func(ctx context.Context, c *cli.Commands) error {
		return c.List(ctx)
	})
}

func runStats(cmd *cobra.Command, args []string) error {
	return withCommands(cmd, func(ctx context.Context, c *cli.Commands) error {
		return c.Stats(ctx)
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}
