package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/observability"
)

// cli holds the state shared by all subcommands.
type cli struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *observability.Logger
}

func main() {
	c := &cli{}
	if err := c.rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "remotebalkan",
		Short:         "Collect remote and hybrid job postings and load them into the jobs database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "configs/config.yaml", "path to the config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.runCommand(),
		c.loadCommand(),
		c.sourcesCommand(),
		c.checkCommand(),
		c.browseCommand(),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Observability.LogLevel
	if c.verbose {
		level = "debug"
	}
	logger, err := observability.NewLogger(observability.Options{
		LogPath:    cfg.Observability.LogPath,
		LogLevel:   level,
		MaxSizeMB:  cfg.Observability.MaxSizeMB,
		MaxBackups: cfg.Observability.MaxBackups,
		MaxAgeDays: cfg.Observability.MaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	c.cfg = cfg
	c.logger = logger
	return nil
}

func (c *cli) loadSources() (*config.SourceFile, error) {
	sf, err := config.LoadSources(c.cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	return sf, nil
}
