package cmd

import (
	"fmt"
	"os"

	"github.com/agentic-research/runekit/internal/config"
	"github.com/agentic-research/runekit/internal/content"
	"github.com/agentic-research/runekit/internal/layout"
	"github.com/agentic-research/runekit/internal/runes"
	"github.com/agentic-research/runekit/internal/transform"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool

	logger = zap.NewNop()
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.FileName, "Path to site configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log resolution and build details to stderr")
}

var rootCmd = &cobra.Command{
	Use:           "runekit",
	Short:         "runekit: rune transform and layout composition",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			logger = zap.NewNop()
			return nil
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file; an explicitly named file must
// exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flags().Changed("config") {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return config.Load(configPath)
}

// pipeline is what every command needs to compose pages.
type pipeline struct {
	cfg      *config.Config
	tree     *content.Tree
	registry *transform.Registry
	resolver *layout.Resolver
	routes   *layout.RouteTable
}

func newPipeline(cfg *config.Config) (*pipeline, error) {
	tree, err := content.Open(cfg.Content)
	if err != nil {
		return nil, err
	}
	registry := runes.NewRegistry()
	resolver, err := layout.NewResolver(tree, registry,
		layout.WithLogger(logger.Named("layout")),
		layout.WithCacheSize(cfg.CacheSize))
	if err != nil {
		return nil, err
	}
	routes, err := cfg.RouteTable()
	if err != nil {
		return nil, err
	}
	return &pipeline{cfg: cfg, tree: tree, registry: registry, resolver: resolver, routes: routes}, nil
}
