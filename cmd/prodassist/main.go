package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"prodassist/internal/analyzer"
	"prodassist/internal/config"
	"prodassist/internal/llm"
	"prodassist/internal/logging"
	"prodassist/internal/repo"
	"prodassist/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "prodassist",
	Short: "prodassist - AI-assisted product analysis for codebases",
	Long: `prodassist helps product managers understand codebases in business terms.

It routes each request to one of three stages: feature analysis (how an
existing feature works), feasibility analysis (whether a new requirement is
viable), or conversational follow-up. A read-only code analyzer supplies the
technical ground truth; responses are written for product managers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if err := logging.Initialize(cfg.Logging.Dir, cfg.Logging.Level); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// app bundles the wired collaborators a command needs.
type app struct {
	store    *store.Store
	llm      llm.Client
	analyzer analyzer.Analyzer
	provider *repo.Provider
}

// newApp wires the store, the Gemini client, the analyzer, and the repository
// provider from configuration.
func newApp(ctx context.Context) (*app, error) {
	st, err := store.New(cfg.Database.Path, cfg.History.MaxMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
		APIKey:        cfg.LLM.APIKey,
		Model:         cfg.LLM.Model,
		FallbackModel: cfg.LLM.FallbackModel,
		Timeout:       cfg.GetLLMTimeout(),
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	runner := analyzer.NewRunner(analyzer.Config{
		Command:       cfg.Analyzer.Command,
		Model:         cfg.Analyzer.Model,
		FallbackModel: cfg.Analyzer.FallbackModel,
		Sandbox:       cfg.Analyzer.Sandbox,
		Timeout:       cfg.GetAnalyzerTimeout(),
	})

	return &app{
		store:    st,
		llm:      client,
		analyzer: runner,
		provider: repo.NewProvider(cfg.Git.BasePath, cfg.Git.Branch),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("failed to close store", zap.Error(err))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file path")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(summarizeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
