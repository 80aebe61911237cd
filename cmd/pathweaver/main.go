package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pathweaver/internal/catalog"
	"pathweaver/internal/config"
	"pathweaver/internal/embedding"
	"pathweaver/internal/engine"
	"pathweaver/internal/pathway"
	"pathweaver/internal/summarize"
	"pathweaver/internal/translate"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pathweaver",
	Short: "pathweaver - degree pathway completion engine",
	Long: `pathweaver matches templated multi-year degree plans against a live
course catalog. Each requirement slot is translated into a structured
query, searched concurrently, and resolved to the best catalog match
with ranked alternates; requirements with no match become explicit
placeholders rather than silent gaps.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}

		zcfg := zap.NewProductionConfig()
		if cfg.Logging.Format == "text" {
			zcfg = zap.NewDevelopmentConfig()
		}
		if level, perr := zapcore.ParseLevel(cfg.Logging.Level); perr == nil {
			zcfg.Level = zap.NewAtomicLevelAt(level)
		}
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		if cfg.Logging.File != "" {
			zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.Logging.File)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "pathweaver.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// =============================================================================
// WIRING
// =============================================================================

// stack bundles the assembled collaborators and their closers.
type stack struct {
	index  *catalog.Index
	store  *pathway.Store
	engine *engine.Engine
}

func (s *stack) Close() {
	if s.index != nil {
		_ = s.index.Close()
	}
	if s.store != nil {
		_ = s.store.Close()
	}
}

func newEmbedder() (embedding.Engine, error) {
	ecfg := embedding.DefaultConfig()
	ecfg.Provider = cfg.Embedding.Provider
	switch cfg.Embedding.Provider {
	case "ollama":
		if cfg.Embedding.BaseURL != "" {
			ecfg.OllamaEndpoint = cfg.Embedding.BaseURL
		}
		if cfg.Embedding.Model != "" {
			ecfg.OllamaModel = cfg.Embedding.Model
		}
	case "genai":
		ecfg.GenAIAPIKey = cfg.Embedding.APIKey
		if cfg.Embedding.Model != "" {
			ecfg.GenAIModel = cfg.Embedding.Model
		}
	}
	return embedding.NewEngine(ecfg)
}

// newStack assembles the full pipeline from configuration.
func newStack() (*stack, error) {
	embedder, err := newEmbedder()
	if err != nil {
		return nil, fmt.Errorf("embedding engine: %w", err)
	}

	index, err := catalog.Open(cfg.Storage.CatalogDB, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("catalog index: %w", err)
	}

	store, err := pathway.Open(cfg.Storage.PathwayDB, embedder, logger)
	if err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("pathway store: %w", err)
	}

	translator, err := translate.New(translate.Options{
		Provider:  cfg.Translator.Provider,
		APIKey:    cfg.Translator.APIKey,
		Model:     cfg.Translator.Model,
		BaseURL:   cfg.Translator.BaseURL,
		CacheSize: cfg.Translator.CacheSize,
	})
	if err != nil {
		_ = index.Close()
		_ = store.Close()
		return nil, fmt.Errorf("translator: %w", err)
	}

	summarizer, err := summarize.New(summarize.Options{
		Provider: cfg.Summarizer.Provider,
		APIKey:   cfg.Summarizer.APIKey,
		Model:    cfg.Summarizer.Model,
		BaseURL:  cfg.Summarizer.BaseURL,
	})
	if err != nil {
		_ = index.Close()
		_ = store.Close()
		return nil, fmt.Errorf("summarizer: %w", err)
	}

	eng := engine.New(index, store, translator, summarizer, logger, engine.Options{
		SimilarLimit:          cfg.Engine.SimilarLimit,
		ResultLimit:           cfg.Engine.ResultLimit,
		FanOut:                cfg.Engine.FanOut,
		SummarizePlaceholders: cfg.Engine.SummarizePlaceholders,
	})

	return &stack{index: index, store: store, engine: eng}, nil
}
