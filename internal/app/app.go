// Package app assembles the story engine and its collaborators from Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tatianab/story-adventure/internal/config"
	"github.com/tatianab/story-adventure/internal/engine"
	"github.com/tatianab/story-adventure/internal/journal"
	"github.com/tatianab/story-adventure/internal/observability"
	"github.com/tatianab/story-adventure/internal/oracle"
	"github.com/tatianab/story-adventure/internal/retriever"
)

// App is a fully wired engine plus the resources it holds open.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Engine  *engine.Engine
	Journal *journal.DB // nil when journaling is off

	gemini         *genai.Client
	shutdownTraces func(context.Context) error
}

// NewLogger builds the process logger. format is "text" or "json".
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// New connects to the configured providers, indexes the corpus and builds the
// engine. Any failure here means the service cannot start.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	shutdown, err := observability.Setup(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	a.shutdownTraces = shutdown

	if cfg.Provider == config.ProviderGemini || cfg.Embeddings == config.EmbeddingsGemini {
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		a.gemini = client
	}

	corpus, err := retriever.DefaultCorpus()
	if err != nil {
		return nil, err
	}

	var embedder retriever.Embedder = retriever.HashEmbedder{}
	if cfg.Embeddings == config.EmbeddingsGemini {
		embedder = retriever.NewGeminiEmbedder(a.gemini, cfg.EmbeddingModel)
	}
	index, err := retriever.NewIndex(ctx, embedder, corpus)
	if err != nil {
		return nil, fmt.Errorf("build reference index: %w", err)
	}
	logger.Info("reference index ready", "passages", index.Len(), "embeddings", cfg.Embeddings)

	gen := oracle.WithTracing(oracle.WithRetry(a.NewOracle(cfg.Temperature), cfg.OracleMaxTries), nil)

	opts := []engine.Option{
		engine.WithThemes(corpus.Themes),
		engine.WithMaxTurns(cfg.MaxTurns),
		engine.WithReferenceCount(cfg.ReferenceCount),
		engine.WithOracleTimeout(cfg.OracleTimeout),
		engine.WithLogger(logger),
	}
	if cfg.JournalPath != "" {
		j, err := journal.Open(ctx, cfg.JournalPath)
		if err != nil {
			return nil, err
		}
		a.Journal = j
		opts = append(opts, engine.WithJournal(j))
		logger.Info("turn journal enabled", "path", cfg.JournalPath)
	}

	a.Engine = engine.NewEngine(gen, index, opts...)
	ok = true
	return a, nil
}

// NewOracle returns a bare client for the configured provider.
func (a *App) NewOracle(temperature float64) oracle.Oracle {
	if a.Config.Provider == config.ProviderOpenAI {
		return oracle.NewOpenAI(a.Config.OpenAIAPIKey, a.Config.OpenAIModel, temperature)
	}
	return oracle.NewGemini(a.gemini, a.Config.GeminiModel, float32(temperature))
}

// Close releases clients, the journal and flushes traces.
func (a *App) Close() error {
	var errs []error
	if a.Journal != nil {
		errs = append(errs, a.Journal.Close())
	}
	if a.gemini != nil {
		errs = append(errs, a.gemini.Close())
	}
	if a.shutdownTraces != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, a.shutdownTraces(ctx))
	}
	return errors.Join(errs...)
}
