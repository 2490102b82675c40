// Package engine runs turn-based stories: it builds prompts from a session's
// recent history and inventory, asks the model for the next beat, parses the
// answer and decides when the story is over.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tatianab/story-adventure/internal/models"
	"github.com/tatianab/story-adventure/internal/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Defaults for a new Engine.
const (
	DefaultMaxTurns       = 15
	DefaultReferenceCount = 2
	DefaultOracleTimeout  = 60 * time.Second
	DefaultSearchTimeout  = 10 * time.Second
	DefaultTheme          = "adventure"
)

var (
	// ErrSessionNotFound is returned when a story id is unknown.
	ErrSessionNotFound = session.ErrNotFound
	// ErrGenerationFailed wraps any failure or timeout of the model call.
	ErrGenerationFailed = errors.New("story generation failed")
)

// Oracle generates text for a prompt.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Retriever returns up to k reference passages for query, best first.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// Journal records every generated turn.
type Journal interface {
	RecordTurn(ctx context.Context, rec models.TurnRecord) error
}

// Engine owns the session store and drives stories through the oracle.
type Engine struct {
	oracle    Oracle
	retriever Retriever
	store     *session.Store
	themes    []models.Theme
	journal   Journal

	maxTurns       int
	referenceCount int
	oracleTimeout  time.Duration
	searchTimeout  time.Duration

	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore replaces the default in-memory store.
func WithStore(store *session.Store) Option {
	return func(e *Engine) { e.store = store }
}

// WithThemes sets the catalog returned by Themes.
func WithThemes(themes []models.Theme) Option {
	return func(e *Engine) { e.themes = append([]models.Theme(nil), themes...) }
}

// WithJournal records every turn to j. Journal failures are logged only.
func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithMaxTurns sets the turn at which a story is forced to end.
func WithMaxTurns(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTurns = n
		}
	}
}

// WithReferenceCount sets how many corpus passages ground each prompt.
func WithReferenceCount(k int) Option {
	return func(e *Engine) {
		if k >= 0 {
			e.referenceCount = k
		}
	}
}

// WithOracleTimeout bounds each model call.
func WithOracleTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.oracleTimeout = d
		}
	}
}

// WithSearchTimeout bounds each reference search.
func WithSearchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.searchTimeout = d
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracer sets the tracer for story spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// NewEngine returns an engine backed by oracle and retriever.
func NewEngine(oracle Oracle, retriever Retriever, opts ...Option) *Engine {
	e := &Engine{
		oracle:         oracle,
		retriever:      retriever,
		maxTurns:       DefaultMaxTurns,
		referenceCount: DefaultReferenceCount,
		oracleTimeout:  DefaultOracleTimeout,
		searchTimeout:  DefaultSearchTimeout,
		logger:         slog.Default(),
		tracer:         otel.Tracer("story-adventure/engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = session.NewStore()
	}
	return e
}

// MaxTurns reports the forced-ending turn.
func (e *Engine) MaxTurns() int { return e.maxTurns }

// Themes returns the theme catalog.
func (e *Engine) Themes() []models.Theme {
	return append([]models.Theme(nil), e.themes...)
}

// Session returns a snapshot of a story's state.
func (e *Engine) Session(id string) (session.Session, error) {
	return e.store.Get(id)
}

// StartStory creates a session for theme and generates its opening turn. The
// opening turn never ends the story. If generation fails no session is kept.
func (e *Engine) StartStory(ctx context.Context, theme string) (models.TurnResult, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = DefaultTheme
	}

	ctx, span := e.tracer.Start(ctx, "story.start", trace.WithAttributes(
		attribute.String("story.theme", theme),
	))
	defer span.End()

	sess := e.store.Create(theme)
	span.SetAttributes(attribute.String("story.id", sess.ID))

	var (
		result models.TurnResult
		rec    models.TurnRecord
	)
	err := e.store.Update(sess.ID, func(s *session.Session) error {
		prompt, err := e.buildPrompt(ctx, s.Theme, OpeningContext, nil)
		if err != nil {
			return err
		}
		response, elapsed, err := e.generate(ctx, prompt)
		if err != nil {
			return err
		}
		parsed := ParseTurn(response)

		s.Turn = 1
		s.History.Add(OpeningContext, parsed.Narrative)
		s.Inventory = append([]string{}, parsed.Inventory...)

		result = models.TurnResult{
			StoryID:    s.ID,
			Turn:       s.Turn,
			Narrative:  parsed.Narrative,
			Directions: parsed.Directions,
			Objects:    parsed.Objects,
			Hint:       parsed.Hint,
			Inventory:  append([]string{}, s.Inventory...),
		}
		rec = e.newRecord(s, "", prompt, response, result, elapsed)
		return nil
	})
	if err != nil {
		e.store.Discard(sess.ID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error("failed to start story", "theme", theme, "error", err)
		return models.TurnResult{}, err
	}

	e.logger.Info("story started", "story_id", shortID(sess.ID), "turn", result.Turn, "theme", theme)
	e.record(ctx, rec)
	return result.Normalize(), nil
}

// ContinueStory applies a player action to story id and generates the next
// turn. Calls for the same id are serialized. On failure the session is left
// unchanged.
func (e *Engine) ContinueStory(ctx context.Context, id, action string) (models.TurnResult, error) {
	ctx, span := e.tracer.Start(ctx, "story.continue", trace.WithAttributes(
		attribute.String("story.id", id),
	))
	defer span.End()

	var (
		result models.TurnResult
		rec    models.TurnRecord
		theme  string
	)
	err := e.store.Update(id, func(s *session.Session) error {
		theme = s.Theme
		turn := s.Turn + 1
		atLimit := turn >= e.maxTurns
		if atLimit {
			e.logger.Info("turn limit reached, requesting ending", "story_id", shortID(s.ID), "turn", turn)
		}

		storyCtx := ContinuationContext(s.History.Context(), action, atLimit)
		prompt, err := e.buildPrompt(ctx, s.Theme, storyCtx, s.Inventory)
		if err != nil {
			return err
		}
		response, elapsed, err := e.generate(ctx, prompt)
		if err != nil {
			return err
		}
		parsed := ParseTurn(response)

		s.Turn = turn
		if len(parsed.Inventory) > 0 {
			s.Inventory = append([]string{}, parsed.Inventory...)
		}
		s.History.Add(action, parsed.Narrative)

		result = models.TurnResult{
			StoryID:    s.ID,
			Turn:       s.Turn,
			Narrative:  parsed.Narrative,
			Directions: parsed.Directions,
			Objects:    parsed.Objects,
			Hint:       parsed.Hint,
			Inventory:  append([]string{}, s.Inventory...),
		}
		if ending := DecideEnding(turn, e.maxTurns, parsed.Narrative); ending.Ended() {
			result = result.WithoutChoices()
			result.IsEnding = true
			result.EndReason = ending.String()
		}
		rec = e.newRecord(s, action, prompt, response, result, elapsed)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !errors.Is(err, ErrSessionNotFound) {
			e.logger.Error("failed to continue story", "story_id", shortID(id), "error", err)
		}
		return models.TurnResult{}, err
	}

	span.SetAttributes(
		attribute.Int("story.turn", result.Turn),
		attribute.Bool("story.ending", result.IsEnding),
	)
	e.logger.Info("story turn", "story_id", shortID(id), "turn", result.Turn, "theme", theme, "action", action)
	if result.IsEnding {
		e.logger.Info("story ended", "story_id", shortID(id), "turn", result.Turn, "end_reason", result.EndReason)
	}
	e.record(ctx, rec)
	return result.Normalize(), nil
}

// buildPrompt retrieves references for theme and renders the prompt. A
// retrieval failure is logged and the prompt goes out without references.
func (e *Engine) buildPrompt(ctx context.Context, theme, storyCtx string, inventory []string) (string, error) {
	var references string
	if e.referenceCount > 0 && e.retriever != nil {
		searchCtx, cancel := context.WithTimeout(ctx, e.searchTimeout)
		passages, err := e.retriever.Search(searchCtx, e.searchQuery(theme), e.referenceCount)
		cancel()
		if err != nil {
			e.logger.Warn("reference retrieval failed", "theme", theme, "error", err)
		}
		references = strings.Join(passages, "\n")
	}

	return BuildPrompt(PromptInput{
		Theme:      theme,
		Context:    storyCtx,
		References: references,
		Inventory:  InventoryText(inventory),
	})
}

// searchQuery describes theme in the corpus language: the catalog name and
// description for a known id, the raw theme otherwise.
func (e *Engine) searchQuery(theme string) string {
	for _, t := range e.themes {
		if t.ID == theme {
			return strings.TrimSpace(t.Name + " " + t.Description)
		}
	}
	return theme
}

func (e *Engine) generate(ctx context.Context, prompt string) (string, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, e.oracleTimeout)
	defer cancel()

	start := time.Now()
	response, err := e.oracle.Generate(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		return "", elapsed, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return response, elapsed, nil
}

func (e *Engine) newRecord(s *session.Session, action, prompt, response string, result models.TurnResult, elapsed time.Duration) models.TurnRecord {
	return models.TurnRecord{
		StoryID:   s.ID,
		Turn:      result.Turn,
		Theme:     s.Theme,
		Action:    action,
		Prompt:    prompt,
		Response:  response,
		Narrative: result.Narrative,
		Inventory: append([]string{}, result.Inventory...),
		IsEnding:  result.IsEnding,
		EndReason: result.EndReason,
		Duration:  elapsed,
		CreatedAt: time.Now(),
	}
}

func (e *Engine) record(ctx context.Context, rec models.TurnRecord) {
	if e.journal == nil {
		return
	}
	if err := e.journal.RecordTurn(context.WithoutCancel(ctx), rec); err != nil {
		e.logger.Warn("failed to journal turn", "story_id", shortID(rec.StoryID), "turn", rec.Turn, "error", err)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
