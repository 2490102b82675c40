// Package mcp exposes the story engine as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tatianab/story-adventure/internal/models"
)

const (
	serverName    = "Story Adventure MCP"
	serverVersion = "0.1.0"

	// toolTimeout bounds a single tool call. It covers retries inside the
	// oracle, so it is longer than the engine's own generation timeout.
	toolTimeout = 3 * time.Minute
)

// Story is the part of the engine the tools need.
type Story interface {
	StartStory(ctx context.Context, theme string) (models.TurnResult, error)
	ContinueStory(ctx context.Context, id, action string) (models.TurnResult, error)
	Themes() []models.Theme
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New registers the story tools on a fresh MCP server.
func New(story Story) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(mcpServer, StartStoryTool(), StartStoryHandler(story))
	mcp.AddTool(mcpServer, ContinueStoryTool(), ContinueStoryHandler(story))
	mcp.AddTool(mcpServer, ListThemesTool(), ListThemesHandler(story))

	return &Server{mcpServer: mcpServer}
}

// Run serves on transport until ctx ends.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	if err := s.mcpServer.Run(ctx, transport); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve mcp: %w", err)
	}
	return nil
}

// RunStdio serves over standard input and output.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// StartStoryInput represents the MCP tool input for starting a story.
type StartStoryInput struct {
	Theme string `json:"theme,omitempty" jsonschema:"story theme id such as mystery or fantasy; defaults to adventure"`
}

// TurnOutput represents one generated turn.
type TurnOutput struct {
	StoryID    string   `json:"story_id" jsonschema:"story identifier used by continue_story"`
	Turn       int      `json:"turn" jsonschema:"turn number, 1 for the opening"`
	Narrative  string   `json:"narrative" jsonschema:"story text for this turn"`
	Directions []string `json:"directions" jsonschema:"suggested directions; empty once the story ends"`
	Objects    []string `json:"objects" jsonschema:"interactable objects; empty once the story ends"`
	Hint       string   `json:"hint" jsonschema:"hint for the player; empty once the story ends"`
	Inventory  []string `json:"inventory" jsonschema:"items the player carries"`
	IsEnding   bool     `json:"is_ending" jsonschema:"true when the story has ended"`
	EndReason  string   `json:"end_reason,omitempty" jsonschema:"turn_limit or keyword when the story has ended"`
}

func turnOutput(r models.TurnResult) TurnOutput {
	r = r.Normalize()
	return TurnOutput{
		StoryID:    r.StoryID,
		Turn:       r.Turn,
		Narrative:  r.Narrative,
		Directions: r.Directions,
		Objects:    r.Objects,
		Hint:       r.Hint,
		Inventory:  r.Inventory,
		IsEnding:   r.IsEnding,
		EndReason:  r.EndReason,
	}
}

// StartStoryTool defines the MCP tool schema for starting a story.
func StartStoryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "start_story",
		Description: "Starts a new interactive story and returns its opening turn",
	}
}

// StartStoryHandler executes a start story request.
func StartStoryHandler(story Story) mcp.ToolHandlerFor[StartStoryInput, TurnOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input StartStoryInput) (*mcp.CallToolResult, TurnOutput, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		result, err := story.StartStory(runCtx, input.Theme)
		if err != nil {
			return nil, TurnOutput{}, fmt.Errorf("start story failed: %w", err)
		}
		return nil, turnOutput(result), nil
	}
}

// ContinueStoryInput represents the MCP tool input for a player action.
type ContinueStoryInput struct {
	StoryID string `json:"story_id" jsonschema:"story identifier returned by start_story"`
	Action  string `json:"action" jsonschema:"what the player does next"`
}

// ContinueStoryTool defines the MCP tool schema for continuing a story.
func ContinueStoryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "continue_story",
		Description: "Applies a player action to a story and returns the next turn",
	}
}

// ContinueStoryHandler executes a continue story request.
func ContinueStoryHandler(story Story) mcp.ToolHandlerFor[ContinueStoryInput, TurnOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ContinueStoryInput) (*mcp.CallToolResult, TurnOutput, error) {
		if input.StoryID == "" {
			return nil, TurnOutput{}, errors.New("story_id is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		result, err := story.ContinueStory(runCtx, input.StoryID, input.Action)
		if err != nil {
			return nil, TurnOutput{}, fmt.Errorf("continue story failed: %w", err)
		}
		return nil, turnOutput(result), nil
	}
}

// ListThemesInput is empty; list_themes takes no arguments.
type ListThemesInput struct{}

// ThemeOutput describes one theme.
type ThemeOutput struct {
	ID          string `json:"id" jsonschema:"theme id to pass to start_story"`
	Name        string `json:"name" jsonschema:"display name"`
	Description string `json:"description,omitempty" jsonschema:"short description of the theme"`
}

// ListThemesResult lists the available themes.
type ListThemesResult struct {
	Themes []ThemeOutput `json:"themes" jsonschema:"available story themes"`
}

// ListThemesTool defines the MCP tool schema for listing themes.
func ListThemesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_themes",
		Description: "Lists the story themes that start_story accepts",
	}
}

// ListThemesHandler executes a list themes request.
func ListThemesHandler(story Story) mcp.ToolHandlerFor[ListThemesInput, ListThemesResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ ListThemesInput) (*mcp.CallToolResult, ListThemesResult, error) {
		themes := story.Themes()
		out := ListThemesResult{Themes: make([]ThemeOutput, 0, len(themes))}
		for _, t := range themes {
			out.Themes = append(out.Themes, ThemeOutput{ID: t.ID, Name: t.Name, Description: t.Description})
		}
		return nil, out, nil
	}
}
