package models

import "time"

// Theme describes a story genre a player can pick when starting a story.
type Theme struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Seed is a short reference narrative tagged with the theme it belongs to.
type Seed struct {
	Theme string `yaml:"theme" json:"theme"`
	Text  string `yaml:"text" json:"text"`
}

// TurnResult is what one generation call yields for the player.
type TurnResult struct {
	StoryID    string   `yaml:"story_id" json:"story_id"`
	Turn       int      `yaml:"turn" json:"turn"`
	Narrative  string   `yaml:"narrative" json:"narrative"`
	Directions []string `yaml:"directions" json:"directions"` // e.g. "north", "left"
	Objects    []string `yaml:"objects" json:"objects"`       // things the player can inspect
	Hint       string   `yaml:"hint" json:"hint"`
	Inventory  []string `yaml:"inventory" json:"inventory"`
	IsEnding   bool     `yaml:"is_ending" json:"is_ending"`
	EndReason  string   `yaml:"end_reason,omitempty" json:"end_reason,omitempty"` // "turn_limit" or "keyword"
}

// WithoutChoices returns a copy of r with directions, objects and hint
// cleared. Ending turns never offer further choices.
func (r TurnResult) WithoutChoices() TurnResult {
	r.Directions = []string{}
	r.Objects = []string{}
	r.Hint = ""
	return r
}

// Normalize replaces nil slices with empty ones so JSON clients always see arrays.
func (r TurnResult) Normalize() TurnResult {
	if r.Directions == nil {
		r.Directions = []string{}
	}
	if r.Objects == nil {
		r.Objects = []string{}
	}
	if r.Inventory == nil {
		r.Inventory = []string{}
	}
	return r
}

// TurnRecord is one journal row: the full exchange behind a TurnResult.
type TurnRecord struct {
	StoryID   string        `yaml:"story_id" json:"story_id"`
	Turn      int           `yaml:"turn" json:"turn"`
	Theme     string        `yaml:"theme" json:"theme"`
	Action    string        `yaml:"action" json:"action"` // empty on the opening turn
	Prompt    string        `yaml:"prompt" json:"prompt"`
	Response  string        `yaml:"response" json:"response"`
	Narrative string        `yaml:"narrative" json:"narrative"`
	Inventory []string      `yaml:"inventory" json:"inventory"`
	IsEnding  bool          `yaml:"is_ending" json:"is_ending"`
	EndReason string        `yaml:"end_reason,omitempty" json:"end_reason,omitempty"`
	Duration  time.Duration `yaml:"duration" json:"duration"`
	CreatedAt time.Time     `yaml:"created_at" json:"created_at"`
}
