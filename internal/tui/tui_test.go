package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/story-adventure/internal/models"
)

type fakeStory struct {
	started []string
	actions []string
	next    models.TurnResult
	err     error
}

func (f *fakeStory) StartStory(_ context.Context, theme string) (models.TurnResult, error) {
	f.started = append(f.started, theme)
	return models.TurnResult{StoryID: "s1", Turn: 1, Narrative: "เริ่มต้น", Directions: []string{"เหนือ"}}, f.err
}

func (f *fakeStory) ContinueStory(_ context.Context, id, action string) (models.TurnResult, error) {
	f.actions = append(f.actions, id+":"+action)
	return f.next, f.err
}

func (f *fakeStory) Themes() []models.Theme {
	return []models.Theme{{ID: "adventure", Name: "ผจญภัย"}, {ID: "mystery", Name: "ลึกลับ"}}
}

func (f *fakeStory) MaxTurns() int { return 15 }

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func typeText(t *testing.T, m model, s string) model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func started(t *testing.T, story *fakeStory) model {
	t.Helper()
	m := NewModel(story)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateLoading || cmd == nil {
		t.Fatalf("state = %v, want loading with a command", m.state)
	}
	m, _ = update(t, m, cmd())
	if m.state != statePlaying {
		t.Fatalf("state = %v, want playing", m.state)
	}
	return m
}

func TestPickerMovesAndStartsChosenTheme(t *testing.T) {
	story := &fakeStory{}
	m := NewModel(story)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())
	if len(story.started) != 1 || story.started[0] != "mystery" {
		t.Errorf("started = %v, want [mystery]", story.started)
	}
	if !strings.Contains(m.storyLog, "เริ่มต้น") {
		t.Errorf("log missing opening narrative: %q", m.storyLog)
	}
}

func TestActionContinuesStory(t *testing.T) {
	story := &fakeStory{next: models.TurnResult{StoryID: "s1", Turn: 2, Narrative: "เดินต่อไป"}}
	m := started(t, story)

	m = typeText(t, m, "เปิดประตู")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.waiting || cmd == nil {
		t.Fatal("expected a pending turn")
	}
	m, _ = update(t, m, cmd())
	if m.waiting {
		t.Error("still waiting after turn")
	}
	if len(story.actions) != 1 || story.actions[0] != "s1:เปิดประตู" {
		t.Errorf("actions = %v", story.actions)
	}
	if m.turn.Turn != 2 || m.state != statePlaying {
		t.Errorf("turn = %d state = %v", m.turn.Turn, m.state)
	}
	if !strings.Contains(m.View(), "2nd of 15") {
		t.Error("panel does not show the turn counter")
	}
}

func TestEmptyActionIgnored(t *testing.T) {
	story := &fakeStory{}
	m := started(t, story)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.waiting {
		t.Error("empty action submitted")
	}
	if len(story.actions) != 0 {
		t.Errorf("actions = %v", story.actions)
	}
}

func TestEndingShowsEndScreenAndRestarts(t *testing.T) {
	story := &fakeStory{next: models.TurnResult{
		StoryID: "s1", Turn: 15, Narrative: "จบแล้ว", IsEnding: true, EndReason: "turn_limit",
		Inventory: []string{"กุญแจ"},
	}}
	m := started(t, story)
	m = typeText(t, m, "รอ")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())

	if m.state != stateEnded {
		t.Fatalf("state = %v, want ended", m.state)
	}
	view := m.View()
	if !strings.Contains(view, "THE END") || !strings.Contains(view, "กุญแจ") {
		t.Errorf("ending view = %q", view)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != statePickTheme || m.storyLog != "" {
		t.Errorf("restart left state = %v log = %q", m.state, m.storyLog)
	}
}

func TestErrorState(t *testing.T) {
	story := &fakeStory{err: errors.New("model offline")}
	m := NewModel(story)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())
	if m.state != stateError {
		t.Fatalf("state = %v, want error", m.state)
	}
	if !strings.Contains(m.View(), "model offline") {
		t.Error("error not shown")
	}
}
