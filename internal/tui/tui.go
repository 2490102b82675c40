// Package tui is a terminal client for the story engine.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tatianab/story-adventure/internal/models"
)

// Story is the engine surface the UI drives.
type Story interface {
	StartStory(ctx context.Context, theme string) (models.TurnResult, error)
	ContinueStory(ctx context.Context, id, action string) (models.TurnResult, error)
	Themes() []models.Theme
	MaxTurns() int
}

type sessionState int

const (
	statePickTheme sessionState = iota
	stateLoading
	statePlaying
	stateEnded
	stateError
)

type model struct {
	state     sessionState
	story     Story
	themes    []models.Theme
	cursor    int
	turn      models.TurnResult
	textInput textinput.Model
	viewport  viewport.Model
	err       error
	storyLog  string
	width     int
	height    int
	waiting   bool
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	storyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	endingStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFA500")).
			Padding(1, 2)
)

// NewModel returns the initial theme picker.
func NewModel(story Story) model {
	ti := textinput.New()
	ti.Placeholder = "What do you do?"
	ti.CharLimit = 256
	ti.Width = 60

	return model{
		state:     statePickTheme,
		story:     story,
		themes:    story.Themes(),
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

type storyStartedMsg struct {
	result models.TurnResult
}

type turnProcessedMsg struct {
	result models.TurnResult
	err    error
}

type errMsg struct {
	err error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}

		switch m.state {
		case statePickTheme:
			return m.updatePicker(msg)
		case stateEnded:
			if msg.Type == tea.KeyEnter {
				return m.restart(), nil
			}
			return m, nil
		case statePlaying:
			if msg.Type == tea.KeyEnter {
				return m.submit()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = msg.Height - 6
		if m.state == statePlaying {
			m.viewport.SetContent(m.storyLog)
		}

	case storyStartedMsg:
		m.turn = msg.result
		m.state = statePlaying
		m.storyLog = storyStyle.Width(m.logWidth()).Render(msg.result.Narrative) + "\n\n"
		if m.viewport.Width == 0 {
			m.viewport = viewport.New(m.logWidth(), max(m.height-6, 10))
		}
		m.viewport.SetContent(m.storyLog)
		m.textInput.Reset()
		m.textInput.Focus()
		return m, textinput.Blink

	case turnProcessedMsg:
		m.waiting = false
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.turn = msg.result
		m.storyLog += storyStyle.Width(m.logWidth()).Render(msg.result.Narrative) + "\n\n"
		m.viewport.SetContent(m.storyLog)
		m.viewport.GotoBottom()
		if msg.result.IsEnding {
			m.state = stateEnded
			m.textInput.Blur()
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		m.state = stateError
		return m, nil
	}

	if m.state == statePlaying {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.themes)-1 {
			m.cursor++
		}
	case "enter":
		theme := ""
		if m.cursor < len(m.themes) {
			theme = m.themes[m.cursor].ID
		}
		m.state = stateLoading
		return m, m.startStory(theme)
	}
	return m, nil
}

func (m model) submit() (tea.Model, tea.Cmd) {
	action := strings.TrimSpace(m.textInput.Value())
	if action == "" || m.waiting {
		return m, nil
	}
	m.textInput.Reset()

	switch action {
	case "/quit":
		return m, tea.Quit
	case "/restart":
		return m.restart(), nil
	}

	m.waiting = true
	m.storyLog += "\n" + userStyle.Width(m.logWidth()).Render("> "+action) + "\n\n"
	m.viewport.SetContent(m.storyLog)
	m.viewport.GotoBottom()
	return m, m.continueStory(m.turn.StoryID, action)
}

func (m model) restart() model {
	m.state = statePickTheme
	m.storyLog = ""
	m.turn = models.TurnResult{}
	m.waiting = false
	m.textInput.Reset()
	return m
}

func (m model) logWidth() int {
	return int(float64(m.width) * 0.70)
}

func (m model) View() string {
	var s string

	switch m.state {
	case statePickTheme:
		var b strings.Builder
		b.WriteString(titleStyle.Render("Story Adventure") + "\n\nPick a theme:\n\n")
		for i, t := range m.themes {
			line := fmt.Sprintf("  %s (%s)", t.Name, t.ID)
			if i == m.cursor {
				line = selectedStyle.Render("> " + t.Name + " (" + t.ID + ")")
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("↑/↓ to choose, enter to start, esc to quit."))
		s = b.String()

	case stateLoading:
		s = "\n  Writing the opening of your story... please wait.\n"

	case statePlaying:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderPanel(),
		)
		help := helpStyle.Render("Commands: /restart, /quit, or just type what you want to do.")
		if m.waiting {
			help = helpStyle.Render("The story continues...")
		}
		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			"\n"+m.textInput.View(),
			"\n"+help,
		)

	case stateEnded:
		s = lipgloss.JoinVertical(lipgloss.Left,
			m.viewport.View(),
			endingStyle.Render(m.renderEnding()),
			helpStyle.Render("Press enter to play again, esc to quit."),
		)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) renderPanel() string {
	t := m.turn

	turn := titleStyle.Render("TURN") + "\n" +
		fmt.Sprintf("%s of %d", humanize.Ordinal(t.Turn), m.story.MaxTurns()) + "\n\n"

	content := turn +
		section("DIRECTIONS", t.Directions) +
		section("OBJECTS", t.Objects) +
		section("INVENTORY", t.Inventory)
	if t.Hint != "" {
		content += titleStyle.Render("HINT") + "\n" + t.Hint + "\n"
	}

	return panelStyle.Width(int(float64(m.width) * 0.27)).Height(m.viewport.Height).Render(content)
}

func (m model) renderEnding() string {
	reason := "The story reached its end."
	if m.turn.EndReason == "turn_limit" {
		reason = fmt.Sprintf("The story ended after %s turns.", humanize.Comma(int64(m.turn.Turn)))
	}
	inventory := "(empty)"
	if len(m.turn.Inventory) > 0 {
		inventory = strings.Join(m.turn.Inventory, ", ")
	}
	return titleStyle.Render("THE END") + "\n\n" + reason + "\nYou finished carrying: " + inventory
}

func section(title string, items []string) string {
	s := titleStyle.Render(title) + "\n"
	if len(items) == 0 {
		return s + "(none)\n\n"
	}
	for _, item := range items {
		s += "- " + item + "\n"
	}
	return s + "\n"
}

func (m model) startStory(theme string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.story.StartStory(context.Background(), theme)
		if err != nil {
			return errMsg{err}
		}
		return storyStartedMsg{result}
	}
}

func (m model) continueStory(id, action string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.story.ContinueStory(context.Background(), id, action)
		return turnProcessedMsg{result, err}
	}
}

// Run starts the terminal UI and blocks until the player quits.
func Run(story Story) error {
	p := tea.NewProgram(NewModel(story), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
