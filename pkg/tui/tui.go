// Package tui provides a terminal user interface for mess-o-midi
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caseymeehan/mess-o-midi/pkg/generator"
	"github.com/caseymeehan/mess-o-midi/pkg/midifile"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Warm studio palette
var (
	amber     = lipgloss.Color("#FFB000")
	coral     = lipgloss.Color("#FF6F59")
	cream     = lipgloss.Color("#F4EBD0")
	charcoal  = lipgloss.Color("#2B2B2B")
	mutedGray = lipgloss.Color("#777777")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(amber).
			Background(charcoal).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(cream).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(coral).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateWorking
	StateResult
)

type action int

const (
	actionGenerate action = iota
	actionInspect
	actionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Kind        generator.Kind
	action      action
}

var menuItems = []MenuItem{
	{Title: "Bass", Description: "One bass line drawn from the scale", Kind: generator.KindBass, action: actionGenerate},
	{Title: "Complex Chords", Description: "Bass, roots and three stacked harmony layers", Kind: generator.KindComplexChords, action: actionGenerate},
	{Title: "Simple Chords", Description: "Roots with two fitted thirds and the octave", Kind: generator.KindSimpleChords, action: actionGenerate},
	{Title: "Inspect MIDI file", Description: "Decode a .mid file and show its notes", action: actionInspect},
	{Title: "Exit", Description: "Exit the application", action: actionExit},
}

// Model represents the TUI model
type Model struct {
	svc          *generator.Service
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selected     MenuItem
	selectedFile string
	result       string
	err          error
	width        int
	height       int
}

// workDoneMsg carries the outcome of a generation or an inspection
type workDoneMsg struct {
	summary string
	err     error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model generating through svc
func New(svc *generator.Service) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{midifile.Extension, ".midi"}
	fp.CurrentDirectory = svc.OutputDir()
	if _, err := os.Stat(fp.CurrentDirectory); err != nil {
		fp.CurrentDirectory, _ = os.Getwd()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(amber)

	return Model{
		svc:        svc,
		state:      StateMenu,
		filePicker: fp,
		spinner:    s,
	}
}

// State returns the screen the model is showing
func (m Model) State() State {
	return m.state
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs every message while it is open
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, inspect(path))
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case workDoneMsg:
		m.state = StateResult
		m.result = msg.summary
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		m.selected = menuItems[m.menuIndex]
		switch m.selected.action {
		case actionExit:
			return m, tea.Quit
		case actionInspect:
			m.state = StateFilePicker
			return m, m.filePicker.Init()
		default:
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, generate(m.svc, m.selected.Kind))
		}
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.result = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func generate(svc *generator.Service, kind generator.Kind) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.Generate(kind, generator.Request{})
		if err != nil {
			return workDoneMsg{err: err}
		}
		var s strings.Builder
		fmt.Fprintf(&s, "File:   %s\n", res.Path)
		fmt.Fprintf(&s, "Seed:   %d\n", res.Seed)
		fmt.Fprintf(&s, "Voices: %d\n", len(res.Voices))
		fmt.Fprintf(&s, "Events: %d", res.Events)
		return workDoneMsg{summary: s.String()}
	}
}

func inspect(path string) tea.Cmd {
	return func() tea.Msg {
		score, err := midifile.DecodeFile(path)
		if err != nil {
			return workDoneMsg{err: err}
		}
		return workDoneMsg{summary: Summary(score)}
	}
}

// Summary renders a decoded file as a few lines of text
func Summary(score *midifile.Score) string {
	var s strings.Builder
	fmt.Fprintf(&s, "Resolution: %d ticks/quarter\n", score.Resolution)
	fmt.Fprintf(&s, "Tempo:      %.1f BPM\n", score.Tempo)
	fmt.Fprintf(&s, "Meter:      %d/%d\n", score.Numerator, score.Denominator)
	fmt.Fprintf(&s, "Notes:      %d (%d events)\n", len(score.Notes), len(score.Events))
	fmt.Fprintf(&s, "Length:     %d ticks", score.EndTick)

	pitches, _, _ := score.PitchData()
	if len(pitches) > 0 {
		const preview = 16
		shown := pitches
		if len(shown) > preview {
			shown = shown[:preview]
		}
		fmt.Fprintf(&s, "\nPitches:    %v", shown)
		if len(pitches) > preview {
			s.WriteString(" ...")
		}
	}
	return s.String()
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateWorking:
		s.WriteString(m.viewWorking())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" WHAT SHALL WE MAKE? "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(coral).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewWorking() string {
	var s strings.Builder

	if m.selected.action == actionInspect {
		s.WriteString(titleStyle.Render(" READING "))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("%s Decoding %s...", m.spinner.View(), filepath.Base(m.selectedFile)))
	} else {
		s.WriteString(titleStyle.Render(" GENERATING "))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("%s Writing %s...", m.spinner.View(), strings.ToLower(m.selected.Title)))
		s.WriteString(statusStyle.Render("\n  into " + m.svc.OutputDir()))
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s failed: %s", m.selected.Title, m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" DONE "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ " + m.selected.Title))
		s.WriteString("\n\n")
		s.WriteString(m.result)
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   __  __                        __  __ _     _ _
  |  \/  | ___  ___ ___    ___  |  \/  (_) __| (_)
  | |\/| |/ _ \/ __/ __|  / _ \ | |\/| | |/ _' | |
  | |  | |  __/\__ \__ \ | (_) || |  | | | (_| | |
  |_|  |_|\___||___/___/  \___/ |_|  |_|_|\__,_|_|
`
	return lipgloss.NewStyle().Foreground(amber).Render(logo)
}

// Run starts the TUI application
func Run(svc *generator.Service) error {
	p := tea.NewProgram(New(svc), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
