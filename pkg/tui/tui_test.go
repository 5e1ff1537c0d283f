package tui

import (
	"strings"
	"testing"

	"github.com/caseymeehan/mess-o-midi/pkg/config"
	"github.com/caseymeehan/mess-o-midi/pkg/generator"
	"github.com/caseymeehan/mess-o-midi/pkg/midifile"
	tea "github.com/charmbracelet/bubbletea"
)

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

var (
	down  = tea.KeyMsg{Type: tea.KeyDown}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func newModel(t *testing.T) Model {
	t.Helper()
	return New(generator.NewService(t.TempDir(), config.DefaultDefaults()))
}

func TestMenuNavigation(t *testing.T) {
	m := newModel(t)

	m, _ = press(t, m, down, down, down, down, down, down)
	if m.menuIndex != len(menuItems)-1 {
		t.Errorf("menuIndex = %d, want %d", m.menuIndex, len(menuItems)-1)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if got := menuItems[m.menuIndex].Title; got != "Inspect MIDI file" {
		t.Errorf("selected %q, want Inspect MIDI file", got)
	}

	m, _ = press(t, m, enter)
	if m.State() != StateFilePicker {
		t.Errorf("state = %v, want StateFilePicker", m.State())
	}

	m, _ = press(t, m, esc)
	if m.State() != StateMenu {
		t.Errorf("esc left state %v, want StateMenu", m.State())
	}
}

func TestGenerateFromMenu(t *testing.T) {
	m := newModel(t)

	m, _ = press(t, m, down, down)
	if m.State() != StateMenu {
		t.Fatal("navigation should stay on the menu")
	}
	m, _ = press(t, m, enter)
	if m.State() != StateWorking {
		t.Fatalf("state = %v, want StateWorking", m.State())
	}
	if !strings.Contains(m.View(), "GENERATING") {
		t.Error("working view should say it is generating")
	}

	msg := generate(m.svc, m.selected.Kind)()
	next, _ := m.Update(msg)
	m = next.(Model)

	if m.State() != StateResult {
		t.Fatalf("state = %v, want StateResult", m.State())
	}
	if m.err != nil {
		t.Fatalf("generation failed: %v", m.err)
	}
	if !strings.Contains(m.result, "simple_chords_") {
		t.Errorf("result %q does not name the written file", m.result)
	}

	m, _ = press(t, m, enter)
	if m.State() != StateMenu || m.result != "" {
		t.Error("enter on the result screen should reset to the menu")
	}
}

func TestInspectSummary(t *testing.T) {
	svc := generator.NewService(t.TempDir(), config.DefaultDefaults())
	seed := uint64(2)
	res, err := svc.Generate(generator.KindBass, generator.Request{Filename: "look.mid", Seed: &seed})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	msg, ok := inspect(res.Path)().(workDoneMsg)
	if !ok {
		t.Fatal("inspect should return workDoneMsg")
	}
	if msg.err != nil {
		t.Fatalf("inspect error = %v", msg.err)
	}
	for _, want := range []string{"96 ticks/quarter", "120.0 BPM", "4/4", "Notes:      23", "..."} {
		if !strings.Contains(msg.summary, want) {
			t.Errorf("summary missing %q:\n%s", want, msg.summary)
		}
	}
}

func TestInspectBadFile(t *testing.T) {
	msg := inspect("does-not-exist" + midifile.Extension)().(workDoneMsg)
	if msg.err == nil {
		t.Error("inspecting a missing file should fail")
	}
}

func TestExitQuits(t *testing.T) {
	m := newModel(t)
	m, cmd := press(t, m, down, down, down, down, enter)
	if cmd == nil {
		t.Fatal("Exit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Exit should quit")
	}
	_ = m
}
