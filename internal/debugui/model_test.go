package debugui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestUpdateAppliesWindowSize(t *testing.T) {
	m := New("/tmp/does-not-matter.sock")
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = mi.(*Model)
	if !m.ready {
		t.Fatal("expected model to be ready after a window size message")
	}
}

func TestRefreshMsgPopulatesContent(t *testing.T) {
	m := New("/tmp/does-not-matter.sock")
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = mi.(*Model)

	mi, _ = m.Update(refreshMsg{outputs: "DP-1 tags=1\n", views: "alacritty\n"})
	m = mi.(*Model)

	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	view := m.View()
	if !strings.Contains(view, "DP-1") || !strings.Contains(view, "alacritty") {
		t.Fatalf("expected view to contain output/view rows, got %q", view)
	}
}

func TestRefreshMsgErrorSurfacesInFooter(t *testing.T) {
	m := New("/tmp/does-not-matter.sock")
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = mi.(*Model)

	mi, _ = m.Update(refreshMsg{err: errors.New("connect: no such file or directory")})
	m = mi.(*Model)

	if m.err == nil {
		t.Fatal("expected error to be recorded")
	}
	if !strings.Contains(m.View(), "error:") {
		t.Fatalf("expected footer to show the error, got %q", m.View())
	}
}

func TestQuitKeyReturnsQuitCmd(t *testing.T) {
	m := New("/tmp/does-not-matter.sock")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected a non-nil command for ctrl+c")
	}
}
