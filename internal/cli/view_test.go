package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/gridlay/pkg/scene"
)

func testScene() scene.Scene {
	return scene.Scene{
		Width:  2,
		Height: 3,
		Boxes: []scene.Box{
			{ID: 0, Name: "header", Width: 2, Height: 1},
			{ID: 2, Name: "main", X: 1, Y: 1, Width: 1, Height: 2},
			{ID: 1, Name: "nav", Y: 1, Width: 1, Height: 2},
		},
	}
}

func press(m viewModel, keys ...tea.KeyMsg) viewModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(viewModel)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestViewModelNavigation(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want string
	}{
		{"initial", nil, "header"},
		{"down", []tea.KeyMsg{{Type: tea.KeyDown}}, "main"},
		{"j twice", []tea.KeyMsg{runes("j"), runes("j")}, "nav"},
		{"wraps forward", []tea.KeyMsg{{Type: tea.KeyTab}, {Type: tea.KeyTab}, {Type: tea.KeyTab}}, "header"},
		{"wraps backward", []tea.KeyMsg{{Type: tea.KeyUp}}, "nav"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(newViewModel("page.toml", testScene()), tt.keys...)
			got, ok := m.selected()
			if !ok || got.Name != tt.want {
				t.Errorf("selected() = %q, %v, want %q", got.Name, ok, tt.want)
			}
		})
	}
}

func TestViewModelZoom(t *testing.T) {
	m := newViewModel("page.toml", testScene())

	m = press(m, runes("+"), runes("+"))
	if m.scale != 4 {
		t.Errorf("scale = %v, want 4", m.scale)
	}
	m = press(m, runes("+"), runes("+"), runes("+"))
	if m.scale != maxViewScale {
		t.Errorf("scale = %v, want %v", m.scale, maxViewScale)
	}
	for range 10 {
		m = press(m, runes("-"))
	}
	if m.scale != minViewScale {
		t.Errorf("scale = %v, want %v", m.scale, minViewScale)
	}
}

func TestViewModelQuit(t *testing.T) {
	m := newViewModel("page.toml", testScene())
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestViewModelView(t *testing.T) {
	out := newViewModel("page.toml", testScene()).View()
	for _, want := range []string{"page.toml", "header", "main", "nav", "Box"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	empty := newViewModel("empty.toml", scene.Scene{}).View()
	if !strings.Contains(empty, "empty layout") {
		t.Errorf("View() of empty scene = %q", empty)
	}
	huge := scene.Scene{Width: 1e10, Height: 1e10, Boxes: []scene.Box{{Name: "a", Width: 1e10, Height: 1e10}}}
	if out := newViewModel("huge.toml", huge).View(); !strings.Contains(out, "exceeds the limit") {
		t.Errorf("View() of oversized scene = %q", out)
	}
	if _, ok := newViewModel("empty.toml", scene.Scene{}).selected(); ok {
		t.Error("selected() on empty scene should report false")
	}
}
