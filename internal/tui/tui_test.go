package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holonoms/ghtree/internal/filetree"
	"github.com/holonoms/ghtree/internal/hierarchy"
	"github.com/holonoms/ghtree/internal/source"
	"github.com/holonoms/ghtree/internal/view"
)

type fakeClipboard struct {
	text string
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

func newModel(t *testing.T) (Model, *view.Session, *fakeClipboard, *[]string) {
	t.Helper()

	session := view.NewSession()
	session.Load(&source.Snapshot{
		Ref:      source.Ref{Owner: "o", Name: "r", Branch: "main"},
		LinkBase: "https://github.com",
		Entries: []hierarchy.Entry{
			{Path: "src", Kind: hierarchy.Container},
			{Path: "src/main.go"},
			{Path: "src/util.go"},
			{Path: "README.md"},
		},
	})

	clip := &fakeClipboard{}
	var opened []string
	m := New(session, "o/r@main", clip, func(url string) error {
		opened = append(opened, url)
		return nil
	})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	return updated.(Model), session, clip, &opened
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestNavigation(t *testing.T) {
	m, _, _, _ := newModel(t)
	assert.Equal(t, 0, m.cursor)

	m = press(t, m, "down", "down", "down", "down", "down")
	assert.Equal(t, 3, m.cursor)

	m = press(t, m, "g")
	assert.Equal(t, 0, m.cursor)

	m = press(t, m, "G", "up")
	assert.Equal(t, 2, m.cursor)
	assert.Contains(t, m.View(), "o/r@main")
}

func TestResortKeepsCursorOnEntry(t *testing.T) {
	m, session, _, _ := newModel(t)

	m = press(t, m, "G")
	require.Equal(t, "README.md", m.cursorPath())

	m = press(t, m, "s")
	assert.Equal(t, hierarchy.DefaultSortPolicy.Next(), session.Policy())
	assert.Equal(t, "README.md", m.cursorPath())
	assert.Contains(t, m.status, "Sorted by")
}

func TestStyleAndIcons(t *testing.T) {
	m, session, _, _ := newModel(t)

	m = press(t, m, "t")
	assert.Equal(t, filetree.Plus, session.RenderOptions().Style)

	m = press(t, m, "i")
	assert.True(t, session.RenderOptions().Icons)
	assert.Contains(t, session.Current().PlainText(), "📁")
	assert.Equal(t, "Icons on for copied text", m.status)
}

func TestCopy(t *testing.T) {
	m, session, clip, _ := newModel(t)

	m = press(t, m, "down", "y")
	assert.Equal(t, "src/main.go", clip.text)
	assert.Equal(t, "Copied src/main.go", m.status)

	press(t, m, "c")
	assert.Equal(t, session.Current().PlainText(), clip.text)
}

func TestOpen(t *testing.T) {
	m, _, _, opened := newModel(t)

	m = press(t, m, "o")
	assert.Empty(t, *opened)
	assert.Equal(t, "No link for this line", m.status)

	m = press(t, m, "down", "o")
	assert.Equal(t, []string{"https://github.com/o/r/blob/main/src/main.go"}, *opened)

	m.open = func(string) error { return errors.New("no browser") }
	m = press(t, m, "o")
	assert.True(t, m.failed)
}

func TestSearch(t *testing.T) {
	m, _, _, _ := newModel(t)

	m = press(t, m, "/", "u", "t", "i", "l")
	assert.True(t, m.searching)
	assert.Equal(t, "src/util.go", m.cursorPath())

	m = press(t, m, "enter")
	assert.False(t, m.searching)
	assert.Equal(t, "Match 1 of 1", m.status)

	m = press(t, m, "n")
	assert.Equal(t, "src/util.go", m.cursorPath())

	m = press(t, m, "/", "z", "z", "z", "enter")
	assert.Equal(t, "No matches", m.status)

	m = press(t, m, "/", "r", "esc")
	assert.False(t, m.searching)
	assert.Empty(t, m.matches)
}

func TestQuit(t *testing.T) {
	m, _, _, _ := newModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
