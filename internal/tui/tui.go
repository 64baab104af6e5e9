// Package tui is the interactive terminal browser for a loaded listing. It
// shows the decorated tree with its line-number gutter and lets the user
// re-sort, restyle, search, copy and open entries without fetching again.
package tui

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/holonoms/ghtree/internal/export"
	"github.com/holonoms/ghtree/internal/filetree"
	"github.com/holonoms/ghtree/internal/view"
)

const helpText = "↑/↓ move · s sort · t style · i icons · / search · n/N next · y copy path · c copy tree · o open · q quit"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// Opener opens a link in the user's browser.
type Opener func(url string) error

// Model is the bubbletea model of the browser.
type Model struct {
	session *view.Session
	clip    export.Clipboard
	open    Opener
	title   string
	theme   filetree.Theme

	viewport viewport.Model
	search   textinput.Model
	ready    bool

	cursor    int
	searching bool
	matches   []int
	match     int

	status string
	failed bool
}

// New creates a browser over the current result of session.
func New(session *view.Session, title string, clip export.Clipboard, open Opener) Model {
	ti := textinput.New()
	ti.Placeholder = "Type to fuzzy-search paths..."
	ti.Prompt = "/ "
	ti.CharLimit = 0

	if open == nil {
		open = OpenURL
	}

	return Model{
		session:  session,
		clip:     clip,
		open:     open,
		title:    title,
		theme:    filetree.DefaultTheme(),
		viewport: viewport.New(0, 0),
		search:   ti,
	}
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-m.headerHeight()-m.footerHeight())
		m.viewport.YPosition = m.headerHeight()
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	out := m.output()
	n := 0
	if out != nil {
		n = len(out.Lines)
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		m.moveTo(m.cursor - 1)
	case "down", "j":
		m.moveTo(m.cursor + 1)
	case "pgup":
		m.moveTo(m.cursor - m.viewport.Height)
	case "pgdown":
		m.moveTo(m.cursor + m.viewport.Height)
	case "home", "g":
		m.moveTo(0)
	case "end", "G":
		m.moveTo(n - 1)

	case "s":
		path := m.cursorPath()
		res, err := m.session.Resort(m.session.Policy().Next())
		if err != nil {
			m.setError(err)
			break
		}
		m.follow(path)
		m.setStatus("Sorted by " + res.Policy.Label())

	case "t":
		path := m.cursorPath()
		opts := m.session.RenderOptions()
		style := opts.Style.Next()
		m.session.SetStyle(style, opts.Icons)
		m.follow(path)
		m.setStatus("Style " + style.String())

	case "i":
		opts := m.session.RenderOptions()
		m.session.SetStyle(opts.Style, !opts.Icons)
		if opts.Icons {
			m.setStatus("Icons off for copied text")
		} else {
			m.setStatus("Icons on for copied text")
		}

	case "y":
		if out == nil || m.clip == nil {
			break
		}
		path, err := export.CopyPath(m.clip, out, m.cursor)
		if err != nil {
			m.setError(err)
			break
		}
		m.setStatus("Copied " + path)

	case "c":
		if out == nil || m.clip == nil {
			break
		}
		if err := export.CopyTree(m.clip, out); err != nil {
			m.setError(err)
			break
		}
		m.setStatus("Copied tree to clipboard")

	case "o", "enter":
		if out == nil || m.cursor >= n {
			break
		}
		href := out.Lines[m.cursor].Href
		if href == "" {
			m.setStatus("No link for this line")
			break
		}
		if err := m.open(href); err != nil {
			m.setError(err)
			break
		}
		m.setStatus("Opened " + href)

	case "/":
		m.searching = true
		m.search.SetValue("")
		m.search.Focus()
		return m, textinput.Blink

	case "n":
		m.nextMatch(1)
	case "N":
		m.nextMatch(-1)

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.refresh()
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.searching = false
		m.search.Blur()
		m.matches = nil
		m.refresh()
		return m, nil

	case "enter":
		m.searching = false
		m.search.Blur()
		if len(m.matches) == 0 {
			m.setStatus("No matches")
		} else {
			m.setStatus(fmt.Sprintf("Match %d of %d", m.match+1, len(m.matches)))
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.find(m.search.Value())
	m.refresh()
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.headerView() + "\n" + m.viewport.View() + "\n" + m.footerView()
}

// MARK: Internal helper functions

func (m *Model) output() *filetree.Output {
	res := m.session.Current()
	if res == nil {
		return nil
	}
	return res.Output
}

func (m *Model) cursorPath() string {
	out := m.output()
	if out == nil || m.cursor >= len(out.Lines) {
		return ""
	}
	return out.Lines[m.cursor].Path
}

// follow moves the cursor to path after the lines were reordered.
func (m *Model) follow(path string) {
	out := m.output()
	if out == nil || path == "" {
		return
	}
	for i, line := range out.Lines {
		if line.Path == path {
			m.cursor = i
			break
		}
	}
	if m.search.Value() != "" {
		m.find(m.search.Value())
	}
}

func (m *Model) moveTo(i int) {
	out := m.output()
	if out == nil {
		return
	}
	m.cursor = max(0, min(i, len(out.Lines)-1))
}

// find matches term against every path and moves to the best match.
func (m *Model) find(term string) {
	m.matches = nil
	m.match = 0
	out := m.output()
	if out == nil || term == "" {
		return
	}

	paths := make([]string, len(out.Lines))
	for i, line := range out.Lines {
		paths[i] = line.Path
	}
	for _, match := range fuzzy.Find(term, paths) {
		m.matches = append(m.matches, match.Index)
	}
	if len(m.matches) > 0 {
		m.cursor = m.matches[0]
	}
}

func (m *Model) nextMatch(step int) {
	if len(m.matches) == 0 {
		m.setStatus("No matches")
		return
	}
	m.match = (m.match + step + len(m.matches)) % len(m.matches)
	m.cursor = m.matches[m.match]
	m.setStatus(fmt.Sprintf("Match %d of %d", m.match+1, len(m.matches)))
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.failed = true
}

// refresh re-renders the viewport content and keeps the cursor visible.
func (m *Model) refresh() {
	out := m.output()
	if out == nil {
		m.viewport.SetContent("")
		return
	}

	lines := m.theme.Lines(out)
	if m.cursor < len(lines) {
		lines[m.cursor] = m.theme.Cursor.Render("▶ " + lines[m.cursor])
	}
	for i := range lines {
		if i != m.cursor {
			lines[i] = "  " + lines[i]
		}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	top := m.viewport.YOffset
	bottom := m.viewport.YOffset + m.viewport.Height - 1
	if m.cursor < top {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor > bottom {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m *Model) headerHeight() int {
	return 2
}

func (m *Model) footerHeight() int {
	return 3
}

func (m Model) headerView() string {
	opts := m.session.RenderOptions()
	detail := fmt.Sprintf("%s · %s", m.session.Policy().Label(), opts.Style)
	return titleStyle.Render(m.title) + "  " + detailStyle.Render(detail) + "\n"
}

func (m Model) footerView() string {
	var b strings.Builder
	if m.searching {
		b.WriteString(m.search.View())
	} else if m.failed {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(detailStyle.Render(helpText))
	return b.String()
}

// OpenURL opens url with the platform's default handler.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}
