// Package filetree renders an ordered, annotated entry sequence into two
// congruent forms: a plain-text tree drawn with connector characters (for
// copying and export) and a decorated line list carrying icons, links and a
// copy-path action per entry (for display). Line i of one form always
// describes the same entry as line i of the other.
package filetree

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/holonoms/ghtree/internal/hierarchy"
)

const (
	// EmptyMarker is the plain-text form of an empty listing.
	EmptyMarker = "(empty)"
	// EmptyMessage is the single decorated line of an empty listing.
	EmptyMessage = "This repository or branch appears to be empty."

	// ActionCopyPath copies the entry's full path.
	ActionCopyPath = "copy-path"
)

// Icon is the type marker shown in front of a decorated line.
type Icon int

const (
	IconFile Icon = iota
	IconFolder
	IconInfo
)

// Emoji returns the glyph used for the icon in plain text and terminals.
func (i Icon) Emoji() string {
	switch i {
	case IconFolder:
		return "📁"
	case IconInfo:
		return "ℹ️"
	default:
		return "📄"
	}
}

// Action is a per-line affordance keyed by the entry path.
type Action struct {
	Kind string
	Key  string
}

// RenderedLine is one line of the decorated form.
type RenderedLine struct {
	Number int
	Prefix string
	Icon   Icon
	Name   string
	Path   string
	Kind   hierarchy.Kind
	// Href is the navigable reference of a leaf, empty for containers.
	Href   string
	Action *Action
	// Info marks the informational line of an empty listing.
	Info bool
}

// Output holds both forms of one render. A new Output is produced on every
// render; it is never updated in place.
type Output struct {
	PlainText   string
	Lines       []RenderedLine
	LineNumbers []int
}

// Empty reports whether the output is the empty-state rendering.
func (o *Output) Empty() bool {
	return len(o.Lines) == 1 && o.Lines[0].Info
}

// LinkFunc builds the navigable reference for a leaf path.
type LinkFunc func(path string) string

// GitHubLinks links leaves to their blob page on github.com.
func GitHubLinks(repo, branch string) LinkFunc {
	return WebLinks("https://github.com", repo, branch)
}

// WebLinks links leaves to <base>/<repo>/blob/<branch>/<path>.
func WebLinks(base, repo, branch string) LinkFunc {
	base = strings.TrimSuffix(base, "/")
	return func(path string) string {
		segments := strings.Split(path, hierarchy.Separator)
		for i, s := range segments {
			segments[i] = url.PathEscape(s)
		}
		return fmt.Sprintf("%s/%s/blob/%s/%s", base, repo, url.PathEscape(branch), strings.Join(segments, "/"))
	}
}

// Options configure a Renderer.
type Options struct {
	Style Style
	// Icons puts the type emoji in front of names in the plain-text form.
	Icons bool
	// Links builds leaf references; nil leaves Href empty.
	Links LinkFunc
}

// Renderer turns flattened items into an Output.
type Renderer struct {
	opts Options
}

// New creates a Renderer. An empty style means Classic.
func New(opts Options) *Renderer {
	if opts.Style == "" {
		opts.Style = Classic
	}
	return &Renderer{opts: opts}
}

// Options returns the renderer configuration.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render produces both forms for items, which must be in visible order.
func (r *Renderer) Render(items []hierarchy.Item) *Output {
	if len(items) == 0 {
		return &Output{
			PlainText: EmptyMarker,
			Lines: []RenderedLine{{
				Number: 1,
				Icon:   IconInfo,
				Name:   EmptyMessage,
				Info:   true,
			}},
			LineNumbers: []int{1},
		}
	}

	g := r.opts.Style.glyphs()
	out := &Output{
		Lines:       make([]RenderedLine, 0, len(items)),
		LineNumbers: make([]int, 0, len(items)),
	}

	var plain strings.Builder
	for i, it := range items {
		prefix := g.prefix(it.Lineage, it.Last)
		name := r.displayName(it)

		icon := IconFile
		if it.Entry.Kind == hierarchy.Container {
			icon = IconFolder
		}

		line := RenderedLine{
			Number: i + 1,
			Prefix: prefix,
			Icon:   icon,
			Name:   name,
			Path:   it.Entry.Path,
			Kind:   it.Entry.Kind,
			Action: &Action{Kind: ActionCopyPath, Key: it.Entry.Path},
		}
		if it.Entry.Kind == hierarchy.Leaf && r.opts.Links != nil {
			line.Href = r.opts.Links(it.Entry.Path)
		}
		out.Lines = append(out.Lines, line)
		out.LineNumbers = append(out.LineNumbers, i+1)

		if i > 0 {
			plain.WriteByte('\n')
		}
		plain.WriteString(prefix)
		if r.opts.Icons {
			plain.WriteString(icon.Emoji())
			plain.WriteByte(' ')
		}
		plain.WriteString(name)
	}
	out.PlainText = plain.String()

	return out
}

// displayName is the label shared by both forms. Containers get no trailing
// separator so the plain text stays copy friendly; orphans show their full
// path since their ancestors are not drawn.
func (r *Renderer) displayName(it hierarchy.Item) string {
	name := it.Name
	if it.Orphan {
		name = it.Entry.Path
	}
	if r.opts.Style == Slashed && it.Entry.Kind == hierarchy.Container {
		name = "/" + name
	}
	return name
}
