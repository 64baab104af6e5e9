package filetree

import (
	"fmt"
	"strings"
)

// Style selects the connector glyphs drawn in front of each name.
type Style string

const (
	// Classic draws box connectors: ├── └── │.
	Classic Style = "classic"
	// Plus draws ASCII-only connectors: +-- |.
	Plus Style = "plus"
	// Minimal indents without connectors.
	Minimal Style = "minimal"
	// Slashed indents without connectors and marks containers with a
	// leading slash.
	Slashed Style = "slashed"
)

// Styles lists the available styles in cycling order.
var Styles = []Style{Classic, Plus, Minimal, Slashed}

// ParseStyle resolves a style name.
func ParseStyle(s string) (Style, error) {
	name := Style(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Styles {
		if st == name {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown style %q (valid: %s)", s, strings.Join(StyleNames(), ", "))
}

// StyleNames returns the style names.
func StyleNames() []string {
	names := make([]string, len(Styles))
	for i, st := range Styles {
		names[i] = string(st)
	}
	return names
}

func (s Style) String() string {
	return string(s)
}

// Set implements pflag.Value.
func (s *Style) Set(v string) error {
	parsed, err := ParseStyle(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Type implements pflag.Value.
func (s *Style) Type() string {
	return "style"
}

// Next returns the style after s, wrapping around.
func (s Style) Next() Style {
	for i, st := range Styles {
		if st == s {
			return Styles[(i+1)%len(Styles)]
		}
	}
	return Classic
}

// glyphs are the four fragments a prefix is assembled from.
type glyphs struct {
	branch string // connector for a non-last entry
	last   string // connector for a last entry
	pipe   string // guide under a non-last ancestor
	blank  string // guide under a last ancestor
}

func (s Style) glyphs() glyphs {
	switch s {
	case Plus:
		return glyphs{branch: "+-- ", last: "+-- ", pipe: "|   ", blank: "    "}
	case Minimal, Slashed:
		return glyphs{branch: "", last: "", pipe: "    ", blank: "    "}
	default:
		return glyphs{branch: "├── ", last: "└── ", pipe: "│   ", blank: "    "}
	}
}

// prefix builds the guide columns for every ancestor followed by the
// connector for the entry itself.
func (g glyphs) prefix(lineage []bool, last bool) string {
	var b strings.Builder
	for _, ancestorLast := range lineage {
		if ancestorLast {
			b.WriteString(g.blank)
		} else {
			b.WriteString(g.pipe)
		}
	}
	if last {
		b.WriteString(g.last)
	} else {
		b.WriteString(g.branch)
	}
	return b.String()
}
