package filetree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/holonoms/ghtree/internal/hierarchy"
	"golang.org/x/text/language"
)

func items(policy hierarchy.SortPolicy, specs ...string) []hierarchy.Item {
	var entries []hierarchy.Entry
	for _, s := range specs {
		kind := hierarchy.Leaf
		if strings.HasSuffix(s, "/") {
			kind = hierarchy.Container
			s = strings.TrimSuffix(s, "/")
		}
		entries = append(entries, hierarchy.Entry{Path: s, Kind: kind})
	}
	tree := hierarchy.Build(entries)
	hierarchy.NewSorter(language.Und).Sort(tree.Root, policy)
	return hierarchy.Flatten(tree)
}

func TestRender(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		out := New(Options{}).Render(nil)

		if out.PlainText != EmptyMarker {
			t.Errorf("Expected %q, got %q", EmptyMarker, out.PlainText)
		}
		if len(out.Lines) != 1 || !out.Lines[0].Info || out.Lines[0].Name != EmptyMessage {
			t.Errorf("Expected a single informational line, got %+v", out.Lines)
		}
		if len(out.LineNumbers) != 1 || out.LineNumbers[0] != 1 {
			t.Errorf("Expected line numbers [1], got %v", out.LineNumbers)
		}
		if !out.Empty() {
			t.Error("Expected Empty() to be true")
		}
	})

	t.Run("container first", func(t *testing.T) {
		out := New(Options{}).Render(items(hierarchy.ContainerFirstAsc, "src/", "src/a.js", "README.md"))
		expected := strings.Join([]string{
			"├── src",
			"│   └── a.js",
			"└── README.md",
		}, "\n")

		if out.PlainText != expected {
			t.Errorf("Expected:\n%s\n\nGot:\n%s", expected, out.PlainText)
		}
	})

	t.Run("name ascending", func(t *testing.T) {
		out := New(Options{}).Render(items(hierarchy.NameAsc, "src/", "src/a.js", "README.md"))
		expected := strings.Join([]string{
			"├── README.md",
			"└── src",
			"    └── a.js",
		}, "\n")

		if out.PlainText != expected {
			t.Errorf("Expected:\n%s\n\nGot:\n%s", expected, out.PlainText)
		}
	})

	t.Run("multi level tree", func(t *testing.T) {
		out := New(Options{}).Render(items(hierarchy.ContainerFirstAsc,
			"dir1/",
			"dir1/file1.txt",
			"dir2/",
			"dir2/subdir/",
			"dir2/subdir/file2.txt",
			"file3.txt",
		))
		expected := strings.Join([]string{
			"├── dir1",
			"│   └── file1.txt",
			"├── dir2",
			"│   └── subdir",
			"│       └── file2.txt",
			"└── file3.txt",
		}, "\n")

		if out.PlainText != expected {
			t.Errorf("Expected:\n%s\n\nGot:\n%s", expected, out.PlainText)
		}
	})

	t.Run("icons", func(t *testing.T) {
		out := New(Options{Icons: true}).Render(items(hierarchy.ContainerFirstAsc, "src/", "main.go"))
		expected := strings.Join([]string{
			"├── 📁 src",
			"└── 📄 main.go",
		}, "\n")

		if out.PlainText != expected {
			t.Errorf("Expected:\n%s\n\nGot:\n%s", expected, out.PlainText)
		}
	})

	t.Run("orphan shows full path", func(t *testing.T) {
		out := New(Options{}).Render(items(hierarchy.NameAsc, "a/b/c", "z.txt"))
		expected := strings.Join([]string{
			"├── a/b/c",
			"└── z.txt",
		}, "\n")

		if out.PlainText != expected {
			t.Errorf("Expected:\n%s\n\nGot:\n%s", expected, out.PlainText)
		}
	})
}

func TestRenderStyles(t *testing.T) {
	tests := []struct {
		style    Style
		expected []string
	}{
		{
			style: Plus,
			expected: []string{
				"+-- lib",
				"|   +-- x.go",
				"+-- go.mod",
			},
		},
		{
			style: Minimal,
			expected: []string{
				"lib",
				"    x.go",
				"go.mod",
			},
		},
		{
			style: Slashed,
			expected: []string{
				"/lib",
				"    x.go",
				"go.mod",
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			out := New(Options{Style: tt.style}).Render(items(hierarchy.ContainerFirstAsc, "lib/", "lib/x.go", "go.mod"))
			expected := strings.Join(tt.expected, "\n")
			if out.PlainText != expected {
				t.Errorf("Expected:\n%s\n\nGot:\n%s", expected, out.PlainText)
			}
		})
	}
}

func TestDecoratedCongruence(t *testing.T) {
	policies := hierarchy.SortPolicies
	for _, policy := range policies {
		t.Run(string(policy), func(t *testing.T) {
			in := items(policy, "src/", "src/a.js", "src/lib/", "src/lib/b.js", "README.md", "docs/", "docs/x.md")
			out := New(Options{Links: GitHubLinks("mgks/GitHubTree", "main")}).Render(in)

			plain := strings.Split(out.PlainText, "\n")
			if len(plain) != len(out.Lines) || len(out.Lines) != len(out.LineNumbers) {
				t.Fatalf("Length mismatch: plain=%d lines=%d numbers=%d", len(plain), len(out.Lines), len(out.LineNumbers))
			}

			for i, line := range out.Lines {
				if line.Path != in[i].Entry.Path {
					t.Errorf("Line %d: expected path %q, got %q", i, in[i].Entry.Path, line.Path)
				}
				if plain[i] != line.Prefix+line.Name {
					t.Errorf("Line %d: plain %q does not match decorated %q", i, plain[i], line.Prefix+line.Name)
				}
				if out.LineNumbers[i] != i+1 || line.Number != i+1 {
					t.Errorf("Line %d: bad numbering %d/%d", i, out.LineNumbers[i], line.Number)
				}
				if line.Action == nil || line.Action.Kind != ActionCopyPath || line.Action.Key != line.Path {
					t.Errorf("Line %d: bad action %+v", i, line.Action)
				}
				if line.Kind == hierarchy.Leaf && line.Href == "" {
					t.Errorf("Line %d: leaf without link", i)
				}
				if line.Kind == hierarchy.Container && line.Href != "" {
					t.Errorf("Line %d: container with link %q", i, line.Href)
				}
			}
		})
	}
}

func TestLinks(t *testing.T) {
	link := GitHubLinks("owner/repo", "feature/x")("docs/read me.md")
	expected := "https://github.com/owner/repo/blob/feature%2Fx/docs/read%20me.md"
	if link != expected {
		t.Errorf("Expected %q, got %q", expected, link)
	}
}

func TestWriteHTML(t *testing.T) {
	out := New(Options{Links: GitHubLinks("o/r", "main")}).Render(items(hierarchy.ContainerFirstAsc, "src/", "src/<b>.js"))

	var buf bytes.Buffer
	if err := WriteHTML(&buf, out); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		`<span>1</span><span>2</span>`,
		`<span class="dir-name">src</span>`,
		`&lt;b&gt;.js`,
		`data-path="src/&lt;b&gt;.js"`,
		`href="https://github.com/o/r/blob/main/src/%3Cb%3E.js"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected HTML to contain %q, got:\n%s", want, html)
		}
	}
	if strings.Contains(html, "<b>") {
		t.Error("Name was not escaped")
	}
	if got := strings.Count(html, `data-path=`); got != 2 {
		t.Errorf("Expected 2 content lines, got %d", got)
	}
}

func TestWriteANSI(t *testing.T) {
	out := New(Options{}).Render(items(hierarchy.ContainerFirstAsc, "src/", "src/a.js", "README.md"))

	var buf bytes.Buffer
	if err := WriteANSI(&buf, out, PlainTheme()); err != nil {
		t.Fatalf("WriteANSI failed: %v", err)
	}
	expected := strings.Join([]string{
		"1  ├── 📁 src",
		"2  │   └── 📄 a.js",
		"3  └── 📄 README.md",
	}, "\n") + "\n"

	if buf.String() != expected {
		t.Errorf("Expected:\n%s\n\nGot:\n%s", expected, buf.String())
	}
}
