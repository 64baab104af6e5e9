// Package export writes rendered trees to files, writers and the clipboard.
package export

import (
	"bufio"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/holonoms/ghtree/internal/filetree"
)

// Format selects the output representation.
type Format string

const (
	// Plain is the copy/export text form.
	Plain Format = "plain"
	// ANSI is the decorated form with a line-number gutter and colors.
	ANSI Format = "ansi"
	// HTML is a standalone page with line numbers, links and copy buttons.
	HTML Format = "html"
)

// Formats lists the supported formats.
var Formats = []Format{Plain, ANSI, HTML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want plain, ansi or html)", s)
}

func (f Format) String() string {
	return string(f)
}

// Set implements pflag.Value.
func (f *Format) Set(s string) error {
	v, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string {
	return "format"
}

// Document is a rendered tree with the context needed to title it.
type Document struct {
	// Title names the listing, for example "owner/repo@main".
	Title string
	// Header is printed above the tree in plain output when set.
	Header bool
	Output *filetree.Output
	Theme  filetree.Theme
}

// Write renders doc to w in the given format.
func Write(w io.Writer, doc Document, format Format) error {
	switch format {
	case Plain, "":
		if doc.Header && doc.Title != "" {
			if _, err := fmt.Fprintf(w, "%s\n%s\n\n", doc.Title, strings.Repeat("=", len([]rune(doc.Title)))); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, doc.Output.PlainText+"\n")
		return err
	case ANSI:
		return filetree.WriteANSI(w, doc.Output, doc.Theme)
	case HTML:
		return writePage(w, doc)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// WriteFile writes doc to path and returns the number of bytes written.
func WriteFile(path string, doc Document, format Format) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	if err := Write(w, doc, format); err != nil {
		return 0, fmt.Errorf("failed to write tree: %w", err)
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush writer: %w", err)
	}

	info, err := out.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to get file stats: %w", err)
	}
	return info.Size(), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; }
.tree { display: flex; white-space: pre; line-height: 1.4; }
.line-numbers { display: flex; flex-direction: column; text-align: right; padding-right: 1em; color: #888; user-select: none; }
.line-content { display: block; }
.copy-button { border: none; background: none; cursor: pointer; opacity: 0.4; }
.info { color: #888; font-style: italic; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{.Tree}}
<script>
document.addEventListener("click", function (e) {
  var b = e.target.closest("[data-action]");
  if (b) navigator.clipboard.writeText(b.dataset.path);
});
</script>
</body>
</html>
`))

func writePage(w io.Writer, doc Document) error {
	var tree strings.Builder
	if err := filetree.WriteHTML(&tree, doc.Output); err != nil {
		return err
	}
	return pageTemplate.Execute(w, struct {
		Title string
		Tree  template.HTML
	}{
		Title: doc.Title,
		Tree:  template.HTML(tree.String()),
	})
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard copies to the operating system clipboard.
type SystemClipboard struct{}

// Available reports whether a clipboard utility was found.
func (SystemClipboard) Available() bool {
	return !clipboard.Unsupported
}

// WriteAll copies text to the system clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility available")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// CopyTree copies the plain-text form of out.
func CopyTree(c Clipboard, out *filetree.Output) error {
	return c.WriteAll(out.PlainText)
}

// CopyPath copies the path of the rendered line at index i. Informational
// lines carry no path and are rejected.
func CopyPath(c Clipboard, out *filetree.Output, i int) (string, error) {
	if i < 0 || i >= len(out.Lines) {
		return "", fmt.Errorf("line %d out of range", i+1)
	}
	line := out.Lines[i]
	if line.Action == nil || line.Action.Kind != filetree.ActionCopyPath {
		return "", fmt.Errorf("line %d has no path", i+1)
	}
	return line.Action.Key, c.WriteAll(line.Action.Key)
}
