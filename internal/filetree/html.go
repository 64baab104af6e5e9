package filetree

import (
	"html/template"
	"io"
)

var htmlTemplate = template.Must(template.New("tree").Funcs(template.FuncMap{
	"iconClass": func(i Icon) string {
		switch i {
		case IconFolder:
			return "fas fa-folder"
		case IconInfo:
			return "fas fa-info-circle"
		default:
			return "fas fa-file"
		}
	},
}).Parse(`<div class="tree"><div class="line-numbers">{{range .LineNumbers}}<span>{{.}}</span>{{end}}</div><div class="line-content">
{{- range $i, $l := .Lines}}{{if $i}}
{{end}}<span>{{$l.Prefix}}<i class="{{iconClass $l.Icon}}"></i> {{if $l.Info}}{{$l.Name}}{{else if $l.Href}}<a href="{{$l.Href}}" target="_blank" rel="noopener noreferrer">{{$l.Name}}</a>{{else}}<span class="dir-name">{{$l.Name}}</span>{{end}}
{{- with $l.Action}} <button class="copy-button" title="Copy path" data-action="{{.Kind}}" data-path="{{.Key}}"><i class="fas fa-copy"></i></button>{{end}}</span>
{{- end}}</div></div>
`))

// WriteHTML writes the decorated form as line-number and line-content
// markup. Names and paths are escaped.
func WriteHTML(w io.Writer, o *Output) error {
	return htmlTemplate.Execute(w, o)
}
