// Package prompt renders the instructions sent to the model.
package prompt

import (
	"bytes"
	"strings"
	"text/template"
)

// Delimiter separates the HTML and README sections of a modify response.
const Delimiter = "---README---"

// Attachment is a named file the caller makes available by URL.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Rules are applied to every generated app.
var Rules = []string{
	"Wrap all script logic in a DOMContentLoaded listener so it runs once the page is ready.",
	"Guard every fetch or other network call with try/catch and show a user-visible error message on failure.",
	"Check that every element you look up with getElementById or querySelector exists before using it.",
	"Show a loading or status indicator while any asynchronous action is in progress.",
	`Give dynamic status regions aria-live="polite" and an appropriate role.`,
	"Output only the requested file contents, with no explanations, commentary or markdown fences.",
}

type input struct {
	Rules       []string
	Brief       string
	Attachments []Attachment
	Checks      []string
	HTML        string
	README      string
	Delimiter   string
}

const createText = `You are generating a complete single-page web application.

Rules:
{{range $i, $r := .Rules}}{{inc $i}}. {{$r}}
{{end}}
Brief:
{{.Brief}}
{{template "extras" .}}
Return one self-contained index.html file with all CSS and JavaScript inline.
`

const modifyText = `You are revising an existing single-page web application.

Rules:
{{range $i, $r := .Rules}}{{inc $i}}. {{$r}}
{{end}}
Requested change:
{{.Brief}}
{{template "extras" .}}
Current index.html:
{{.HTML}}

Current README.md:
{{.README}}

Return exactly two sections: the complete updated index.html, then a line containing only {{.Delimiter}}, then the complete updated README.md.
`

const extrasText = `{{define "extras"}}{{if .Attachments}}
Attachments:
{{range .Attachments}}- {{.Name}}: {{.URL}}
{{end}}{{end}}{{if .Checks}}
The result must pass these checks:
{{range .Checks}}- {{.}}
{{end}}{{end}}{{end}}`

var (
	funcs     = template.FuncMap{"inc": func(i int) int { return i + 1 }}
	createTpl = template.Must(template.Must(template.New("create").Funcs(funcs).Parse(extrasText)).Parse(createText))
	modifyTpl = template.Must(template.Must(template.New("modify").Funcs(funcs).Parse(extrasText)).Parse(modifyText))
)

// Create renders the round-one prompt.
func Create(brief string, attachments []Attachment, checks []string) string {
	return render(createTpl, input{
		Rules:       Rules,
		Brief:       strings.TrimSpace(brief),
		Attachments: attachments,
		Checks:      checks,
	})
}

// Modify renders the prompt for revising existing files. The model is asked
// to answer with the HTML and README separated by Delimiter.
func Modify(brief string, attachments []Attachment, checks []string, html, readme string) string {
	return render(modifyTpl, input{
		Rules:       Rules,
		Brief:       strings.TrimSpace(brief),
		Attachments: attachments,
		Checks:      checks,
		HTML:        html,
		README:      readme,
		Delimiter:   Delimiter,
	})
}

func render(t *template.Template, in input) string {
	var buf bytes.Buffer
	// Templates are fixed and inputs are plain strings; Execute cannot fail.
	if err := t.Execute(&buf, in); err != nil {
		panic(err)
	}
	return buf.String()
}
