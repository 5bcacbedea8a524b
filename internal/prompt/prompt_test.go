package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreate(t *testing.T) {
	p := Create("  a todo app  ", []Attachment{{Name: "logo.png", URL: "https://x/logo.png"}}, []string{"has a title", "adds items"})

	for _, r := range Rules {
		assert.Contains(t, p, r)
	}
	assert.Contains(t, p, "1. "+Rules[0])
	assert.Contains(t, p, "Brief:\na todo app\n")
	assert.Contains(t, p, "- logo.png: https://x/logo.png")
	assert.Contains(t, p, "- has a title\n- adds items")
	assert.NotContains(t, p, Delimiter)
}

func TestCreate_noExtras(t *testing.T) {
	p := Create("x", nil, nil)
	assert.NotContains(t, p, "Attachments:")
	assert.NotContains(t, p, "checks:")
}

func TestCreate_deterministic(t *testing.T) {
	a := Create("b", []Attachment{{Name: "n", URL: "u"}}, []string{"c"})
	b := Create("b", []Attachment{{Name: "n", URL: "u"}}, []string{"c"})
	assert.Equal(t, a, b)
}

func TestModify(t *testing.T) {
	html := "<html><body>old</body></html>"
	readme := "# Old\n"
	p := Modify("add dark mode", nil, []string{"toggle exists"}, html, readme)

	assert.Contains(t, p, "Requested change:\nadd dark mode")
	assert.Contains(t, p, html)
	assert.Contains(t, p, readme)
	assert.Contains(t, p, "- toggle exists")
	assert.Contains(t, p, "a line containing only "+Delimiter)
	assert.Less(t, strings.Index(p, html), strings.Index(p, readme))
}

func TestModify_htmlNotEscaped(t *testing.T) {
	p := Modify("x", nil, nil, `<a href="a&b">`, "")
	assert.Contains(t, p, `<a href="a&b">`)
}
