// Package render turns transcript turns into HTML for the browser front end.
package render

import (
	"bytes"
	"html"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/papercomputeco/atelier/pkg/transcript"
)

// Renderer converts turns to sanitised HTML. Text turns are treated as
// GitHub-flavoured markdown, image turns become an <img> of their reference.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Markdown renders markdown source to sanitised HTML. Render failures fall back
// to the escaped literal text.
func (r *Renderer) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<p>" + html.EscapeString(src) + "</p>")
	}

	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// Image renders an image reference.
func (r *Renderer) Image(ref string) template.HTML {
	return template.HTML(`<img class="turn-image" src="` + html.EscapeString(ref) + `" alt="uploaded image">`)
}

// Turn renders one turn by kind.
func (r *Renderer) Turn(t transcript.Turn) template.HTML {
	if t.Kind == transcript.KindImage {
		return r.Image(t.Content)
	}
	return r.Markdown(t.Content)
}
