// Package preview filters documents before they reach the preview pane.
package preview

import (
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips scripts and event handlers from preview documents while
// keeping the structural and text markup the sample pages use
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a sanitizer with the preview policy
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: newPreviewPolicy()}
}

// Sanitize returns html with disallowed elements and attributes removed
func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}

func newPreviewPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("p", "br", "hr")
	p.AllowElements("strong", "b", "em", "i", "u", "s", "mark")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("blockquote", "pre", "code")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowElements("div", "span", "section", "header", "footer", "main", "nav")

	p.AllowStandardURLs()
	p.AllowRelativeURLs(true)
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")

	p.AllowAttrs("class", "id").Globally()

	return p
}
