package http

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed guide/guide.md
var guideMarkdown []byte

func newGuideRenderer() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
}

// renderGuide converts the embedded guide to HTML
func renderGuide() ([]byte, error) {
	var buf bytes.Buffer
	if err := newGuideRenderer().Convert(guideMarkdown, &buf); err != nil {
		return nil, fmt.Errorf("rendering guide: %w", err)
	}
	return buf.Bytes(), nil
}
