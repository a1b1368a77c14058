package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	log "github.com/sirupsen/logrus"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	// Document content is not trusted: anything goldmark lets through is
	// filtered again before it reaches a template.
	sanitizer = bluemonday.UGCPolicy().
			RequireNoFollowOnLinks(true).
			AddTargetBlankToFullyQualifiedLinks(true)
)

// RichText converts a Markdown field to sanitized HTML. Empty input yields
// an empty result so templates can omit the surrounding markup.
func RichText(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		log.WithError(err).Warn("render: markdown conversion failed, escaping as text")
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}
