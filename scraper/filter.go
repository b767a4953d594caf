package scraper

import (
	"strings"
	"unicode/utf8"
)

// FilterParagraphs returns the article body paragraphs in document order.
//
// The content selectors are tried in order and the first one yielding at
// least MinParagraphs qualifying paragraphs wins. When none does, every <p>
// in the document is scanned with the stricter FallbackParagraphLength
// minimum, since that scan is not scoped to the article body.
func FilterParagraphs(doc Document, cfg ArticleConfig) []string {
	for _, selector := range cfg.ContentSelectors {
		paragraphs := collectParagraphs(doc, selector, cfg.MinParagraphLength, cfg.BoilerplateMarkers)
		if len(paragraphs) >= cfg.MinParagraphs {
			return paragraphs
		}
	}
	return collectParagraphs(doc, "p", cfg.FallbackParagraphLength, cfg.BoilerplateMarkers)
}

func collectParagraphs(doc Document, selector string, minLength int, markers []string) []string {
	paragraphs := []string{}
	for _, el := range doc.QueryAll(selector) {
		if text := el.Text(); qualifies(text, minLength, markers) {
			paragraphs = append(paragraphs, text)
		}
	}
	return paragraphs
}

// qualifies reports whether a trimmed paragraph is long enough and free of
// boilerplate markers.
func qualifies(text string, minLength int, markers []string) bool {
	if text == "" || utf8.RuneCountInString(text) <= minLength {
		return false
	}
	return !IsBoilerplate(text, markers)
}

// IsBoilerplate reports whether text contains any of the markers.
func IsBoilerplate(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
