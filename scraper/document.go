package scraper

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Element is a single node found by a selector.
type Element interface {
	// Text returns the node's combined text, trimmed.
	Text() string
	// Attr returns the trimmed attribute value. A missing or blank
	// attribute reports false.
	Attr(name string) (string, bool)
}

// Document is the query capability the extraction strategies are written
// against.
type Document interface {
	QueryFirst(selector string) (Element, bool)
	QueryAll(selector string) []Element
}

// ParseHTML parses r into a goquery-backed Document.
func ParseHTML(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &goqueryDocument{doc: doc}, nil
}

type goqueryDocument struct {
	doc *goquery.Document
}

func (d *goqueryDocument) QueryFirst(selector string) (Element, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return goqueryElement{sel: sel}, true
}

func (d *goqueryDocument) QueryAll(selector string) []Element {
	found := d.doc.Find(selector)
	elements := make([]Element, 0, found.Length())
	found.Each(func(i int, s *goquery.Selection) {
		elements = append(elements, goqueryElement{sel: s})
	})
	return elements
}

type goqueryElement struct {
	sel *goquery.Selection
}

func (e goqueryElement) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

func (e goqueryElement) Attr(name string) (string, bool) {
	value, ok := e.sel.Attr(name)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
