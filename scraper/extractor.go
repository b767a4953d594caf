package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISOLayout is the millisecond UTC form used for every emitted timestamp.
const ISOLayout = "2006-01-02T15:04:05.000Z"

var rasterImage = regexp.MustCompile(`(?i)\.(jpeg|jpg|png|webp)`)

// strategy resolves one field from a document. ok is false when the
// strategy found nothing and the next one should be tried.
type strategy func(doc Document) (value string, ok bool)

// firstOf runs strategies in order and returns the first hit.
func firstOf(doc Document, strategies ...strategy) (string, bool) {
	for _, s := range strategies {
		if value, ok := s(doc); ok {
			return value, true
		}
	}
	return "", false
}

func textOf(selector string) strategy {
	return func(doc Document) (string, bool) {
		el, ok := doc.QueryFirst(selector)
		if !ok {
			return "", false
		}
		text := el.Text()
		return text, text != ""
	}
}

func attrOf(selector, attr string) strategy {
	return func(doc Document) (string, bool) {
		el, ok := doc.QueryFirst(selector)
		if !ok {
			return "", false
		}
		return el.Attr(attr)
	}
}

// Extractor turns a parsed article page into an ExtractedArticle.
type Extractor struct {
	config ArticleConfig
	now    func() time.Time
}

// NewExtractor creates an extractor. A nil now uses time.Now.
func NewExtractor(cfg ArticleConfig, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{config: cfg, now: now}
}

// Extract resolves every field of the article. Missing fields are left
// empty; it never fails.
func (e *Extractor) Extract(doc Document, requestURL string) *ExtractedArticle {
	article := &ExtractedArticle{
		Title:         e.Title(doc),
		Author:        e.Author(doc),
		PublishedDate: e.PublishedDate(doc),
		Summary:       e.Summary(doc),
		Content:       FilterParagraphs(doc, e.config),
		Categories:    e.Categories(doc),
		SourceURL:     requestURL,
		ReadMoreURL:   requestURL,
	}
	if image, ok := e.Image(doc); ok {
		article.ImageURL = &image
	}
	return article
}

// Title tries the first <h1>, og:title, twitter:title and finally <title>.
func (e *Extractor) Title(doc Document) string {
	title, _ := firstOf(doc,
		textOf("h1"),
		attrOf(`meta[property="og:title"]`, "content"),
		attrOf(`meta[name="twitter:title"]`, "content"),
		textOf("title"),
	)
	return title
}

// Author tries rel=author links, the author meta, a "By ..." byline and
// then the configured author selectors.
func (e *Extractor) Author(doc Document) string {
	strategies := []strategy{
		textOf(`a[rel="author"]`),
		attrOf(`meta[name="author"]`, "content"),
		byline,
	}
	for _, selector := range e.config.AuthorSelectors {
		strategies = append(strategies, textOf(selector))
	}
	author, _ := firstOf(doc, strategies...)
	return author
}

// byline takes the segment of the .byline text between the first "By" and
// the next one, so "By A, edited By B" yields "A,".
func byline(doc Document) (string, bool) {
	text, ok := textOf(".byline")(doc)
	if !ok {
		return "", false
	}
	_, after, found := strings.Cut(text, "By")
	if !found {
		return "", false
	}
	name, _, _ := strings.Cut(after, "By")
	name = strings.TrimSpace(name)
	return name, name != ""
}

// PublishedDate returns the first date candidate found, preferring the
// datetime attribute, then content, then text. Without any candidate it
// returns the current instant.
func (e *Extractor) PublishedDate(doc Document) string {
	for _, selector := range e.config.DateSelectors {
		el, ok := doc.QueryFirst(selector)
		if !ok {
			continue
		}
		if value, ok := el.Attr("datetime"); ok {
			return value
		}
		if value, ok := el.Attr("content"); ok {
			return value
		}
		if text := el.Text(); text != "" {
			return text
		}
	}
	return e.now().UTC().Format(ISOLayout)
}

// Summary tries og:description, the description meta and then the first
// long article paragraph.
func (e *Extractor) Summary(doc Document) string {
	summary, _ := firstOf(doc,
		attrOf(`meta[property="og:description"]`, "content"),
		attrOf(`meta[name="description"]`, "content"),
		e.longArticleParagraph,
	)
	return summary
}

func (e *Extractor) longArticleParagraph(doc Document) (string, bool) {
	for _, el := range doc.QueryAll("article p") {
		if text := el.Text(); len([]rune(text)) > e.config.MinSummaryLength {
			return text, true
		}
	}
	return "", false
}

// Image tries og:image, twitter:image, a large image inside the article
// and finally any raster image that is not an icon or logo.
func (e *Extractor) Image(doc Document) (string, bool) {
	return firstOf(doc,
		attrOf(`meta[property="og:image"]`, "content"),
		attrOf(`meta[name="twitter:image"]`, "content"),
		e.articleImage,
		anyRasterImage,
	)
}

func imageSource(el Element) (string, bool) {
	if src, ok := el.Attr("src"); ok {
		return src, true
	}
	return el.Attr("data-src")
}

func (e *Extractor) articleImage(doc Document) (string, bool) {
	for _, el := range doc.QueryAll(e.config.ImageContainer) {
		src, ok := imageSource(el)
		if !ok {
			continue
		}
		width := declaredWidth(el)
		if width == 0 || width > e.config.MinImageWidth {
			return src, true
		}
	}
	return "", false
}

func anyRasterImage(doc Document) (string, bool) {
	for _, el := range doc.QueryAll("img") {
		src, ok := imageSource(el)
		if !ok || strings.Contains(src, "icon") || strings.Contains(src, "logo") {
			continue
		}
		if rasterImage.MatchString(src) {
			return src, true
		}
	}
	return "", false
}

// declaredWidth parses the leading digits of the width attribute ("640",
// "640px"). Zero means no usable width was declared.
func declaredWidth(el Element) int {
	raw, ok := el.Attr("width")
	if !ok {
		return 0
	}
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	width, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0
	}
	return width
}

// Categories merges comma-split tag/keyword metas with category element
// text, keeping the first MaxCategories unique values in discovery order.
func (e *Extractor) Categories(doc Document) []string {
	categories := []string{}
	seen := map[string]bool{}
	add := func(value string) {
		value = strings.TrimSpace(value)
		if value == "" || seen[value] {
			return
		}
		seen[value] = true
		categories = append(categories, value)
	}

	for _, el := range doc.QueryAll(`meta[property="article:tag"], meta[name="keywords"]`) {
		content, ok := el.Attr("content")
		if !ok {
			continue
		}
		for _, tag := range strings.Split(content, ",") {
			add(tag)
		}
	}
	for _, el := range doc.QueryAll(e.config.CategorySelector) {
		add(el.Text())
	}

	if len(categories) > e.config.MaxCategories {
		categories = categories[:e.config.MaxCategories]
	}
	return categories
}
