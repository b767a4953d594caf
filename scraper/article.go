package scraper

import "strings"

// ExtractedArticle is the normalized result of scraping one article page.
type ExtractedArticle struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	PublishedDate string   `json:"publishedDate"`
	Summary       string   `json:"summary"`
	ImageURL      *string  `json:"imageUrl"`
	Content       []string `json:"content"`
	Categories    []string `json:"categories"`
	SourceURL     string   `json:"sourceUrl"`
	ReadMoreURL   string   `json:"readMoreUrl"`
}

// Usable reports whether the article has a title and at least one
// non-empty paragraph. Callers treat an unusable article as "content could
// not be retrieved".
func (a *ExtractedArticle) Usable() bool {
	if a == nil || a.Title == "" {
		return false
	}
	for _, p := range a.Content {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
