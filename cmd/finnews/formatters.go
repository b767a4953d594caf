package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/auriorajaa/safe/categories"
	"github.com/auriorajaa/safe/newsfeed"
	"github.com/auriorajaa/safe/scraper"
)

// truncate shortens s to limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// printArticle prints an extracted article in human-readable form
func printArticle(w io.Writer, article *scraper.ExtractedArticle) {
	fmt.Fprintln(w, article.Title)
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(article.Title))))

	author := article.Author
	if author == "" {
		author = "Unknown"
	}
	fmt.Fprintf(w, "By %s | Published: %s\n", author, article.PublishedDate)
	if len(article.Categories) > 0 {
		fmt.Fprintf(w, "Categories: %s\n", strings.Join(article.Categories, ", "))
	}
	if article.ImageURL != nil {
		fmt.Fprintf(w, "Image: %s\n", *article.ImageURL)
	}
	if article.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", article.Summary)
	}

	fmt.Fprintln(w)
	for _, paragraph := range article.Content {
		fmt.Fprintf(w, "%s\n\n", paragraph)
	}
	fmt.Fprintf(w, "Source: %s\n", article.SourceURL)
}

// printNews prints one category's result
func printNews(w io.Writer, category string, result *newsfeed.Result) {
	fmt.Fprintf(w, "== %s (%d articles) ==\n", category, len(result.Articles))
	if result.TranslationMessage != "" {
		fmt.Fprintf(w, "%s\n", result.TranslationMessage)
	}
	fmt.Fprintln(w)

	if len(result.Articles) == 0 {
		fmt.Fprintln(w, "No articles to display.")
		fmt.Fprintln(w)
		return
	}

	for _, article := range result.Articles {
		fmt.Fprintf(w, "%s\n", truncate(article.Title, 70))
		fmt.Fprintf(w, "   %s | Published: %s\n", article.Source.Name, article.PublishedAt)
		if article.OriginalTitle != "" {
			fmt.Fprintf(w, "   Original: %s\n", truncate(article.OriginalTitle, 70))
		}
		if article.Description != "" {
			fmt.Fprintf(w, "   %s\n", truncate(article.Description, 150))
		}
		fmt.Fprintf(w, "   URL: %s\n", article.URL)
		fmt.Fprintln(w)
	}
}

// printCategories prints categories as a table
func printCategories(w io.Writer, list []categories.Category) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No categories configured.")
		return
	}

	fmt.Fprintf(w, "%-20s %-16s %s\n", "NAME", "UPDATED", "TITLE QUERY")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, category := range list {
		fmt.Fprintf(w, "%-20s %-16s %s\n",
			truncate(category.Name, 20),
			category.UpdatedAt.Format("2006-01-02 15:04"),
			truncate(category.TitleQuery, 62),
		)
	}
}
