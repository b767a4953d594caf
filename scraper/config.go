package scraper

// ArticleConfig defines how to extract fields from an article page. Every
// list is an ordered fallback chain: the first selector producing a value
// wins.
type ArticleConfig struct {
	AuthorSelectors    []string `json:"author_selectors" yaml:"author_selectors"`
	DateSelectors      []string `json:"date_selectors" yaml:"date_selectors"`
	ImageContainer     string   `json:"image_container" yaml:"image_container"`
	ContentSelectors   []string `json:"content_selectors" yaml:"content_selectors"`
	CategorySelector   string   `json:"category_selector" yaml:"category_selector"`
	BoilerplateMarkers []string `json:"boilerplate_markers" yaml:"boilerplate_markers"`

	MinParagraphLength      int `json:"min_paragraph_length" yaml:"min_paragraph_length"`
	FallbackParagraphLength int `json:"fallback_paragraph_length" yaml:"fallback_paragraph_length"`
	MinParagraphs           int `json:"min_paragraphs" yaml:"min_paragraphs"`
	MaxCategories           int `json:"max_categories" yaml:"max_categories"`
	MinSummaryLength        int `json:"min_summary_length" yaml:"min_summary_length"`
	MinImageWidth           int `json:"min_image_width" yaml:"min_image_width"`
}

// DefaultArticleConfig returns the selector chains tuned for Business
// Insider article pages.
func DefaultArticleConfig() ArticleConfig {
	return ArticleConfig{
		AuthorSelectors: []string{
			".author-name",
			".contributor-name",
			`[data-e2e-name="byline-author"]`,
			".story-meta .story-author",
		},
		DateSelectors: []string{
			"time[datetime]",
			`meta[property="article:published_time"]`,
			`meta[name="published_time"]`,
			`meta[itemprop="datePublished"]`,
			".byline-timestamp",
			".published-date",
			".date",
			`[data-testid="published-timestamp"]`,
		},
		ImageContainer: "article img, .article-body img, .article img",
		ContentSelectors: []string{
			"article p",
			".article-body p",
			".article p",
			".post-content p",
			".entry-content p",
			".story-content p",
			`[data-component="text-block"]`,
		},
		CategorySelector: `.category, .tag, [data-testid="tag"]`,
		BoilerplateMarkers: []string{
			"ADVERTISEMENT",
			"Click here",
			"Sign up",
			"Subscribe",
			"©",
			"Copyright",
		},
		MinParagraphLength:      20,
		FallbackParagraphLength: 40,
		MinParagraphs:           4,
		MaxCategories:           5,
		MinSummaryLength:        100,
		MinImageWidth:           300,
	}
}
