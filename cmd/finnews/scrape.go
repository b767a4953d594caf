package main

import (
	"github.com/auriorajaa/safe/apperr"
	"github.com/spf13/cobra"
)

func newScrapeCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Extract one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build()
			if err != nil {
				return err
			}
			defer a.Close()

			article, err := a.Scraper.Scrape(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !article.Usable() {
				return apperr.Empty("content could not be retrieved")
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), article)
			}
			printArticle(cmd.OutOrStdout(), article)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the article as JSON")
	return cmd
}
