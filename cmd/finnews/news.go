package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/auriorajaa/safe/newsfeed"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentCategories bounds parallel upstream requests.
const maxConcurrentCategories = 4

func newNewsCmd(opts *rootOptions) *cobra.Command {
	var (
		categories []string
		pageSize   int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "news",
		Short: "Fetch news for one or more categories",
		Long: `Fetch news for one or more categories. Categories are fetched
concurrently and printed in the order given.

The category "indonesian-investment" reads the regional feed and translates
it; every other category runs a keyword search. A failing category does not
stop the others: their results are printed and the command exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build()
			if err != nil {
				return err
			}
			defer a.Close()

			results, fetchErr := fetchAll(cmd.Context(), a.News, categories, pageSize)

			if asJSON {
				byCategory := make(map[string]*newsfeed.Result, len(results))
				for i, category := range categories {
					if results[i] != nil {
						byCategory[category] = results[i]
					}
				}
				if err := printJSON(cmd.OutOrStdout(), byCategory); err != nil {
					return err
				}
				return fetchErr
			}
			for i, category := range categories {
				if results[i] != nil {
					printNews(cmd.OutOrStdout(), category, results[i])
				}
			}
			return fetchErr
		},
	}

	cmd.Flags().StringSliceVarP(&categories, "category", "c", []string{newsfeed.DefaultCategory},
		"category to fetch (repeatable)")
	cmd.Flags().IntVarP(&pageSize, "page-size", "n", newsfeed.DefaultPageSize, "articles per category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON keyed by category")
	return cmd
}

type aggregator interface {
	Aggregate(ctx context.Context, category string, pageSize int) (*newsfeed.Result, error)
}

// fetchAll aggregates every category concurrently. results[i] belongs to
// categories[i] and is nil when that category failed. Failures are
// independent: one category's error neither cancels nor discards another.
func fetchAll(ctx context.Context, agg aggregator, categories []string, pageSize int) ([]*newsfeed.Result, error) {
	pageSize = newsfeed.ParsePageSize(strconv.Itoa(pageSize))
	results := make([]*newsfeed.Result, len(categories))
	errs := make([]error, len(categories))

	var g errgroup.Group
	g.SetLimit(maxConcurrentCategories)
	for i, category := range categories {
		g.Go(func() error {
			result, err := agg.Aggregate(ctx, category, pageSize)
			if err != nil {
				errs[i] = fmt.Errorf("category %q: %w", category, err)
				return nil
			}
			results[i] = result
			return nil
		})
	}
	g.Wait()

	return results, errors.Join(errs...)
}
