package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/auriorajaa/safe/categories"
	"github.com/spf13/cobra"
)

var errNoCategoryStore = errors.New("no category store configured (set storage.categories_dsn or FINNEWS_CATEGORIES_DSN)")

func newCategoriesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage keyword category queries",
	}

	openStore := func() (*categories.Store, error) {
		if opts.cfg.Storage.CategoriesDSN == "" {
			return nil, errNoCategoryStore
		}
		return categories.NewStore(opts.cfg.Storage.CategoriesDSN)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List()
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}
			printCategories(cmd.OutOrStdout(), list)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <name> <title-query>",
		Short: "Create a category or replace its query",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			category, err := store.Upsert(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return fmt.Errorf("failed to save category: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved category %q\n", category.Name)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(args[0]); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %q\n", categories.Normalize(args[0]))
			return nil
		},
	}

	cmd.AddCommand(list, set, del)
	return cmd
}
