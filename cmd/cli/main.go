// Package main implements the Quicksearch CLI: lookups, catalog import and a terminal search box.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dsjohal14/quicksearch/internal/libs/config"
	"github.com/dsjohal14/quicksearch/internal/libs/obs"
	"github.com/dsjohal14/quicksearch/internal/scope/catalog"
	"github.com/dsjohal14/quicksearch/internal/streamlite"
	"github.com/dsjohal14/quicksearch/internal/widget"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var apiURL string

	root := &cobra.Command{
		Use:          "quicksearch",
		Short:        "Quicksearch CLI",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			obs.InitLogger(os.Getenv("LOG_LEVEL"))
		},
	}
	root.PersistentFlags().StringVar(&apiURL, "api", envOr("QUICKSEARCH_API", "http://localhost:8080"), "API base URL")

	root.AddCommand(
		newSuggestCmd(&apiURL),
		newCatalogCmd(),
		newTUICmd(&apiURL),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func suggestURL(apiURL string) string {
	return strings.TrimRight(apiURL, "/") + "/search/ajax/suggest"
}

func newSuggestCmd(apiURL *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "suggest <query>",
		Short: "Print suggestions for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher, err := widget.NewHTTPFetcher(suggestURL(*apiURL), nil)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			resp, err := fetcher.Fetch(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, it := range resp.Results {
				fmt.Fprintf(out, "%-40s %12s  %s\n", it.Name, it.Price, it.URL)
			}
			fmt.Fprintf(out, "\n%d result(s): %s\n", resp.Info.Size, resp.Info.URL)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the product catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <feed.jsonl>",
		Short: "Import a JSONL product feed into DATA_DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, err := catalog.NewStore(cfg.DataDir)
			if err != nil {
				return err
			}

			feed := streamlite.NewFileFeed(args[0], store, obs.Logger("feed"))
			if err := feed.Start(cmd.Context()); err != nil {
				_ = store.Close()
				return err
			}
			if err := store.Close(); err != nil {
				return fmt.Errorf("failed to save catalog: %w", err)
			}

			stats := feed.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d product(s), skipped %d, catalog now has %d\n",
				stats.Loaded, stats.Skipped, store.Count())
			return nil
		},
	})

	return cmd
}
