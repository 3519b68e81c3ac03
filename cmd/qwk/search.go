package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"qwksearch/internal/config"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/services"
	"qwksearch/internal/service/metasearch"
	"qwksearch/internal/service/search"
)

func searchCMD(cfg *config.Config) *cobra.Command {
	var (
		category   string
		page       int
		lang       string
		recency    string
		safeSearch bool
		publicOnly bool
		asJSON     bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a query through the metasearch layer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(models.Categories, category) {
				return fmt.Errorf("invalid category %q, want one of %s", category, strings.Join(models.Categories, ", "))
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			client := metasearch.NewClient(
				metasearch.NewInstancePool(metasearch.PublicInstances),
				logger,
				metasearch.WithTimeout(cfg.SearchTimeout),
				metasearch.WithMaxRetries(cfg.SearchMaxRetries),
				metasearch.WithProxy(cfg.SearchProxy),
			)
			var opts []search.Option
			if cfg.TavilyAPIKey != "" {
				opts = append(opts, search.WithFallback(search.NewTavilyClient(cfg.TavilyAPIKey)))
			}
			searcher := search.NewService(client, cfg.SearxngURL, logger, opts...)

			start := time.Now()
			resp, err := searcher.Search(cmd.Context(), services.SearchRequest{
				Query: models.SearchQuery{
					Text:       strings.Join(args, " "),
					Category:   category,
					Recency:    recency,
					SafeSearch: safeSearch,
					Language:   lang,
					Page:       page,
				}.WithDefaults(),
				PublicOnly: publicOnly,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			for i, r := range resp.Results {
				fmt.Fprintf(out, "%2d. %s\n    %s\n", i+1, r.Title, r.URL)
				if r.Snippet != "" {
					fmt.Fprintf(out, "    %s\n", r.Snippet)
				}
			}
			if len(resp.Suggestions) > 0 {
				fmt.Fprintf(out, "\nsuggestions: %s\n", strings.Join(resp.Suggestions, "; "))
			}
			fmt.Fprintf(out, "\n%d results in %s\n", len(resp.Results), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "cat", "general", "result category")
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	cmd.Flags().StringVar(&lang, "lang", "", "language code, e.g. en-US")
	cmd.Flags().StringVar(&recency, "recency", "", "day, week, month or year")
	cmd.Flags().BoolVar(&safeSearch, "safesearch", false, "filter explicit results")
	cmd.Flags().BoolVar(&publicOnly, "public", false, "skip the private deployment")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every backend attempt")
	return cmd
}
