package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/use-agent/imdbapi/models"
	"github.com/use-agent/imdbapi/scraper"
)

var searchCmd = &cobra.Command{
	Use:   "search [flags] <query>...",
	Short: "Search titles",
	Long: `Search titles and print the results as JSON.

Examples:
  imdbapi search "Inception"
  imdbapi search "The Office" --type tvSeries --year 2005`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringP("language", "l", scraper.DefaultLocale, "Locale code (en, fr, de, es, it, pt)")
	searchCmd.Flags().String("type", "", "Content type (movie, tvSeries or tvEpisode)")
	searchCmd.Flags().Int("year", 0, "Release year")
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	q, err := searchQueryFromFlags(cmd, args)
	if err != nil {
		return err
	}

	sc, session, err := startScraper(cmd.Context())
	if err != nil {
		return err
	}
	defer session.Stop()

	return printJSON(cmd.OutOrStdout(), sc.Search(cmd.Context(), q))
}

func searchQueryFromFlags(cmd *cobra.Command, args []string) (scraper.SearchQuery, error) {
	language, _ := cmd.Flags().GetString("language")
	contentType, _ := cmd.Flags().GetString("type")
	year, _ := cmd.Flags().GetInt("year")

	q := scraper.SearchQuery{
		Query:  strings.Join(args, " "),
		Locale: scraper.NormalizeLocale(language),
		Year:   year,
	}
	if contentType != "" {
		ct, ok := models.ContentTypeFromQuery(contentType)
		if !ok {
			return q, fmt.Errorf("unknown type %q: want movie, tvSeries or tvEpisode", contentType)
		}
		q.Type = ct
	}
	return q, nil
}
