package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/use-agent/imdbapi/scraper"
)

var titleCmd = &cobra.Command{
	Use:   "title [flags] <imdbId>",
	Short: "Extract one title",
	Long: `Extract one title and print it as JSON.

Examples:
  imdbapi title tt0111161
  imdbapi title tt0903747 --episodes --language fr`,
	Args: cobra.ExactArgs(1),
	RunE: runTitleCmd,
}

func init() {
	rootCmd.AddCommand(titleCmd)
	titleCmd.Flags().StringP("language", "l", scraper.DefaultLocale, "Locale code (en, fr, de, es, it, pt)")
	titleCmd.Flags().Bool("episodes", false, "Crawl every season of a series")
}

func runTitleCmd(cmd *cobra.Command, args []string) error {
	language, _ := cmd.Flags().GetString("language")
	episodes, _ := cmd.Flags().GetBool("episodes")

	sc, session, err := startScraper(cmd.Context())
	if err != nil {
		return err
	}
	defer session.Stop()

	title, err := sc.FindTitle(cmd.Context(), args[0], scraper.NormalizeLocale(language), episodes)
	if err != nil {
		return fmt.Errorf("title %s: %w", args[0], err)
	}
	return printJSON(cmd.OutOrStdout(), title)
}
