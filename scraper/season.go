package scraper

import (
	"context"
	"fmt"

	"github.com/use-agent/imdbapi/browser"
	"github.com/use-agent/imdbapi/models"
	"github.com/use-agent/imdbapi/parser"
)

// findEpisodes crawls the season tabs of a series' episodes listing,
// starting at season 1. The season count is read from the first page only;
// the counter grows on every pass, so the crawl ends after that many pages.
func (s *Scraper) findEpisodes(ctx context.Context, seriesID, locale string) ([]models.Episode, error) {
	tab, err := s.session.OpenPage(ctx, locale)
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	if err := s.nav.Navigate(ctx, tab, s.episodesURL(seriesID, locale)); err != nil {
		return nil, err
	}

	var (
		seriesTitle string
		seasonCount int
		episodes    = []models.Episode{}
	)
	for season := 1; ; {
		if err := s.waitForSeasonTabs(ctx, tab); err != nil {
			return nil, err
		}
		html, err := snapshot(ctx, tab)
		if err != nil {
			return nil, err
		}
		page, err := parser.ParseEpisodesPage(html)
		if err != nil {
			return nil, models.ExtractionError("failed to parse episodes page", err)
		}

		if season == 1 {
			if page.SeriesTitle == "" {
				return nil, models.ExtractionError("series title not found", nil)
			}
			seriesTitle = page.SeriesTitle
			count, ok := page.SeasonCount()
			if !ok {
				return nil, models.ExtractionError("season tabs not found", nil)
			}
			seasonCount = count
			s.log.Debug("crawling seasons", "imdbId", seriesID, "seasons", seasonCount)
		}

		for _, raw := range page.Episodes {
			episodes = append(episodes, assembleEpisode(raw, seriesID, seriesTitle, season, locale))
		}

		season++
		if season > seasonCount {
			break
		}
		if err := s.nav.Follow(ctx, tab, parser.SeasonTabSelector, season-1); err != nil {
			return nil, err
		}
	}
	return episodes, nil
}

func (s *Scraper) waitForSeasonTabs(ctx context.Context, tab *browser.Tab) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.SeasonTabTimeout)
	defer cancel()

	if err := tab.WaitElement(waitCtx, parser.SeasonTabSelector, false); err != nil {
		if ctx.Err() != nil {
			return models.NewScrapeError(models.ErrCodeTimeout, "request canceled while waiting for season tabs", err)
		}
		return models.ExtractionError(fmt.Sprintf("season tabs not found within %s", s.cfg.SeasonTabTimeout), err)
	}
	return nil
}

func assembleEpisode(raw parser.RawEpisode, seriesID, seriesTitle string, season int, locale string) models.Episode {
	ep := models.Episode{
		ID:          raw.ID,
		SeriesID:    seriesID,
		Title:       raw.Title,
		SeriesTitle: seriesTitle,
		Season:      season,
		Number:      raw.Number,
		Synopsis:    raw.Synopsis,
		Rating:      raw.Rating,
		PosterURL:   raw.PosterURL,
	}
	if release, ok := parser.ParseLocalizedDate(raw.RawRelease, locale); ok {
		year := release.Year()
		ep.Release = &release
		ep.Year = &year
	}
	return ep
}
