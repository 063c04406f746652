package scraper

import (
	"context"

	"github.com/use-agent/imdbapi/models"
	"github.com/use-agent/imdbapi/parser"
)

func (s *Scraper) findTitle(ctx context.Context, id, locale string, includeEpisodes bool) (*models.Title, error) {
	title, err := s.extractTitlePage(ctx, id, locale)
	if err != nil {
		return nil, err
	}

	if title.Type == models.ContentTypeTVSeries && includeEpisodes {
		episodes, err := s.findEpisodes(ctx, id, locale)
		if err != nil {
			s.log.Warn("season crawl failed, returning title without episodes",
				"imdbId", id, "locale", locale, "error", err)
		} else {
			title.Episodes = episodes
		}
	}
	return title, nil
}

// extractTitlePage reads the title page on its own tab. The tab is closed
// before any season crawl so one lookup never holds two tabs.
func (s *Scraper) extractTitlePage(ctx context.Context, id, locale string) (*models.Title, error) {
	tab, err := s.session.OpenPage(ctx, locale)
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	if err := s.nav.Navigate(ctx, tab, s.titleURL(id, locale)); err != nil {
		return nil, err
	}

	html, err := snapshot(ctx, tab)
	if err != nil {
		return nil, err
	}
	page, err := parser.ParseTitlePage(html)
	if err != nil {
		return nil, models.ExtractionError("structured data block not found", err)
	}

	title, err := assembleTitle(id, page)
	if err != nil {
		return nil, err
	}
	if title.Type == models.ContentTypeTVSeries {
		seasons := page.SeasonCount()
		title.Seasons = &seasons
	}
	return title, nil
}

// assembleTitle maps a parsed title page to a Title. The release year is
// mandatory.
func assembleTitle(id string, page *parser.TitlePage) (*models.Title, error) {
	d := page.Data
	title := &models.Title{
		ID:            id,
		Title:         d.DisplayTitle(),
		OriginalTitle: d.Name,
		Type:          models.ParseContentType(d.Type),
		Synopsis:      d.Description,
		Rating:        d.Rating(),
		Genres:        []string(d.Genre),
		Keywords:      d.KeywordList(),
		PosterURL:     string(d.Image),
	}
	if title.Genres == nil {
		title.Genres = []string{}
	}

	var (
		year int
		ok   bool
	)
	if title.Type == models.ContentTypeTVEpisode {
		year, ok = parser.YearFromISODate(d.DatePublished)
		if secs, found := parser.ParseDuration(d.RuntimeToken()); found {
			title.Runtime = &secs
		}
	} else {
		year, ok = parser.YearFromTitle(page.DocumentTitle)
		if secs, found := parser.ParseRuntime(page.Description); found {
			title.Runtime = &secs
		}
	}
	if !ok {
		return nil, models.ExtractionError("release year not found", nil)
	}
	title.Year = year
	return title, nil
}
