package scraper

import (
	"context"

	"github.com/use-agent/imdbapi/models"
	"github.com/use-agent/imdbapi/parser"
)

// SearchQuery filters a title search. Zero Type and Year mean no filter.
type SearchQuery struct {
	Query  string
	Locale string
	Type   models.ContentType
	Year   int
}

func (s *Scraper) search(ctx context.Context, q SearchQuery, locale string) ([]models.SearchResult, error) {
	tab, err := s.session.OpenPage(ctx, locale)
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	if err := s.nav.Navigate(ctx, tab, s.searchURL(q, locale)); err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.SearchWaitTimeout)
	defer cancel()
	if err := tab.WaitElement(waitCtx, parser.SearchItemSelector, true); err != nil {
		if ctx.Err() != nil {
			return nil, models.NewScrapeError(models.ErrCodeTimeout, "request canceled while waiting for results", err)
		}
		s.log.Info("no search results rendered", "query", q.Query, "locale", locale)
		return []models.SearchResult{}, nil
	}

	html, err := snapshot(ctx, tab)
	if err != nil {
		return nil, err
	}
	raws, err := parser.ParseSearchPage(html)
	if err != nil {
		return nil, models.ExtractionError("failed to parse search page", err)
	}

	results := make([]models.SearchResult, 0, len(raws))
	for _, r := range raws {
		results = append(results, models.SearchResult{
			ID:        r.ID,
			Title:     r.Title,
			PosterURL: r.PosterURL,
			Type:      models.ParseContentType(r.Category),
			Rating:    r.Rating,
			Year:      r.Year,
		})
	}
	return results, nil
}
