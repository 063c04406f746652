// Package scraper extracts titles, episodes and search results from IMDb
// through a shared browser session.
package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/imdbapi/browser"
	"github.com/use-agent/imdbapi/config"
	"github.com/use-agent/imdbapi/models"
)

// Observer receives one event per finished public operation. outcome is
// "ok" or the error code.
type Observer interface {
	ExtractionObserved(operation, outcome string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ExtractionObserved(string, string, time.Duration) {}

// Scraper runs extractions on a browser session. It is safe for concurrent
// use: every call works on its own tab.
type Scraper struct {
	session *browser.Session
	nav     *browser.Navigator
	cfg     config.ScraperConfig
	baseURL string
	log     *slog.Logger
	obs     Observer
}

// New creates a Scraper on session. log and obs may be nil.
func New(session *browser.Session, cfg config.ScraperConfig, log *slog.Logger, obs Observer) *Scraper {
	if log == nil {
		log = slog.Default()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.imdb.com"
	}
	if cfg.SeasonTabTimeout <= 0 {
		cfg.SeasonTabTimeout = 3 * time.Second
	}
	if cfg.SearchWaitTimeout <= 0 {
		cfg.SearchWaitTimeout = 5 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Scraper{
		session: session,
		nav:     browser.NewNavigator(session, cfg.NavigationTimeout),
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		log:     log.With("component", "scraper"),
		obs:     obs,
	}
}

// Session returns the browser session the scraper runs on.
func (s *Scraper) Session() *browser.Session { return s.session }

// FindTitle extracts one title. For a series with includeEpisodes set, the
// episodes of every season are attached. On failure the title is nil and
// the error is a *models.ScrapeError.
func (s *Scraper) FindTitle(ctx context.Context, id, locale string, includeEpisodes bool) (*models.Title, error) {
	locale = NormalizeLocale(locale)

	var title *models.Title
	err := s.run(ctx, "title", func(ctx context.Context) error {
		t, err := s.findTitle(ctx, id, locale, includeEpisodes)
		title = t
		return err
	})
	if err != nil {
		s.log.Error("title extraction failed", "imdbId", id, "locale", locale, "error", err)
		return nil, err
	}
	return title, nil
}

// FindEpisodes extracts the episodes of every season of a series.
func (s *Scraper) FindEpisodes(ctx context.Context, seriesID, locale string) ([]models.Episode, error) {
	locale = NormalizeLocale(locale)

	var episodes []models.Episode
	err := s.run(ctx, "episodes", func(ctx context.Context) error {
		eps, err := s.findEpisodes(ctx, seriesID, locale)
		episodes = eps
		return err
	})
	if err != nil {
		s.log.Error("episode extraction failed", "imdbId", seriesID, "locale", locale, "error", err)
		return nil, err
	}
	return episodes, nil
}

// Search runs a title search. It never fails: when the results cannot be
// loaded the list is empty and the cause is logged.
func (s *Scraper) Search(ctx context.Context, q SearchQuery) []models.SearchResult {
	locale := NormalizeLocale(q.Locale)

	var results []models.SearchResult
	err := s.run(ctx, "search", func(ctx context.Context) error {
		r, err := s.search(ctx, q, locale)
		results = r
		return err
	})
	if err != nil {
		s.log.Error("search failed", "query", q.Query, "locale", locale, "error", err)
		return []models.SearchResult{}
	}
	return results
}

// run executes fn under the operation timeout. A browser restart during fn
// invalidates its tab, so a session or navigation failure re-runs fn from
// scratch, at most cfg.Retries times.
func (s *Scraper) run(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	if s.cfg.DefaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.DefaultTimeout)
		defer cancel()
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil || attempt >= s.cfg.Retries || !models.IsRetryable(err) || ctx.Err() != nil {
			break
		}
		s.log.Warn("retrying after browser recovery", "operation", op, "attempt", attempt+1, "error", err)
	}

	outcome := "ok"
	if err != nil {
		outcome = models.ErrorCode(err)
	}
	s.obs.ExtractionObserved(op, outcome, time.Since(start))
	return err
}

// snapshot returns the rendered HTML of tab.
func snapshot(ctx context.Context, tab *browser.Tab) (string, error) {
	html, err := tab.HTML(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", models.NewScrapeError(models.ErrCodeTimeout, "request canceled while reading page", err)
		}
		return "", models.ExtractionError("failed to read page", err)
	}
	return html, nil
}
