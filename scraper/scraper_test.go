package scraper

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/imdbapi/browser"
	"github.com/use-agent/imdbapi/config"
	"github.com/use-agent/imdbapi/models"
)

const base = "https://imdb.test"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type observed struct {
	operation, outcome string
}

type recordingObserver struct {
	mu     sync.Mutex
	events []observed
}

func (r *recordingObserver) ExtractionObserved(operation, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, observed{operation, outcome})
}

func newTestScraper(t *testing.T, site *fakeSite, obs Observer) *Scraper {
	t.Helper()
	session := browser.NewSession(site, testLogger(), nil)
	require.NoError(t, session.Start(context.Background()))
	t.Cleanup(session.Stop)

	return New(session, config.ScraperConfig{
		BaseURL:           base,
		DefaultTimeout:    10 * time.Second,
		NavigationTimeout: time.Second,
		SeasonTabTimeout:  100 * time.Millisecond,
		SearchWaitTimeout: 100 * time.Millisecond,
		Retries:           1,
	}, testLogger(), obs)
}

func assertNoOpenTabs(t *testing.T, s *Scraper, site *fakeSite) {
	t.Helper()
	_, _, open := site.stats()
	assert.Zero(t, open, "fake pages left open")
	assert.Zero(t, s.Session().Stats().OpenTabs, "session tabs left open")
}

func TestNormalizeLocale(t *testing.T) {
	tests := map[string]string{
		"en":    "en",
		"fr":    "fr",
		"FR":    "fr",
		"fr-CA": "fr",
		"pt_BR": "pt",
		"ja":    "en",
		"":      "en",
		" de ":  "de",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeLocale(in), in)
	}
}

func TestURLs(t *testing.T) {
	s := &Scraper{baseURL: base}

	assert.Equal(t, base+"/title/tt0111161", s.titleURL("tt0111161", "en"))
	assert.Equal(t, base+"/fr/title/tt0111161", s.titleURL("tt0111161", "fr"))
	assert.Equal(t, base+"/title/tt0903747/episodes?season=1&ref_=ttep", s.episodesURL("tt0903747", "en"))
	assert.Equal(t, base+"/de/title/tt0903747/episodes?season=1&ref_=ttep", s.episodesURL("tt0903747", "de"))

	assert.Equal(t,
		base+"/search/title/?release_date=2010-01-01%2C2010-12-31&title=Inception&title_type=feature%2Ctv_movie%2Cshort%2Ctv_short",
		s.searchURL(SearchQuery{Query: "Inception", Type: models.ContentTypeMovie, Year: 2010}, "en"))
	assert.Equal(t,
		base+"/fr/search/title/?title=Breaking+Bad&title_type=tv_miniseries%2Ctv_special%2Ctv_series",
		s.searchURL(SearchQuery{Query: "Breaking Bad", Type: models.ContentTypeTVSeries}, "fr"))
	assert.Equal(t,
		base+"/search/title/?title=Pilot&title_type=tv_episode",
		s.searchURL(SearchQuery{Query: "Pilot", Type: models.ContentTypeTVEpisode}, "en"))
	assert.Equal(t,
		base+"/search/title/?title=Dune",
		s.searchURL(SearchQuery{Query: "Dune", Type: models.ContentTypeUnknown}, "en"))
}

func TestFindTitle_Movie(t *testing.T) {
	site := newFakeSite()
	site.pages[base+"/title/tt0111161"] = titleHTML(
		"The Shawshank Redemption (1994) - IMDb", "2h 22m | Drama", shawshankLD, "")
	obs := &recordingObserver{}
	s := newTestScraper(t, site, obs)

	title, err := s.FindTitle(context.Background(), "tt0111161", "en", true)
	require.NoError(t, err)
	require.NotNil(t, title)

	assert.Equal(t, "tt0111161", title.ID)
	assert.Equal(t, models.ContentTypeMovie, title.Type)
	assert.Equal(t, 1994, title.Year)
	require.NotNil(t, title.Rating)
	assert.Equal(t, 9.3, *title.Rating)
	require.NotNil(t, title.Runtime)
	assert.Equal(t, 2*3600+22*60, *title.Runtime)
	assert.Equal(t, []string{"Drama"}, title.Genres)
	assert.Equal(t, []string{"prison", "friendship"}, title.Keywords)
	assert.Equal(t, "https://img.test/shawshank.jpg", title.PosterURL)
	assert.Nil(t, title.Seasons)
	assert.Nil(t, title.Episodes)

	assertNoOpenTabs(t, s, site)
	assert.Equal(t, []observed{{"title", "ok"}}, obs.events)
}

func TestFindTitle_Episode(t *testing.T) {
	site := newFakeSite()
	ld := `{"@type":"TVEpisode","name":"Pilot","datePublished":"2008-01-20","timeRequired":"PT58M"}`
	site.pages[base+"/title/tt0959621"] = titleHTML(`"Breaking Bad" Pilot (TV Episode) - IMDb`, "Crime", ld, "")
	s := newTestScraper(t, site, nil)

	title, err := s.FindTitle(context.Background(), "tt0959621", "en", false)
	require.NoError(t, err)
	assert.Equal(t, models.ContentTypeTVEpisode, title.Type)
	assert.Equal(t, 2008, title.Year)
	require.NotNil(t, title.Runtime)
	assert.Equal(t, 58*60, *title.Runtime)
	assert.Empty(t, title.Genres)
	assert.NotNil(t, title.Genres)
}

func TestFindTitle_SeriesWithEpisodes(t *testing.T) {
	site := newFakeSite()
	s1 := base + "/title/tt0903747/episodes?season=1&ref_=ttep"
	s2 := base + "/title/tt0903747/episodes?season=2"
	site.pages[base+"/title/tt0903747"] = seriesHTML(2)
	site.pages[s1] = episodesHTML(1, 2, 3, "Sun, Jan 20, 2008")
	site.pages[s2] = episodesHTML(2, 2, 2, "Sun, Mar 8, 2009")
	site.tabLinks[s1] = []string{s1, s2}
	site.tabLinks[s2] = []string{s1, s2}
	s := newTestScraper(t, site, nil)

	title, err := s.FindTitle(context.Background(), "tt0903747", "en", true)
	require.NoError(t, err)

	assert.Equal(t, models.ContentTypeTVSeries, title.Type)
	assert.Equal(t, 2008, title.Year)
	require.NotNil(t, title.Seasons)
	assert.Equal(t, 2, *title.Seasons)

	require.Len(t, title.Episodes, 5)
	last := 0
	for _, ep := range title.Episodes {
		assert.Contains(t, []int{1, 2}, ep.Season)
		assert.GreaterOrEqual(t, ep.Season, last)
		last = ep.Season
		assert.Equal(t, "tt0903747", ep.SeriesID)
		assert.Equal(t, "Breaking Bad", ep.SeriesTitle)
		require.NotNil(t, ep.Release)
		require.NotNil(t, ep.Year)
		assert.Equal(t, ep.Release.Year(), *ep.Year)
	}

	first := title.Episodes[0]
	assert.Equal(t, "tt90101", first.ID)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "Episode 1", first.Title)
	assert.True(t, first.Release.Equal(time.Date(2008, time.January, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2009, *title.Episodes[4].Year)

	assertNoOpenTabs(t, s, site)
}

func TestFindTitle_SeriesWithEpisodesUsesOneTabAtATime(t *testing.T) {
	site := newFakeSite()
	s1 := base + "/title/tt0903747/episodes?season=1&ref_=ttep"
	site.pages[base+"/title/tt0903747"] = seriesHTML(1)
	site.pages[s1] = episodesHTML(1, 1, 2, "Sun, Jan 20, 2008")
	s := newTestScraper(t, site, nil)
	s.Session().SetTabLimit(1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	title, err := s.FindTitle(ctx, "tt0903747", "en", true)
	require.NoError(t, err)
	assert.Len(t, title.Episodes, 2)

	_, opened, _ := site.stats()
	assert.Equal(t, 2, opened)
	assertNoOpenTabs(t, s, site)
}

func TestFindTitle_SeriesWithoutEpisodes(t *testing.T) {
	site := newFakeSite()
	site.pages[base+"/title/tt0903747"] = seriesHTML(5)
	s := newTestScraper(t, site, nil)

	title, err := s.FindTitle(context.Background(), "tt0903747", "en", false)
	require.NoError(t, err)
	require.NotNil(t, title.Seasons)
	assert.Equal(t, 5, *title.Seasons)
	assert.Nil(t, title.Episodes)

	_, opened, _ := site.stats()
	assert.Equal(t, 1, opened)
}

func TestFindTitle_SeasonCrawlFailureKeepsTitle(t *testing.T) {
	site := newFakeSite()
	s1 := base + "/title/tt0903747/episodes?season=1&ref_=ttep"
	site.pages[base+"/title/tt0903747"] = seriesHTML(2)
	site.pages[s1] = `<html><body><p>No episodes</p></body></html>`
	s := newTestScraper(t, site, nil)

	title, err := s.FindTitle(context.Background(), "tt0903747", "en", true)
	require.NoError(t, err)
	assert.Equal(t, 2, *title.Seasons)
	assert.Nil(t, title.Episodes)
	assertNoOpenTabs(t, s, site)
}

func TestFindTitle_MissingStructuredData(t *testing.T) {
	site := newFakeSite()
	site.pages[base+"/title/tt0000000"] = `<html><head><title>404 Error - IMDb</title></head><body></body></html>`
	obs := &recordingObserver{}
	s := newTestScraper(t, site, obs)

	title, err := s.FindTitle(context.Background(), "tt0000000", "en", false)
	assert.Nil(t, title)
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeExtraction, models.ErrorCode(err))

	_, opened, _ := site.stats()
	assert.Equal(t, 1, opened, "extraction failures are not retried")
	assertNoOpenTabs(t, s, site)
	assert.Equal(t, []observed{{"title", models.ErrCodeExtraction}}, obs.events)
}

func TestFindTitle_MissingYear(t *testing.T) {
	site := newFakeSite()
	site.pages[base+"/title/tt1"] = titleHTML("Untitled - IMDb", "Drama", `{"@type":"Movie","name":"Untitled"}`, "")
	s := newTestScraper(t, site, nil)

	title, err := s.FindTitle(context.Background(), "tt1", "en", false)
	assert.Nil(t, title)
	assert.Equal(t, models.ErrCodeExtraction, models.ErrorCode(err))
}

func TestFindTitle_RetriesAfterNavigationFailure(t *testing.T) {
	site := newFakeSite()
	url := base + "/title/tt0111161"
	site.pages[url] = titleHTML("The Shawshank Redemption (1994) - IMDb", "2h 22m | Drama", shawshankLD, "")
	site.failNav[url] = 1
	s := newTestScraper(t, site, nil)

	title, err := s.FindTitle(context.Background(), "tt0111161", "en", false)
	require.NoError(t, err)
	assert.Equal(t, 1994, title.Year)

	launches, opened, _ := site.stats()
	assert.Equal(t, 2, launches, "the failed navigation restarted the browser")
	assert.Equal(t, 2, opened)
	assert.Equal(t, uint64(1), s.Session().Stats().Restarts)
	assertNoOpenTabs(t, s, site)
}

func TestFindTitle_GivesUpAfterRetries(t *testing.T) {
	site := newFakeSite()
	url := base + "/title/tt0111161"
	site.pages[url] = titleHTML("The Shawshank Redemption (1994) - IMDb", "", shawshankLD, "")
	site.failNav[url] = 10
	obs := &recordingObserver{}
	s := newTestScraper(t, site, obs)

	title, err := s.FindTitle(context.Background(), "tt0111161", "en", false)
	assert.Nil(t, title)
	assert.Equal(t, models.ErrCodeNavigation, models.ErrorCode(err))

	launches, opened, _ := site.stats()
	assert.Equal(t, 3, launches)
	assert.Equal(t, 2, opened)
	assertNoOpenTabs(t, s, site)
	assert.Equal(t, []observed{{"title", models.ErrCodeNavigation}}, obs.events)
}

func TestFindTitle_PageOpenFailsOnce(t *testing.T) {
	site := newFakeSite()
	site.pages[base+"/fr/title/tt0111161"] = titleHTML(
		"Les Évadés (1994) - IMDb", "2h 22m | Drame", shawshankLD, "")
	site.newPageErrs = 1
	s := newTestScraper(t, site, nil)

	title, err := s.FindTitle(context.Background(), "tt0111161", "fr-FR", false)
	require.NoError(t, err)
	assert.Equal(t, 1994, title.Year)

	launches, _, _ := site.stats()
	assert.Equal(t, 2, launches)
}

func TestFindEpisodes_TrustsFirstSeasonCount(t *testing.T) {
	site := newFakeSite()
	s1 := base + "/title/tt0903747/episodes?season=1&ref_=ttep"
	s2 := base + "/title/tt0903747/episodes?season=2"
	site.pages[s1] = episodesHTML(1, 2, 1, "")
	// A tab list that grows mid-crawl does not extend it.
	site.pages[s2] = episodesHTML(2, 5, 1, "")
	site.tabLinks[s1] = []string{s1, s2}
	site.tabLinks[s2] = []string{s1, s2, "x", "y", "z"}
	s := newTestScraper(t, site, nil)

	episodes, err := s.FindEpisodes(context.Background(), "tt0903747", "en")
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, 1, episodes[0].Season)
	assert.Equal(t, 2, episodes[1].Season)
	assert.Nil(t, episodes[0].Release)
	assertNoOpenTabs(t, s, site)
}

func TestFindEpisodes_SeasonCounts(t *testing.T) {
	for _, seasons := range []int{1, 3, 7} {
		site := newFakeSite()
		var urls []string
		for i := 1; i <= seasons; i++ {
			u := base + "/title/tt1/episodes?season=" + strconv.Itoa(i)
			if i == 1 {
				u = base + "/title/tt1/episodes?season=1&ref_=ttep"
			}
			urls = append(urls, u)
			site.pages[u] = episodesHTML(i, seasons, 2, "")
		}
		for _, u := range urls {
			site.tabLinks[u] = urls
		}
		s := newTestScraper(t, site, nil)

		episodes, err := s.FindEpisodes(context.Background(), "tt1", "en")
		require.NoError(t, err)
		require.Len(t, episodes, 2*seasons)
		for i, ep := range episodes {
			assert.Equal(t, i/2+1, ep.Season)
		}
	}
}

func TestFindEpisodes_LocalizedDates(t *testing.T) {
	site := newFakeSite()
	s1 := base + "/fr/title/tt0903747/episodes?season=1&ref_=ttep"
	site.pages[s1] = episodesHTML(1, 1, 1, "dim. 20 janv. 2008")
	s := newTestScraper(t, site, nil)

	episodes, err := s.FindEpisodes(context.Background(), "tt0903747", "fr")
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	require.NotNil(t, episodes[0].Release)
	assert.True(t, episodes[0].Release.Equal(time.Date(2008, time.January, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2008, *episodes[0].Year)
}

func TestSearch_FilteredMovies(t *testing.T) {
	site := newFakeSite()
	url := base + "/search/title/?release_date=2010-01-01%2C2010-12-31&title=Inception&title_type=feature%2Ctv_movie%2Cshort%2Ctv_short"
	site.pages[url] = `<html><body><ul>` +
		searchItemHTML(1, "tt1375666", "Inception", "", "2010") +
		searchItemHTML(2, "tt5295894", "Inception: The Cobol Job", "TV Short", "2010") +
		searchItemHTML(3, "tt1790736", "Inception: Motion Comic", "TV Movie", "") +
		`</ul></body></html>`
	s := newTestScraper(t, site, nil)

	results := s.Search(context.Background(), SearchQuery{
		Query:  "Inception",
		Locale: "en",
		Type:   models.ContentTypeMovie,
		Year:   2010,
	})
	require.Len(t, results, 3)
	assert.Equal(t, "tt1375666", results[0].ID)
	assert.Equal(t, "Inception", results[0].Title)
	for _, r := range results {
		assert.Equal(t, models.ContentTypeMovie, r.Type)
		if r.Year != nil {
			assert.Equal(t, 2010, *r.Year)
		}
	}
	assert.Nil(t, results[2].Year)
	assertNoOpenTabs(t, s, site)
}

func TestSearch_NoResults(t *testing.T) {
	site := newFakeSite()
	site.pages[base+"/search/title/?title=zzzz"] = `<html><body><p>No results</p></body></html>`
	s := newTestScraper(t, site, nil)

	results := s.Search(context.Background(), SearchQuery{Query: "zzzz"})
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assertNoOpenTabs(t, s, site)
}

func TestSearch_NavigationFailureReturnsEmpty(t *testing.T) {
	site := newFakeSite()
	obs := &recordingObserver{}
	s := newTestScraper(t, site, obs)

	results := s.Search(context.Background(), SearchQuery{Query: "unreachable", Locale: "de"})
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, []observed{{"search", models.ErrCodeNavigation}}, obs.events)
	assertNoOpenTabs(t, s, site)
}
