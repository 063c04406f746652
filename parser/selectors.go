package parser

import "github.com/andybalholm/cascadia"

// Every IMDb selector lives here so that a markup change on the site is a
// one-file edit. The exported strings are the anchors the browser waits on
// or clicks; the compiled matchers are used against HTML snapshots.
const (
	SeasonTabSelector  = `a[data-testid="tab-season-entry"]`
	SearchItemSelector = `.ipc-metadata-list-summary-item`
)

var (
	// title page
	selStructuredData = cascadia.MustCompile(`script[type="application/ld+json"]`)
	selOGDescription  = cascadia.MustCompile(`meta[property="og:description"]`)
	selDocumentTitle  = cascadia.MustCompile(`head title`)
	selSeasonSelect   = cascadia.MustCompile(`select#browse-episodes-season`)

	// episodes page
	selSeriesSubtitle  = cascadia.MustCompile(`hgroup h2[data-testid="subtitle"]`)
	selSeasonTab       = cascadia.MustCompile(SeasonTabSelector)
	selEpisodeItem     = cascadia.MustCompile(`article.episode-item-wrapper`)
	selEpisodeRelease  = cascadia.MustCompile(`h4[data-testid="slate-list-card-title"] + span`)
	selEpisodeSynopsis = cascadia.MustCompile(`div.ipc-html-content-inner-div[role="presentation"]`)

	// search page
	selSearchItem  = cascadia.MustCompile(SearchItemSelector)
	selSearchTitle = cascadia.MustCompile(`h3.ipc-title__text`)
	selSearchType  = cascadia.MustCompile(`span.dli-title-type-data`)
	selSearchBadge = cascadia.MustCompile(`span.dli-title-metadata-item`)

	// shared card parts
	selPoster      = cascadia.MustCompile(`img.ipc-image`)
	selTitleLink   = cascadia.MustCompile(`a.ipc-title-link-wrapper`)
	selRatingValue = cascadia.MustCompile(`span.ipc-rating-star--rating`)
)
