package scraper

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/use-agent/imdbapi/models"
)

// DefaultLocale is used for unsupported or empty locales.
const DefaultLocale = "en"

// supportedLocales are the languages the site serves under a /<locale>/
// path prefix. English is served without a prefix.
var supportedLocales = map[string]struct{}{
	"en": {}, "fr": {}, "de": {}, "es": {}, "it": {}, "pt": {},
}

// titleTypeCodes maps a content type to the site's title_type filter.
var titleTypeCodes = map[models.ContentType]string{
	models.ContentTypeMovie:     "feature,tv_movie,short,tv_short",
	models.ContentTypeTVSeries:  "tv_miniseries,tv_special,tv_series",
	models.ContentTypeTVEpisode: "tv_episode",
}

// NormalizeLocale reduces a language tag to its lowercase primary subtag
// ("fr-CA" -> "fr") and falls back to English when it is not supported.
func NormalizeLocale(raw string) string {
	l := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(l, "-_"); i >= 0 {
		l = l[:i]
	}
	if _, ok := supportedLocales[l]; ok {
		return l
	}
	return DefaultLocale
}

func (s *Scraper) localized(locale, path string) string {
	if locale == DefaultLocale {
		return s.baseURL + path
	}
	return s.baseURL + "/" + locale + path
}

func (s *Scraper) titleURL(id, locale string) string {
	return s.localized(locale, "/title/"+id)
}

func (s *Scraper) episodesURL(seriesID, locale string) string {
	return s.localized(locale, "/title/"+seriesID+"/episodes?season=1&ref_=ttep")
}

func (s *Scraper) searchURL(q SearchQuery, locale string) string {
	params := url.Values{}
	params.Set("title", q.Query)
	if codes, ok := titleTypeCodes[q.Type]; ok {
		params.Set("title_type", codes)
	}
	if q.Year > 0 {
		y := strconv.Itoa(q.Year)
		params.Set("release_date", y+"-01-01,"+y+"-12-31")
	}
	return s.localized(locale, "/search/title/?"+params.Encode())
}
