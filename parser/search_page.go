package parser

import (
	"github.com/PuerkitoBio/goquery"
)

// defaultSearchCategory is used when a result carries no category label;
// plain feature films are listed without one.
const defaultSearchCategory = "Movie"

// RawSearchResult is one search listing entry before type classification.
type RawSearchResult struct {
	ID        string
	Title     string
	PosterURL string
	Category  string
	Year      *int
	Rating    *float64
}

// ParseSearchPage extracts every result item of a search listing. Items are
// returned in page order; fields that fail to parse are left empty.
func ParseSearchPage(rawHTML string) ([]RawSearchResult, error) {
	doc, err := parseDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	results := []RawSearchResult{}
	doc.FindMatcher(selSearchItem).Each(func(_ int, s *goquery.Selection) {
		results = append(results, parseSearchItem(s))
	})
	return results, nil
}

func parseSearchItem(s *goquery.Selection) RawSearchResult {
	r := RawSearchResult{
		ID:        ParseIMDbID(attrOf(s, selTitleLink, "href")),
		Title:     StripRank(textOf(s, selSearchTitle)),
		PosterURL: attrOf(s, selPoster, "src"),
		Category:  textOf(s, selSearchType),
		Rating:    RatingPtr(textOf(s, selRatingValue)),
	}
	if r.Category == "" {
		r.Category = defaultSearchCategory
	}
	s.FindMatcher(selSearchBadge).EachWithBreak(func(_ int, badge *goquery.Selection) bool {
		if year, ok := ParseBadgeYear(badge.Text()); ok {
			r.Year = &year
			return false
		}
		return true
	})
	return r
}
