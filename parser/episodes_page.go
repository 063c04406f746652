package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RawEpisode is one entry of an episodes listing before the season index and
// series fields are attached.
type RawEpisode struct {
	ID         string
	Number     int
	Title      string
	PosterURL  string
	Synopsis   string
	Rating     *float64
	RawRelease string
}

// EpisodesPage is a snapshot of one season of a series' episodes listing.
type EpisodesPage struct {
	// SeriesTitle comes from the page subtitle.
	SeriesTitle string

	// SeasonTabs holds the season tab labels in document order.
	SeasonTabs []string

	Episodes []RawEpisode
}

// ParseEpisodesPage reads the series subtitle, the season tabs and the episode
// entries of an episodes listing.
func ParseEpisodesPage(rawHTML string) (*EpisodesPage, error) {
	doc, err := parseDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	page := &EpisodesPage{
		SeriesTitle: textOf(doc.Selection, selSeriesSubtitle),
	}
	doc.FindMatcher(selSeasonTab).Each(func(_ int, s *goquery.Selection) {
		page.SeasonTabs = append(page.SeasonTabs, strings.TrimSpace(s.Text()))
	})
	doc.FindMatcher(selEpisodeItem).Each(func(_ int, s *goquery.Selection) {
		page.Episodes = append(page.Episodes, parseEpisodeItem(s))
	})
	return page, nil
}

func parseEpisodeItem(s *goquery.Selection) RawEpisode {
	label := textOf(s, selTitleLink)
	number, title := ParseEpisodeLabel(label)
	return RawEpisode{
		ID:         ParseIMDbID(attrOf(s, selTitleLink, "href")),
		Number:     number,
		Title:      title,
		PosterURL:  attrOf(s, selPoster, "src"),
		Synopsis:   textOf(s, selEpisodeSynopsis),
		Rating:     RatingPtr(textOf(s, selRatingValue)),
		RawRelease: textOf(s, selEpisodeRelease),
	}
}

// SeasonCount reads the total number of seasons from the last season tab.
// ok is false when the page has no tabs; an unparseable label counts as 1.
func (p *EpisodesPage) SeasonCount() (count int, ok bool) {
	if len(p.SeasonTabs) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digitsRE.FindString(p.SeasonTabs[len(p.SeasonTabs)-1]))
	if err != nil || n < 1 {
		return 1, true
	}
	return n, true
}
