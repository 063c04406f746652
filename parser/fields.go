// Package parser turns IMDb page snapshots and the free-text fields found in
// them into typed values. Every function here is pure: malformed input yields
// an absent value, never an error, so one bad field cannot sink a record.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	durationRE     = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?`)
	runtimeRE      = regexp.MustCompile(`(?:(\d+)(?:h|hours))?\s?(?:(\d+)(?:m|minutes))?\s\|`)
	titleYearRE    = regexp.MustCompile(`\((\d{4})\)|\([^0-9]+ (\d{4})–?`)
	ratingRE       = regexp.MustCompile(`^\d+(?:\.\d+)?`)
	rankPrefixRE   = regexp.MustCompile(`^\d+\.\s`)
	episodeNumRE   = regexp.MustCompile(`S\d+.E(\d+)`)
	episodeTitleRE = regexp.MustCompile(`S\d+.E\d+\s?∙(.*)`)
	imdbIDRE       = regexp.MustCompile(`tt\d+`)
	leadingYearRE  = regexp.MustCompile(`^(\d{4})`)
)

// ParseDuration converts an ISO-8601 style duration ("PT2H22M") to seconds.
// Missing hour and minute components count as zero, so "PT" is 0 seconds.
func ParseDuration(token string) (int, bool) {
	m := durationRE.FindStringSubmatch(token)
	if m == nil {
		return 0, false
	}
	return atoiOrZero(m[1])*3600 + atoiOrZero(m[2])*60, true
}

// ParseRuntime reads a runtime such as "2h 22m |" or "45 minutes |" from an
// og:description. The segment must be followed by a pipe separator.
func ParseRuntime(description string) (int, bool) {
	m := runtimeRE.FindStringSubmatch(description)
	if m == nil {
		return 0, false
	}
	return atoiOrZero(m[1])*3600 + atoiOrZero(m[2])*60, true
}

// YearFromTitle extracts the release year from a page <title>. It handles
// "Name (1994)" and "Name (TV Series 2005–2013)" and returns the last match,
// because titles may carry a disambiguation year before the real one.
func YearFromTitle(pageTitle string) (int, bool) {
	matches := titleYearRE.FindAllStringSubmatch(pageTitle, -1)
	if len(matches) == 0 {
		return 0, false
	}
	last := matches[len(matches)-1]
	raw := last[1]
	if raw == "" {
		raw = last[2]
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return year, true
}

// YearFromISODate returns the year of a JSON-LD date ("2005-12-02").
func YearFromISODate(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t.Year(), true
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Year(), true
	}
	return 0, false
}

// ParseRating parses a rating such as "8.5" or "8,5" on the 0-10 scale.
func ParseRating(text string) (float64, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	num := ratingRE.FindString(text)
	if num == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v < 0 || v > 10 {
		return 0, false
	}
	return v, true
}

// RatingPtr is ParseRating for optional record fields.
func RatingPtr(text string) *float64 {
	if v, ok := ParseRating(text); ok {
		return &v
	}
	return nil
}

// StripRank removes the "12. " ordinal that search results are numbered with.
func StripRank(title string) string {
	return rankPrefixRE.ReplaceAllString(strings.TrimSpace(title), "")
}

// ParseEpisodeLabel splits "S1.E3 ∙ Title" into the episode number and title.
// The number is 0 and the title empty when the label does not match.
func ParseEpisodeLabel(label string) (int, string) {
	var number int
	if m := episodeNumRE.FindStringSubmatch(label); m != nil {
		number = atoiOrZero(m[1])
	}
	var title string
	if m := episodeTitleRE.FindStringSubmatch(label); m != nil {
		title = strings.TrimSpace(m[1])
	}
	return number, title
}

// ParseIMDbID returns the first "tt…" identifier in a link, or "".
func ParseIMDbID(href string) string {
	return imdbIDRE.FindString(href)
}

// ParseBadgeYear reads the leading year of a metadata badge: "2010",
// "2005–", "2008–2013".
func ParseBadgeYear(text string) (int, bool) {
	m := leadingYearRE.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}
	return atoiOrZero(m[1]), true
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
