package models

import "time"

// Title is one work on IMDb: a movie, a series or a standalone episode.
type Title struct {
	// ID is the IMDb identifier, e.g. "tt0111161".
	ID string `json:"imdbId"`

	// Title is the localized display title (JSON-LD alternateName when present).
	Title string `json:"title"`

	// OriginalTitle is the JSON-LD name.
	OriginalTitle string `json:"originalTitle"`

	Type     ContentType `json:"type"`
	Synopsis string      `json:"synopsis"`

	// Rating is the aggregate rating on a 0-10 scale.
	Rating *float64 `json:"rating,omitempty"`

	Genres    []string `json:"genres"`
	Keywords  []string `json:"keywords"`
	PosterURL string   `json:"posterUrl,omitempty"`

	// Runtime is expressed in seconds.
	Runtime *int `json:"runtime,omitempty"`

	// Year is mandatory: a page without a resolvable year is an extraction failure.
	Year int `json:"year"`

	// Seasons is set for series only.
	Seasons *int `json:"seasons,omitempty"`

	// Episodes is set for series only, and only when explicitly requested.
	Episodes []Episode `json:"episodes,omitempty"`
}

// Episode is one episode of a series. SeriesID is a weak reference to the
// parent Title.
type Episode struct {
	ID          string `json:"imdbId"`
	SeriesID    string `json:"seriesImdbId"`
	Title       string `json:"title,omitempty"`
	SeriesTitle string `json:"seriesTitle"`

	// Season and Number are 1-based. Number is 0 when the episode label
	// could not be parsed.
	Season int `json:"season"`
	Number int `json:"number"`

	Synopsis  string     `json:"synopsis,omitempty"`
	Rating    *float64   `json:"rating,omitempty"`
	PosterURL string     `json:"posterUrl,omitempty"`
	Release   *time.Time `json:"release,omitempty"`
	Year      *int       `json:"year,omitempty"`
}

// SearchResult is the lightweight projection of a Title shown in listings.
type SearchResult struct {
	ID        string      `json:"imdbId"`
	Title     string      `json:"title"`
	PosterURL string      `json:"posterUrl,omitempty"`
	Type      ContentType `json:"type"`
	Rating    *float64    `json:"rating,omitempty"`
	Year      *int        `json:"year,omitempty"`
}
