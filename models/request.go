package models

// TitleRequest is bound from GET /imdb/title/:imdbId.
type TitleRequest struct {
	// ID is the IMDb identifier. Required, "tt" followed by digits.
	ID string `uri:"imdbId" binding:"required"`

	// Language is the locale code used for navigation and date parsing.
	// Unsupported values fall back to English. Default: "en".
	Language string `form:"language"`

	// Episodes requests the full season crawl for series. Default: false.
	Episodes bool `form:"episodes"`
}

// SearchRequest is bound from GET /imdb/search.
type SearchRequest struct {
	// Title is the free-text query. Required.
	Title string `form:"title" binding:"required"`

	// Language is the locale code. Default: "en".
	Language string `form:"language"`

	// Type restricts results to one content type: "movie", "tvSeries" or "tvEpisode".
	Type string `form:"type" binding:"omitempty,oneof=movie tvSeries tvEpisode"`

	// Year restricts results to works released that year.
	Year int `form:"year" binding:"omitempty,min=1870,max=2100"`
}

// Defaults applies default values to unset fields.
func (r *TitleRequest) Defaults() {
	if r.Language == "" {
		r.Language = "en"
	}
}

// Defaults applies default values to unset fields.
func (r *SearchRequest) Defaults() {
	if r.Language == "" {
		r.Language = "en"
	}
}
