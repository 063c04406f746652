package models

// ContentType is the closed set of work kinds an IMDb page can describe.
type ContentType string

const (
	ContentTypeMovie     ContentType = "movie"
	ContentTypeTVSeries  ContentType = "tvSeries"
	ContentTypeTVEpisode ContentType = "tvEpisode"
	ContentTypeUnknown   ContentType = "unknown"
)

// ParseContentType maps a free-text category label, either the JSON-LD
// "@type" value or the label shown on search results, to a ContentType.
// Matching is case-sensitive; anything unrecognised is ContentTypeUnknown.
func ParseContentType(label string) ContentType {
	switch label {
	case "Movie", "TV Movie", "TV Special", "TV Short":
		return ContentTypeMovie
	case "TVSeries", "TV Series", "TV Mini Series":
		return ContentTypeTVSeries
	case "TVEpisode", "TV Episode":
		return ContentTypeTVEpisode
	default:
		return ContentTypeUnknown
	}
}

// ContentTypeFromQuery coerces an API query value ("movie", "tvSeries",
// "tvEpisode") into a ContentType. ok is false for anything else, including
// "unknown", which is not a usable search filter.
func ContentTypeFromQuery(v string) (ContentType, bool) {
	switch ct := ContentType(v); ct {
	case ContentTypeMovie, ContentTypeTVSeries, ContentTypeTVEpisode:
		return ct, true
	default:
		return "", false
	}
}
