package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoStructuredData is returned when a title page has no usable JSON-LD block.
var ErrNoStructuredData = errors.New("structured data block not found")

var digitsRE = regexp.MustCompile(`\d+`)

// StructuredData is the subset of a title page's JSON-LD document we read.
type StructuredData struct {
	Type            string          `json:"@type"`
	Name            string          `json:"name"`
	AlternateName   string          `json:"alternateName"`
	Description     string          `json:"description"`
	Image           imageRef        `json:"image"`
	Genre           textList        `json:"genre"`
	Keywords        string          `json:"keywords"`
	DatePublished   string          `json:"datePublished"`
	Duration        string          `json:"duration"`
	TimeRequired    string          `json:"timeRequired"`
	AggregateRating *aggregateValue `json:"aggregateRating"`
}

type aggregateValue struct {
	RatingValue ratingText `json:"ratingValue"`
}

// TitlePage is what a title page snapshot yields before it is mapped to a
// models.Title.
type TitlePage struct {
	Data StructuredData

	// DocumentTitle is the page <title>, e.g. "The Shawshank Redemption (1994) - IMDb".
	DocumentTitle string

	// Description is the og:description meta content.
	Description string

	// SeasonsLabel is the aria-label of the season selector; empty when the
	// page has none.
	SeasonsLabel string
	HasSeasons   bool
}

// ParseTitlePage extracts the JSON-LD block and the DOM fields of a title page.
func ParseTitlePage(rawHTML string) (*TitlePage, error) {
	doc, err := parseDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	script := doc.FindMatcher(selStructuredData).First()
	if script.Length() == 0 {
		return nil, ErrNoStructuredData
	}

	var data StructuredData
	if err := json.NewDecoder(strings.NewReader(script.Text())).Decode(&data); err != nil {
		return nil, errors.Join(ErrNoStructuredData, err)
	}

	page := &TitlePage{
		Data:          data,
		DocumentTitle: strings.TrimSpace(doc.FindMatcher(selDocumentTitle).First().Text()),
		Description:   attrOf(doc.Selection, selOGDescription, "content"),
	}
	if sel := doc.FindMatcher(selSeasonSelect).First(); sel.Length() > 0 {
		page.HasSeasons = true
		page.SeasonsLabel, _ = sel.Attr("aria-label")
	}
	return page, nil
}

// SeasonCount reads the number of seasons from the season selector label
// ("7 seasons"). It is 1 when the selector or its number is missing.
func (p *TitlePage) SeasonCount() int {
	if n, err := strconv.Atoi(digitsRE.FindString(p.SeasonsLabel)); err == nil && n > 0 {
		return n
	}
	return 1
}

// Rating returns the aggregate rating, if the page has one.
func (d StructuredData) Rating() *float64 {
	if d.AggregateRating == nil {
		return nil
	}
	return RatingPtr(string(d.AggregateRating.RatingValue))
}

// KeywordList splits the comma separated keywords string.
func (d StructuredData) KeywordList() []string {
	out := []string{}
	if strings.TrimSpace(d.Keywords) == "" {
		return out
	}
	for _, k := range strings.Split(d.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// DisplayTitle is the localized title, falling back to the original name.
func (d StructuredData) DisplayTitle() string {
	if d.AlternateName != "" {
		return d.AlternateName
	}
	return d.Name
}

// RuntimeToken is timeRequired when present, else duration.
func (d StructuredData) RuntimeToken() string {
	if d.TimeRequired != "" {
		return d.TimeRequired
	}
	return d.Duration
}

// ratingText keeps the raw text of a rating given as a JSON number or
// string. Any other JSON value leaves it empty, so a malformed rating never
// fails the whole document.
type ratingText string

func (r *ratingText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0:
		*r = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = ratingText(s)
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		*r = ratingText(b)
	default:
		*r = ""
	}
	return nil
}

// textList accepts a JSON string or an array of strings.
type textList []string

func (l *textList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = textList{s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// imageRef accepts a URL string or an ImageObject with a "url" field.
type imageRef string

func (r *imageRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*r = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = imageRef(s)
		return nil
	default:
		var obj struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*r = imageRef(obj.URL)
		return nil
	}
}
