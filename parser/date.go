package parser

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dateLayout describes how one locale writes an episode air date, e.g.
// "Fri, Dec 2, 2005" (en) or "ven. 2 déc. 2005" (fr). Month names are stored
// accent-folded and lowercase; abbreviations are matched by unique prefix.
type dateLayout struct {
	dayFirst bool
	months   [12]string
	fillers  []string
}

var dateLayouts = map[string]dateLayout{
	"en": {
		months: [12]string{"january", "february", "march", "april", "may", "june",
			"july", "august", "september", "october", "november", "december"},
	},
	"fr": {
		dayFirst: true,
		months: [12]string{"janvier", "fevrier", "mars", "avril", "mai", "juin",
			"juillet", "aout", "septembre", "octobre", "novembre", "decembre"},
	},
	"de": {
		dayFirst: true,
		months: [12]string{"januar", "februar", "marz", "april", "mai", "juni",
			"juli", "august", "september", "oktober", "november", "dezember"},
	},
	"es": {
		dayFirst: true,
		months: [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		fillers: []string{"de"},
	},
	"it": {
		dayFirst: true,
		months: [12]string{"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
			"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"},
	},
	"pt": {
		dayFirst: true,
		months: [12]string{"janeiro", "fevereiro", "marco", "abril", "maio", "junho",
			"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
		fillers: []string{"de"},
	},
}

// ParseLocalizedDate parses an episode air date written in the given locale.
// Locales without a known layout use the English one. The weekday, when
// present, is ignored. The result is midnight UTC of that calendar day.
func ParseLocalizedDate(raw, locale string) (time.Time, bool) {
	layout, ok := dateLayouts[locale]
	if !ok {
		layout = dateLayouts["en"]
	}

	tokens := dateTokens(raw, layout.fillers)
	if len(tokens) == 4 {
		tokens = tokens[1:]
	}
	if len(tokens) != 3 {
		return time.Time{}, false
	}

	dayTok, monthTok := tokens[1], tokens[0]
	if layout.dayFirst {
		dayTok, monthTok = tokens[0], tokens[1]
	}

	month, ok := layout.month(monthTok)
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayTok)
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(tokens[2])
	if err != nil || len(tokens[2]) != 4 {
		return time.Time{}, false
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises overflow (Feb 30 -> Mar 2); reject those.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

func (l dateLayout) month(tok string) (time.Month, bool) {
	if len(tok) < 3 {
		return 0, false
	}
	found := -1
	for i, name := range l.months {
		if name == tok {
			return time.Month(i + 1), true
		}
		if strings.HasPrefix(name, tok) {
			if found >= 0 {
				return 0, false
			}
			found = i
		}
	}
	if found < 0 {
		return 0, false
	}
	return time.Month(found + 1), true
}

// dateTokens splits a date on spaces and commas, folds case and accents and
// trims abbreviation dots ("déc." -> "dec", "2." -> "2").
func dateTokens(raw string, fillers []string) []string {
	raw = strings.ReplaceAll(raw, ",", " ")
	var out []string
	for _, f := range strings.Fields(raw) {
		f = strings.TrimRight(foldAccents(strings.ToLower(f)), ".")
		if f == "" || isFiller(f, fillers) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isFiller(tok string, fillers []string) bool {
	for _, f := range fillers {
		if tok == f {
			return true
		}
	}
	return false
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
