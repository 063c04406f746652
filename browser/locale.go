package browser

import (
	"fmt"
	"strconv"
)

// cdpLocales maps the short locales the site is localized in to ICU locales
// for Emulation.setLocaleOverride.
var cdpLocales = map[string]string{
	"en": "en-US",
	"fr": "fr-FR",
	"de": "de-DE",
	"es": "es-ES",
	"it": "it-IT",
	"pt": "pt-BR",
}

func cdpLocale(locale string) string {
	if v, ok := cdpLocales[locale]; ok {
		return v
	}
	return locale
}

// navigatorLocaleJS overrides navigator.language and navigator.languages so
// client-side rendering picks the same language as the Accept-Language header.
func navigatorLocaleJS(locale string) string {
	lang := strconv.Quote(locale)
	return fmt.Sprintf(`(() => {
	Object.defineProperty(navigator, 'language', { get() { return %s; } });
	Object.defineProperty(navigator, 'languages', { get() { return [%s]; } });
})()`, lang, lang)
}
