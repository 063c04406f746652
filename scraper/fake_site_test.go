package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/imdbapi/browser"
)

// fakeSite is an in-memory browser backend serving canned pages by URL.
type fakeSite struct {
	mu sync.Mutex

	pages    map[string]string   // url -> html
	tabLinks map[string][]string // url -> targets of the season tabs
	failNav  map[string]int      // url -> remaining navigation failures

	newPageErrs int // remaining NewPage failures

	launches    int
	pagesOpened int
	openPages   int
	visited     []string
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages:    map[string]string{},
		tabLinks: map[string][]string{},
		failNav:  map[string]int{},
	}
}

func (f *fakeSite) Launch(context.Context) (browser.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.launches++
	return &fakeBrowser{site: f}, nil
}

func (f *fakeSite) stats() (launches, opened, open int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.launches, f.pagesOpened, f.openPages
}

type fakeBrowser struct {
	site   *fakeSite
	closed bool
}

func (b *fakeBrowser) NewPage(_ context.Context, _ string) (browser.Page, error) {
	b.site.mu.Lock()
	defer b.site.mu.Unlock()
	if b.closed {
		return nil, errors.New("browser has disconnected")
	}
	if b.site.newPageErrs > 0 {
		b.site.newPageErrs--
		return nil, errors.New("target closed")
	}
	b.site.pagesOpened++
	b.site.openPages++
	return &fakePage{site: b.site, browser: b}, nil
}

func (b *fakeBrowser) Close() error {
	b.site.mu.Lock()
	defer b.site.mu.Unlock()
	b.closed = true
	return nil
}

type fakePage struct {
	site    *fakeSite
	browser *fakeBrowser
	current string
	closed  bool
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.site.mu.Lock()
	defer p.site.mu.Unlock()
	if p.browser.closed {
		return errors.New("target closed")
	}
	p.site.visited = append(p.site.visited, url)
	if n := p.site.failNav[url]; n > 0 {
		p.site.failNav[url] = n - 1
		return errors.New("net::ERR_TIMED_OUT")
	}
	if _, ok := p.site.pages[url]; !ok {
		return fmt.Errorf("net::ERR_NAME_NOT_RESOLVED: %s", url)
	}
	p.current = url
	return nil
}

func (p *fakePage) HTML(context.Context) (string, error) {
	p.site.mu.Lock()
	defer p.site.mu.Unlock()
	return p.site.pages[p.current], nil
}

func (p *fakePage) WaitElement(_ context.Context, selector string, _ bool) error {
	html, _ := p.HTML(context.Background())
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return context.DeadlineExceeded
	}
	return nil
}

func (p *fakePage) Click(_ context.Context, selector string, index int) error {
	p.site.mu.Lock()
	defer p.site.mu.Unlock()
	links := p.site.tabLinks[p.current]
	if index < 0 || index >= len(links) {
		return fmt.Errorf("no element %d for %q", index, selector)
	}
	p.current = links[index]
	p.site.visited = append(p.site.visited, p.current)
	return nil
}

func (p *fakePage) Close() error {
	p.site.mu.Lock()
	defer p.site.mu.Unlock()
	if !p.closed {
		p.closed = true
		p.site.openPages--
	}
	return nil
}

// ── Fixtures ─────────────────────────────────────────────────────────

func titleHTML(docTitle, description, jsonLD, body string) string {
	return `<!DOCTYPE html><html><head><title>` + docTitle + `</title>` +
		`<meta property="og:description" content="` + description + `">` +
		`<script type="application/ld+json">` + jsonLD + `</script></head><body>` + body + `</body></html>`
}

const shawshankLD = `{"@type":"Movie","name":"The Shawshank Redemption","image":"https://img.test/shawshank.jpg",` +
	`"description":"Two imprisoned men bond over a number of years.","aggregateRating":{"ratingValue":9.3},` +
	`"genre":["Drama"],"keywords":"prison, friendship","duration":"PT2H22M"}`

func seriesHTML(seasons int) string {
	ld := `{"@type":"TVSeries","name":"Breaking Bad","genre":["Crime","Drama"],"aggregateRating":{"ratingValue":"9.5"}}`
	body := fmt.Sprintf(`<select id="browse-episodes-season" aria-label="%d seasons"></select>`, seasons)
	return titleHTML("Breaking Bad (TV Series 2008–2013) - IMDb", "49m | Crime, Drama", ld, body)
}

// episodesHTML renders one season of an episodes listing with tabs season
// tabs and perSeason episodes.
func episodesHTML(season, tabs, perSeason int, release string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body><hgroup><h2 data-testid="subtitle">Breaking Bad</h2></hgroup><div>`)
	for i := 1; i <= tabs; i++ {
		fmt.Fprintf(&b, `<a data-testid="tab-season-entry" href="?season=%d">%d</a>`, i, i)
	}
	b.WriteString(`</div>`)
	for n := 1; n <= perSeason; n++ {
		fmt.Fprintf(&b, `<article class="episode-item-wrapper">`+
			`<h4 data-testid="slate-list-card-title"><a class="ipc-title-link-wrapper" href="/title/tt9%02d%02d/">`+
			`<div>S%d.E%d ∙ Episode %d</div></a></h4><span>%s</span>`+
			`<span class="ipc-rating-star--rating">8.%d</span></article>`,
			season, n, season, n, n, release, n)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func searchItemHTML(rank int, id, title, category, year string) string {
	typ := ""
	if category != "" {
		typ = `<span class="dli-title-type-data">` + category + `</span>`
	}
	return fmt.Sprintf(`<li class="ipc-metadata-list-summary-item">`+
		`<a class="ipc-title-link-wrapper" href="/title/%s/"><h3 class="ipc-title__text">%d. %s</h3></a>%s`+
		`<span class="dli-title-metadata-item">%s</span><span class="ipc-rating-star--rating">7.5</span></li>`,
		id, rank, title, typ, year)
}
