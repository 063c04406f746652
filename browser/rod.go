package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/imdbapi/config"
	"github.com/use-agent/imdbapi/models"
	"github.com/ysmood/gson"
)

const (
	viewportWidth  = 1920
	viewportHeight = 1080

	// domStableWindow is how long the DOM must stay unchanged after an
	// in-document navigation before the page counts as settled.
	domStableWindow = 300 * time.Millisecond
)

// RodBackend launches Chromium through go-rod.
type RodBackend struct {
	cfg     config.BrowserConfig
	blocked []string
}

// NewRodBackend returns a Backend configured from cfg.
func NewRodBackend(cfg config.BrowserConfig) *RodBackend {
	return &RodBackend{
		cfg:     cfg,
		blocked: blockedURLPatterns(cfg.BlockAds, cfg.BlockedURLs),
	}
}

// Launch starts a headless Chromium with anti-automation flags and connects
// to it over CDP.
func (b *RodBackend) Launch(ctx context.Context) (Browser, error) {
	l := launcher.New().
		Headless(b.cfg.Headless).
		NoSandbox(b.cfg.NoSandbox)

	if b.cfg.BrowserBin != "" {
		l = l.Bin(b.cfg.BrowserBin)
	}
	if b.cfg.Proxy != "" {
		l = l.Proxy(b.cfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", viewportWidth, viewportHeight))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	slog.Debug("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect to chromium: %w", err)
	}

	return &rodBrowser{browser: browser, launcher: l, blocked: b.blocked}, nil
}

type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	blocked  []string
}

func (b *rodBrowser) NewPage(ctx context.Context, locale string) (Page, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	// Drop the request context: the tab outlives the open call.
	page = page.Context(context.Background())

	if err := b.setupPage(page, locale); err != nil {
		_ = page.Close()
		return nil, err
	}
	return &rodPage{page: page}, nil
}

// setupPage prepares a fresh tab. Everything here must run before the first
// navigation: scripts added on new document and blocked URLs only apply to
// later loads.
func (b *rodBrowser) setupPage(page *rod.Page, locale string) error {
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		return fmt.Errorf("inject stealth: %w", err)
	}
	if _, err := page.EvalOnNewDocument(navigatorLocaleJS(locale)); err != nil {
		return fmt.Errorf("override navigator locale: %w", err)
	}

	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		return fmt.Errorf("enable network domain: %w", err)
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{"Accept-Language": gson.New(locale)},
	}).Call(page); err != nil {
		return fmt.Errorf("set accept-language: %w", err)
	}
	if err := (proto.EmulationSetLocaleOverride{Locale: cdpLocale(locale)}).Call(page); err != nil {
		// Chromium refuses a second override on the same target; the header
		// and navigator override still apply.
		slog.Debug("locale override rejected", "locale", locale, "error", err)
	}
	if len(b.blocked) > 0 {
		if err := (proto.NetworkSetBlockedURLs{Urls: b.blocked}).Call(page); err != nil {
			return fmt.Errorf("set blocked urls: %w", err)
		}
	}
	return page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  viewportWidth,
		Height: viewportHeight,
	})
}

func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	return err
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx)

	// The listener must exist before the navigation starts.
	wait := waitSettled(pg, false)
	if err := pg.Navigate(url); err != nil {
		return err
	}
	wait()
	return ctx.Err()
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

func (p *rodPage) WaitElement(ctx context.Context, selector string, visible bool) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	if visible {
		return el.WaitVisible()
	}
	return nil
}

func (p *rodPage) Click(ctx context.Context, selector string, index int) error {
	pg := p.page.Context(ctx)

	els, err := pg.Elements(selector)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(els) {
		return models.ExtractionError(
			fmt.Sprintf("no element %d for %q (found %d)", index, selector, len(els)), nil)
	}

	wait := waitSettled(pg, true)
	if err := els[index].Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	wait()
	return ctx.Err()
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

// settleWatcher decides when the main frame of a page has settled after a
// navigation. Events from child frames never settle it.
type settleWatcher struct {
	mainFrame    proto.PageFrameID
	sameDocument bool

	// inDocument is set when the page changed through the history API
	// instead of loading a new document.
	inDocument bool
}

func (w *settleWatcher) onLifecycle(e *proto.PageLifecycleEvent) bool {
	return e.FrameID == w.mainFrame && e.Name == proto.PageLifecycleEventNameNetworkAlmostIdle
}

func (w *settleWatcher) onNavigatedWithinDocument(e *proto.PageNavigatedWithinDocument) bool {
	if !w.sameDocument || e.FrameID != w.mainFrame {
		return false
	}
	w.inDocument = true
	return true
}

// waitSettled subscribes to the main frame's navigation events and returns a
// function that blocks until the frame is network-almost-idle or, when
// sameDocument is set, until it navigated within the current document and
// the DOM stopped changing. It must be called before the action that
// navigates.
func waitSettled(pg *rod.Page, sameDocument bool) func() {
	_ = proto.PageSetLifecycleEventsEnabled{Enabled: true}.Call(pg)

	w := &settleWatcher{mainFrame: pg.FrameID, sameDocument: sameDocument}
	wait := pg.EachEvent(w.onLifecycle, w.onNavigatedWithinDocument)

	return func() {
		wait()
		_ = proto.PageSetLifecycleEventsEnabled{Enabled: false}.Call(pg)
		if w.inDocument {
			_ = pg.WaitDOMStable(domStableWindow, 0.1)
		}
	}
}
