// Package browser owns the headless browser process used for scraping: its
// lifecycle, the tabs opened on it and navigation with failure recovery.
package browser

import "context"

//go:generate mockgen -source=browser.go -destination=mocks/mocks.go -package=mocks

// Backend launches browser processes.
type Backend interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser is one running browser process.
type Browser interface {
	// NewPage opens an isolated tab whose language header and reported
	// navigator locale match locale.
	NewPage(ctx context.Context, locale string) (Page, error)
	Close() error
}

// Page is a single browser tab.
type Page interface {
	// Navigate loads url and returns once the network is almost idle.
	Navigate(ctx context.Context, url string) error

	// HTML returns a snapshot of the rendered document.
	HTML(ctx context.Context) (string, error)

	// WaitElement blocks until selector matches an element, and until that
	// element is visible when visible is set.
	WaitElement(ctx context.Context, selector string, visible bool) error

	// Click clicks the index-th element matching selector and waits for the
	// resulting navigation to settle.
	Click(ctx context.Context, selector string, index int) error

	Close() error
}

// Recorder receives browser lifecycle events.
type Recorder interface {
	BrowserRestarted()
	NavigationFailed()
	TabOpened()
	TabClosed()
}

type nopRecorder struct{}

func (nopRecorder) BrowserRestarted() {}
func (nopRecorder) NavigationFailed() {}
func (nopRecorder) TabOpened()        {}
func (nopRecorder) TabClosed()        {}
