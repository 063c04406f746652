package browser

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/use-agent/imdbapi/models"
)

// DefaultNavigationTimeout bounds a single navigation when none is configured.
const DefaultNavigationTimeout = 30 * time.Second

// Navigator loads pages on tabs. A failed navigation restarts the browser
// and is then reported to the caller; it is never retried here.
type Navigator struct {
	session *Session
	timeout time.Duration
	log     *slog.Logger
	rec     Recorder
}

// NewNavigator returns a Navigator that recovers through session.
func NewNavigator(session *Session, timeout time.Duration) *Navigator {
	if timeout <= 0 {
		timeout = DefaultNavigationTimeout
	}
	return &Navigator{
		session: session,
		timeout: timeout,
		log:     session.log,
		rec:     session.rec,
	}
}

// Navigate loads url on tab and waits for network quiescence.
func (n *Navigator) Navigate(ctx context.Context, tab *Tab, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := tab.Navigate(navCtx, url); err != nil {
		return n.fail(ctx, tab, "failed to load page", url, err)
	}
	return nil
}

// Follow clicks the index-th element matching selector on tab and waits for
// the resulting navigation to settle.
func (n *Navigator) Follow(ctx context.Context, tab *Tab, selector string, index int) error {
	navCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := tab.Click(navCtx, selector, index); err != nil {
		return n.fail(ctx, tab, "failed to follow link", selector, err)
	}
	return nil
}

func (n *Navigator) fail(ctx context.Context, tab *Tab, msg, target string, err error) error {
	// The caller gave up: no restart, the browser is fine.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return categorizeError(errors.Join(ctxErr, err), msg)
	}

	n.rec.NavigationFailed()
	n.log.Error(msg+", restarting the browser", "target", target, "generation", tab.generation, "error", err)
	switch rerr := n.session.restartIfCurrent(context.WithoutCancel(ctx), tab.generation); {
	case errors.Is(rerr, errStopped):
		n.log.Debug("browser session stopped, not restarting", "target", target)
	case rerr != nil:
		n.log.Error("browser restart failed", "error", rerr)
	}
	return models.NavigationError(msg, err)
}

// categorizeError maps context errors to SCRAPE_TIMEOUT and everything else
// to NAVIGATION_FAILED.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NavigationError(msg, err)
	}
}
