package browser

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/use-agent/imdbapi/models"
)

var (
	errNotRunning = errors.New("browser is not running")
	errStopped    = errors.New("browser session is stopped")
)

// Session owns the single browser process of the service. Lifecycle
// transitions (start, stop, restart) hold the write lock; opening tabs holds
// the read lock, so tabs open concurrently but never during a restart.
//
// Every successful start bumps the generation. Recovery paths restart only
// if the generation they observed is still current, so a burst of failures
// on one dead browser results in a single restart. After Stop no recovery
// path relaunches the browser until Start or Restart is called again.
type Session struct {
	backend Backend
	log     *slog.Logger
	rec     Recorder

	mu         sync.RWMutex
	browser    Browser
	generation uint64
	stopped    bool

	restarts atomic.Uint64
	openTabs atomic.Int64

	// slots caps concurrently open tabs; nil means no cap.
	slots chan struct{}
}

// NewSession creates a stopped session. log and rec may be nil.
func NewSession(backend Backend, log *slog.Logger, rec Recorder) *Session {
	if log == nil {
		log = slog.Default()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Session{backend: backend, log: log, rec: rec}
}

// Start launches the browser. It is a no-op when the browser is running.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = false
	return s.startLocked(ctx)
}

// Stop closes the browser and keeps it closed: later failures no longer
// trigger a restart. It is safe to call when the browser was never started
// or is already stopped.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.stopLocked()
}

// Restart stops and starts the browser. Tabs opened before the restart are
// dead afterwards.
func (s *Session) Restart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = false
	return s.restartLocked(ctx)
}

// SetTabLimit caps the number of concurrently open tabs at n; OpenPage then
// waits for a free slot. n <= 0 removes the cap. It must be called before
// the session is shared.
func (s *Session) SetTabLimit(n int) {
	if n <= 0 {
		s.slots = nil
		return
	}
	s.slots = make(chan struct{}, n)
}

// OpenPage opens a new tab for locale. If the browser cannot serve a tab it
// is restarted once and the open is retried; a second failure is returned
// as a SessionError.
func (s *Session) OpenPage(ctx context.Context, locale string) (*Tab, error) {
	if err := s.acquireSlot(ctx); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeTimeout, "request canceled while waiting for a free tab", err)
	}
	tab, err := s.openPageWithRecovery(ctx, locale)
	if err != nil {
		s.releaseSlot()
		return nil, err
	}
	return tab, nil
}

func (s *Session) openPageWithRecovery(ctx context.Context, locale string) (*Tab, error) {
	tab, gen, err := s.openPage(ctx, locale)
	if err == nil {
		return tab, nil
	}
	if ctx.Err() != nil {
		return nil, models.NewScrapeError(models.ErrCodeTimeout, "request canceled while opening page", err)
	}

	if errors.Is(err, errStopped) {
		return nil, models.SessionError("browser session is stopped", err)
	}

	s.log.Error("failed to open a new page, restarting the browser", "locale", locale, "error", err)
	if rerr := s.restartIfCurrent(ctx, gen); rerr != nil {
		return nil, models.SessionError("browser restart failed", rerr)
	}

	tab, _, err = s.openPage(ctx, locale)
	if err != nil {
		return nil, models.SessionError("failed to open page after restart", err)
	}
	return tab, nil
}

// Running reports whether a browser process is currently held.
func (s *Session) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.browser != nil
}

// Stats returns a snapshot of the session state.
func (s *Session) Stats() models.BrowserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.BrowserInfo{
		Running:    s.browser != nil,
		Generation: s.generation,
		OpenTabs:   int(s.openTabs.Load()),
		MaxTabs:    cap(s.slots),
		Restarts:   s.restarts.Load(),
	}
}

func (s *Session) acquireSlot(ctx context.Context) error {
	if s.slots == nil {
		return nil
	}
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) releaseSlot() {
	if s.slots != nil {
		<-s.slots
	}
}

func (s *Session) openPage(ctx context.Context, locale string) (*Tab, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stopped {
		return nil, s.generation, errStopped
	}
	if s.browser == nil {
		return nil, s.generation, errNotRunning
	}
	page, err := s.browser.NewPage(ctx, locale)
	if err != nil {
		return nil, s.generation, err
	}
	s.openTabs.Add(1)
	s.rec.TabOpened()
	return &Tab{Page: page, session: s, generation: s.generation, locale: locale}, s.generation, nil
}

// restartIfCurrent restarts the browser unless another caller already did
// so since generation gen was observed. A failed relaunch leaves the
// generation unchanged, so the next caller that observed it tries again.
// A stopped session is never restarted.
func (s *Session) restartIfCurrent(ctx context.Context, gen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return errStopped
	}
	if s.generation != gen {
		s.log.Debug("browser already restarted", "observed", gen, "current", s.generation)
		return nil
	}
	return s.restartLocked(ctx)
}

func (s *Session) restartLocked(ctx context.Context) error {
	s.stopLocked()
	if err := s.startLocked(ctx); err != nil {
		return err
	}
	s.restarts.Add(1)
	s.rec.BrowserRestarted()
	return nil
}

func (s *Session) startLocked(ctx context.Context) error {
	if s.browser != nil {
		return nil
	}
	s.log.Info("starting browser")
	b, err := s.backend.Launch(ctx)
	if err != nil {
		return models.SessionError("failed to launch browser", err)
	}
	s.browser = b
	s.generation++
	s.log.Info("browser started", "generation", s.generation)
	return nil
}

func (s *Session) stopLocked() {
	if s.browser == nil {
		return
	}
	s.log.Info("stopping browser", "generation", s.generation)
	if err := s.browser.Close(); err != nil {
		s.log.Warn("browser did not close cleanly", "error", err)
	}
	s.browser = nil
	s.log.Info("browser stopped")
}

// Tab is a page opened by a Session, tagged with the browser generation it
// belongs to.
type Tab struct {
	Page

	session    *Session
	generation uint64
	locale     string
	closeOnce  sync.Once
}

// Generation is the browser generation the tab was opened on.
func (t *Tab) Generation() uint64 { return t.generation }

// Locale is the locale the tab was configured for.
func (t *Tab) Locale() string { return t.locale }

// Close closes the underlying page. It is idempotent; errors from tabs that
// died with a restarted browser are logged and dropped.
func (t *Tab) Close() error {
	t.closeOnce.Do(func() {
		if err := t.Page.Close(); err != nil {
			t.session.log.Debug("closing tab", "generation", t.generation, "error", err)
		}
		t.session.openTabs.Add(-1)
		t.session.rec.TabClosed()
		t.session.releaseSlot()
	})
	return nil
}
