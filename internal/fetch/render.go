package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Rendered fetch defaults.
const (
	// defaultRenderTimeout bounds one rendered fetch, including the wait
	// for scripts to settle.
	defaultRenderTimeout = 30 * time.Second

	// defaultSettleDelay is how long to wait after the document reports
	// readiness. Chrome has no direct "network idle" signal over the
	// DevTools protocol, so readiness plus a short settle window is the
	// practical approximation for script-built pages.
	defaultSettleDelay = 500 * time.Millisecond

	// readyPollInterval is how often the document readyState is polled.
	readyPollInterval = 100 * time.Millisecond
)

// Session is a running browser instance shared across rendered fetches.
//
// Design decision: The browser is the expensive part of rendered fetching
// (process start, profile setup, cookie seeding), so one Session is created
// per crawl and each fetch opens a fresh tab inside it. Tabs are cheap and
// give every page a clean document while cookies and cache persist at the
// session level.
type Session struct {
	ctx           context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// sessionConfig holds browser session settings before launch.
type sessionConfig struct {
	headful   bool
	userAgent string
	cookies   []*network.CookieParam
}

// SessionOption configures a browser Session.
type SessionOption func(*sessionConfig)

// WithHeadful launches a visible browser window instead of a headless one.
// Used by the interactive cookie-capture command.
func WithHeadful() SessionOption {
	return func(c *sessionConfig) {
		c.headful = true
	}
}

// WithSessionUserAgent overrides the browser's User-Agent string.
func WithSessionUserAgent(ua string) SessionOption {
	return func(c *sessionConfig) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithCookies seeds the session with the given cookies before any
// navigation, so the first fetch is already authenticated.
func WithCookies(cookies []*network.CookieParam) SessionOption {
	return func(c *sessionConfig) {
		c.cookies = cookies
	}
}

// NewSession launches a browser and returns the running session.
// The caller must call Close when done; the session holds an OS process.
func NewSession(ctx context.Context, opts ...SessionOption) (*Session, error) {
	var cfg sessionConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.headful {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if cfg.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(cfg.userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	actions := []chromedp.Action{network.Enable()}
	if len(cfg.cookies) > 0 {
		actions = append(actions, network.SetCookies(cfg.cookies))
	}
	if err := chromedp.Run(browserCtx, actions...); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser session: %w", err)
	}

	return &Session{
		ctx:           browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

// Context returns the session's browser context. New tabs are derived
// from it.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Cookies returns the cookies currently held by the browser session.
func (s *Session) Cookies() ([]*network.Cookie, error) {
	var cookies []*network.Cookie
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("read session cookies: %w", err)
	}
	return cookies, nil
}

// Close shuts the browser down. Safe to call exactly once; the session is
// unusable afterwards.
func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
}

// Renderer fetches pages by loading them in a headless browser and
// capturing the markup after scripts have run.
type Renderer struct {
	session *Session
	timeout time.Duration
	settle  time.Duration
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithSession makes the renderer open tabs in an existing browser session
// instead of launching a throwaway browser per fetch. The renderer does
// not own the session; the caller remains responsible for closing it.
func WithSession(s *Session) RendererOption {
	return func(r *Renderer) {
		r.session = s
	}
}

// WithRenderTimeout bounds each rendered fetch.
func WithRenderTimeout(timeout time.Duration) RendererOption {
	return func(r *Renderer) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithSettleDelay sets how long to wait after document readiness before
// capturing the markup.
func WithSettleDelay(settle time.Duration) RendererOption {
	return func(r *Renderer) {
		if settle >= 0 {
			r.settle = settle
		}
	}
}

// NewRenderer creates a Renderer with the given options.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		timeout: defaultRenderTimeout,
		settle:  defaultSettleDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch loads the URL in a browser tab and returns the rendered markup.
// With a configured session the tab is opened inside it and closed after
// the capture, leaving the session running for the next fetch. Without a
// session a private browser is launched and torn down around the single
// fetch.
func (r *Renderer) Fetch(ctx context.Context, url string) (string, error) {
	session := r.session
	if session == nil {
		var err error
		session, err = NewSession(ctx)
		if err != nil {
			return "", &FetchError{URL: url, Strategy: StrategyRendered, Err: err}
		}
		defer session.Close()
	}

	tabCtx, closeTab := chromedp.NewContext(session.Context())
	defer closeTab()

	tabCtx, cancel := context.WithTimeout(tabCtx, r.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		waitDocumentReady(r.settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		// Caller cancellation is not a page failure; let it propagate
		// instead of triggering the static fallback.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &FetchError{URL: url, Strategy: StrategyRendered, Err: err}
	}
	return html, nil
}

// waitDocumentReady polls the document until it reports readyState
// "complete", then waits a settle delay for late script activity. The
// surrounding fetch timeout bounds the whole wait.
func waitDocumentReady(settle time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for {
			var state string
			if err := chromedp.Evaluate(`document.readyState`, &state).Do(ctx); err != nil {
				return err
			}
			if state == "complete" {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(readyPollInterval):
			}
		}

		if settle <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settle):
			return nil
		}
	})
}
