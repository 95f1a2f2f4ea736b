package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Options configures a Session
type Options struct {
	Headless       bool
	ExecPath       string
	UserAgents     []string
	AcceptLanguage string
	// ActionTimeout bounds every browser call except WaitReady, which has
	// its own timeout. Zero disables it.
	ActionTimeout time.Duration
	Logger        *log.Logger
}

// Session is a Browser backed by one headless Chrome tab
type Session struct {
	ctx           context.Context
	cancel        context.CancelFunc
	actionTimeout time.Duration
	userAgent     string
	closeOnce     sync.Once
}

var _ Browser = (*Session)(nil)

// NewSession launches Chrome and returns a ready tab. The browser lives
// until Close is called or parent is cancelled.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	userAgent := PickUserAgent(opts.UserAgents, nil)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.WindowSize(1920, 1080),
	)
	if userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(userAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)

	var ctxOpts []chromedp.ContextOption
	if opts.Logger != nil {
		ctxOpts = append(ctxOpts,
			chromedp.WithLogf(opts.Logger.Debugf),
			chromedp.WithErrorf(opts.Logger.Debugf),
		)
	}
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, ctxOpts...)

	s := &Session{
		ctx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		actionTimeout: opts.ActionTimeout,
		userAgent:     userAgent,
	}

	// The first Run starts the browser; it must not carry a timeout or the
	// browser is torn down with it.
	start := []chromedp.Action{network.Enable()}
	if opts.AcceptLanguage != "" {
		start = append(start, network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": opts.AcceptLanguage,
		}))
	}
	if err := chromedp.Run(browserCtx, start...); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrSessionStart, err)
	}

	if opts.Logger != nil {
		opts.Logger.Debug("Browser session started", "headless", opts.Headless, "user_agent", userAgent)
	}
	return s, nil
}

// UserAgent returns the user agent picked for this session
func (s *Session) UserAgent() string {
	return s.userAgent
}

// Close shuts the browser down. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(s.cancel)
}

// run executes actions with the per-action timeout
func (s *Session) run(actions ...chromedp.Action) error {
	ctx := s.ctx
	if s.actionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, s.actionTimeout)
		defer cancel()
	}

	err := chromedp.Run(ctx, actions...)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && s.ctx.Err() == nil {
		return fmt.Errorf("action timed out after %v: %w", s.actionTimeout, err)
	}
	return err
}

// Navigate loads url and waits for the load event
func (s *Session) Navigate(url string) error {
	return s.run(chromedp.Navigate(url))
}

// WaitReady waits for selector with its own timeout instead of the action timeout
func (s *Session) WaitReady(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("wait for %q timed out after %v: %w", selector, timeout, err)
		}
		return err
	}
	return nil
}

// Count returns the number of elements matching selector right now
func (s *Session) Count(selector string) (int, error) {
	var n int
	err := s.Evaluate(fmt.Sprintf(`document.querySelectorAll(%q).length`, selector), &n)
	return n, err
}

// ScrollBy scrolls the window down by dy pixels
func (s *Session) ScrollBy(dy int) error {
	return s.Evaluate(fmt.Sprintf(`window.scrollBy(0, %d);`, dy), nil)
}

// ScrollIntoView queries the DOM once instead of using chromedp.ScrollIntoView,
// which would poll until the element shows up.
func (s *Session) ScrollIntoView(selector string) error {
	var found bool
	err := s.Evaluate(fmt.Sprintf(`
		(() => {
			const el = document.querySelector(%q);
			if (!el) return false;
			el.scrollIntoView();
			return true;
		})()`, selector), &found)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return nil
}

// Links returns the resolved product hrefs of every listing block
func (s *Session) Links(blockSelector, marker string) ([][]string, error) {
	var blocks [][]string
	err := s.Evaluate(fmt.Sprintf(`
		Array.from(document.querySelectorAll(%q)).map(block =>
			Array.from(block.querySelectorAll('a'))
				.filter(a => (a.getAttribute('href') || '').includes(%q))
				.map(a => a.href)
		)`, blockSelector, marker), &blocks)
	return blocks, err
}

// HTML returns the rendered markup of the whole document
func (s *Session) HTML() (string, error) {
	var markup string
	err := s.Evaluate(`document.documentElement.outerHTML`, &markup)
	return markup, err
}

// Evaluate runs script in the page under the action timeout. Every DOM
// query above goes through it.
func (s *Session) Evaluate(script string, res any) error {
	return s.run(chromedp.Evaluate(script, res))
}
