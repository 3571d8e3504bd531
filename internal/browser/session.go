package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/rs/zerolog/log"
)

const (
	defaultActionTimeout   = 30 * time.Second
	defaultNavigateTimeout = 60 * time.Second
	detachTimeout          = 5 * time.Second
)

// Session is a connection to a Chrome instance that was started by someone else
// with --remote-debugging-port. It never launches the browser and never closes
// tabs it did not open itself.
type Session struct {
	// Cancelling either context makes chromedp close every attached tab, so
	// they are only cancelled when Attach fails.
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	tabs []*Tab
}

// Attach connects to the DevTools endpoint at cdpURL (http://host:port or ws://...).
// Cancelling parent aborts the connect but does not tear down an attached session.
func Attach(parent context.Context, cdpURL string) (*Session, error) {
	log.Debug().Str("cdp_url", cdpURL).Msg("Attaching to browser")

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.WithoutCancel(parent), cdpURL)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, v ...interface{}) {
			log.Debug().Msgf("[chrome] "+format, v...)
		}),
		chromedp.WithErrorf(func(format string, v ...interface{}) {
			log.Warn().Msgf("[chrome] "+format, v...)
		}),
	)

	// Targets allocates the browser connection without opening a tab.
	stop := context.AfterFunc(parent, browserCancel)
	_, err := chromedp.Targets(browserCtx)
	if !stop() && err == nil {
		err = parent.Err()
	}
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to connect to browser at %s: %w", cdpURL, err)
	}

	return &Session{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// FirstPage attaches to the first open page target of the browser.
func (s *Session) FirstPage() (*Tab, error) {
	targets, err := chromedp.Targets(s.browserCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}

	var first *target.Info
	for _, t := range targets {
		if t.Type == "page" && !strings.HasPrefix(t.URL, "devtools://") {
			first = t
			break
		}
	}
	if first == nil {
		return nil, fmt.Errorf("no open page in browser: %w", ErrNotFound)
	}

	log.Debug().Str("target", string(first.TargetID)).Str("url", first.URL).Msg("Using first open page")
	return s.newTab(chromedp.WithTargetID(first.TargetID))
}

// NewPage opens a new tab in the attached browser.
func (s *Session) NewPage() (*Tab, error) {
	return s.newTab()
}

func (s *Session) newTab(opts ...chromedp.ContextOption) (*Tab, error) {
	tabCtx, cancel := chromedp.NewContext(s.browserCtx, opts...)
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to attach to tab: %w", err)
	}
	t := &Tab{
		ctx:             tabCtx,
		cancel:          cancel,
		ActionTimeout:   defaultActionTimeout,
		NavigateTimeout: defaultNavigateTimeout,
	}
	s.tabs = append(s.tabs, t)
	return t, nil
}

// Close detaches from every tab that is still open. The browser and its tabs keep
// running; the DevTools connection goes away with the process.
func (s *Session) Close() {
	for _, t := range s.tabs {
		if t.closed {
			continue
		}
		if err := t.detach(); err != nil {
			log.Debug().Err(err).Msg("Failed to detach from tab")
		}
		t.closed = true
	}
}

// Tab is a Page backed by a chromedp target context.
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	ActionTimeout   time.Duration
	NavigateTimeout time.Duration
}

var _ Page = (*Tab)(nil)

func (t *Tab) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(t.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (t *Tab) Navigate(ctx context.Context, url string) error {
	if err := t.run(ctx, t.NavigateTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (t *Tab) Click(ctx context.Context, selector string) error {
	if err := t.run(ctx, t.ActionTimeout, chromedp.Click(selector, by(selector), chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (t *Tab) ClickLast(ctx context.Context, selector string) error {
	return t.run(ctx, t.ActionTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		n, err := lastNode(ctx, selector)
		if err != nil {
			return err
		}
		return chromedp.MouseClickNode(n).Do(ctx)
	}))
}

func (t *Tab) Hover(ctx context.Context, selector string) error {
	var nodes []*cdp.Node
	return t.run(ctx, t.ActionTimeout,
		chromedp.Nodes(selector, &nodes, by(selector), chromedp.NodeVisible),
		chromedp.ActionFunc(func(ctx context.Context) error {
			n := nodes[0]
			if err := dom.ScrollIntoViewIfNeeded().WithNodeID(n.NodeID).Do(ctx); err != nil {
				return err
			}
			box, err := dom.GetBoxModel().WithNodeID(n.NodeID).Do(ctx)
			if err != nil {
				return fmt.Errorf("hover %s: %w", selector, err)
			}
			x, y := quadCenter(box.Content)
			return chromedp.MouseEvent(input.MouseMoved, x, y).Do(ctx)
		}),
	)
}

func (t *Tab) Fill(ctx context.Context, selector, text string) error {
	err := t.run(ctx, t.ActionTimeout,
		chromedp.Click(selector, by(selector), chromedp.NodeVisible),
		chromedp.KeyEvent("a", chromedp.KeyModifiers(input.ModifierCtrl)),
		chromedp.KeyEvent(kb.Delete),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.InsertText(text).Do(ctx)
		}),
	)
	if err != nil {
		return fmt.Errorf("fill %s: %w", selector, err)
	}
	return nil
}

func (t *Tab) PressKey(ctx context.Context, key string) error {
	return t.run(ctx, t.ActionTimeout, chromedp.KeyEvent(key))
}

func (t *Tab) InsertText(ctx context.Context, text string) error {
	return t.run(ctx, t.ActionTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		return input.InsertText(text).Do(ctx)
	}))
}

func (t *Tab) LastOuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	err := t.run(ctx, t.ActionTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		n, err := lastNode(ctx, selector)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(n.NodeID).Do(ctx)
		return err
	}))
	return html, err
}

// Close closes the tab.
func (t *Tab) Close(ctx context.Context) error {
	defer t.cancel()
	t.closed = true
	return t.run(ctx, t.ActionTimeout, page.Close())
}

// detach ends the DevTools session of the tab without closing the tab.
func (t *Tab) detach() error {
	c := chromedp.FromContext(t.ctx)
	if c == nil || c.Browser == nil || c.Target == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(t.ctx, detachTimeout)
	defer cancel()
	return target.DetachFromTarget().WithSessionID(c.Target.SessionID).Do(cdp.WithExecutor(ctx, c.Browser))
}

// lastNode returns the last match of selector without waiting for it to appear.
func lastNode(ctx context.Context, selector string) (*cdp.Node, error) {
	var nodes []*cdp.Node
	opt := chromedp.ByQueryAll
	if isXPath(selector) {
		opt = chromedp.BySearch
	}
	if err := chromedp.Nodes(selector, &nodes, opt, chromedp.AtLeast(0)).Do(ctx); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%s: %w", selector, ErrNotFound)
	}
	return nodes[len(nodes)-1], nil
}

func by(selector string) chromedp.QueryOption {
	if isXPath(selector) {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func isXPath(selector string) bool {
	return strings.HasPrefix(selector, "//") || strings.HasPrefix(selector, "(//")
}

func quadCenter(q dom.Quad) (float64, float64) {
	var x, y float64
	points := len(q) / 2
	if points == 0 {
		return 0, 0
	}
	for i := 0; i < points; i++ {
		x += q[2*i]
		y += q[2*i+1]
	}
	return x / float64(points), y / float64(points)
}
