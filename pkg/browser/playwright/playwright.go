// Package playwright drives a Chromium instance through Playwright.
//
// Playwright has no window or tab-group concepts, so each browser context
// stands in for a window and each page for a tab. Tab groups and the pinned
// and muted flags are kept in a browser.GroupRegistry.
package playwright

import (
	"context"
	"fmt"
	"io"
	"sync"

	pw "github.com/playwright-community/playwright-go"

	"github.com/entrhq/tabshelf/pkg/browser"
	"github.com/entrhq/tabshelf/pkg/logging"
)

// Options configures the backend.
type Options struct {
	// Headless runs Chromium without a visible window.
	Headless bool

	// RemoteURL connects to a running Chromium over CDP instead of
	// launching one.
	RemoteURL string

	// Install downloads the Playwright driver and browsers before starting.
	Install bool

	// NavigationTimeout in milliseconds (0 means Playwright's default).
	NavigationTimeout float64
}

type page struct {
	id   int
	page pw.Page
}

type window struct {
	id      int
	context pw.BrowserContext
	pages   []*page
	active  *page
}

// Backend is a browser.Browser backed by Playwright.
type Backend struct {
	mu         sync.Mutex
	opts       Options
	playwright *pw.Playwright
	browser    pw.Browser
	windows    []*window
	nextWindow int
	nextTab    int
	groups     *browser.GroupRegistry
	log        *logging.Logger
}

var _ browser.Browser = (*Backend)(nil)

// Start launches (or connects to) Chromium.
func Start(opts Options) (*Backend, error) {
	runOpts := &pw.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if opts.Install {
		if err := pw.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	instance, err := pw.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var b pw.Browser
	if opts.RemoteURL != "" {
		b, err = instance.Chromium.ConnectOverCDP(opts.RemoteURL)
	} else {
		b, err = instance.Chromium.Launch(pw.BrowserTypeLaunchOptions{Headless: &opts.Headless})
	}
	if err != nil {
		_ = instance.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	log, _ := logging.NewLogger("playwright")
	log.Infof("browser started (headless=%t remote=%q)", opts.Headless, opts.RemoteURL)

	return &Backend{
		opts:       opts,
		playwright: instance,
		browser:    b,
		nextWindow: 1,
		nextTab:    1,
		groups:     browser.NewGroupRegistry(),
		log:        log,
	}, nil
}

// ListTabs enumerates pages context by context.
func (b *Backend) ListTabs(ctx context.Context) ([]browser.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []browser.Tab
	for _, w := range b.windows {
		for i, p := range w.pages {
			title, err := p.page.Title()
			if err != nil {
				b.log.Debugf("title of tab %d: %v", p.id, err)
			}
			t := browser.Tab{
				ID:       p.id,
				WindowID: w.id,
				Index:    i,
				URL:      p.page.URL(),
				Title:    title,
				Active:   p == w.active,
			}
			b.groups.Decorate(&t)
			out = append(out, t)
		}
	}
	return out, nil
}

// ListGroups returns the emulated groups.
func (b *Backend) ListGroups(ctx context.Context) ([]browser.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.groups.Groups(), nil
}

// CloseTab closes a page. The context goes with its last page.
func (b *Backend) CloseTab(ctx context.Context, tabID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	w, pos := b.locate(tabID)
	if w == nil {
		return fmt.Errorf("%w: %d", browser.ErrTabNotFound, tabID)
	}
	p := w.pages[pos]
	if err := p.page.Close(); err != nil {
		return fmt.Errorf("close tab %d: %w", tabID, err)
	}
	w.pages = append(w.pages[:pos], w.pages[pos+1:]...)
	b.groups.Forget(tabID)

	if len(w.pages) == 0 {
		if err := w.context.Close(); err != nil {
			b.log.Warnf("close window %d: %v", w.id, err)
		}
		b.dropWindow(w)
		return nil
	}
	if w.active == p {
		w.active = w.pages[min(pos, len(w.pages)-1)]
	}
	return nil
}

// CreateWindow opens a new browser context with one page.
func (b *Backend) CreateWindow(ctx context.Context, url string) (browser.Window, error) {
	if err := ctx.Err(); err != nil {
		return browser.Window{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	bc, err := b.browser.NewContext()
	if err != nil {
		return browser.Window{}, fmt.Errorf("failed to create context: %w", err)
	}
	w := &window{id: b.nextWindow, context: bc}
	b.nextWindow++

	p, err := b.openPage(w, url)
	if err != nil {
		_ = bc.Close()
		return browser.Window{}, err
	}
	w.pages = []*page{p}
	w.active = p
	b.windows = append(b.windows, w)

	return browser.Window{ID: w.id, Tabs: []browser.Tab{{
		ID: p.id, WindowID: w.id, URL: url, Active: true, GroupID: browser.NoGroup,
	}}}, nil
}

// CreateTab opens a page in an existing context.
func (b *Backend) CreateTab(ctx context.Context, opts browser.CreateTabOptions) (browser.Tab, error) {
	if err := ctx.Err(); err != nil {
		return browser.Tab{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	w := b.window(opts.WindowID)
	if w == nil {
		return browser.Tab{}, fmt.Errorf("%w: %d", browser.ErrWindowNotFound, opts.WindowID)
	}
	p, err := b.openPage(w, opts.URL)
	if err != nil {
		return browser.Tab{}, err
	}

	pos := opts.Index
	if pos < 0 || pos > len(w.pages) {
		pos = len(w.pages)
	}
	w.pages = append(w.pages, nil)
	copy(w.pages[pos+1:], w.pages[pos:])
	w.pages[pos] = p
	b.groups.SetPinned(p.id, opts.Pinned)

	if opts.Active {
		if err := b.activate(w, p); err != nil {
			return browser.Tab{}, err
		}
	}

	return browser.Tab{
		ID: p.id, WindowID: w.id, Index: pos, URL: opts.URL,
		Pinned: opts.Pinned, Active: w.active == p, GroupID: browser.NoGroup,
	}, nil
}

// GroupTabs groups pages of a single context.
func (b *Backend) GroupTabs(ctx context.Context, tabIDs []int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(tabIDs) == 0 {
		return 0, browser.ErrNoTabs
	}
	windowID := 0
	for i, id := range tabIDs {
		w, _ := b.locate(id)
		if w == nil {
			return 0, fmt.Errorf("%w: %d", browser.ErrTabNotFound, id)
		}
		if i > 0 && w.id != windowID {
			return 0, browser.ErrMixedWindows
		}
		windowID = w.id
	}
	return b.groups.Create(windowID, tabIDs)
}

// UpdateGroup restyles an emulated group.
func (b *Backend) UpdateGroup(ctx context.Context, groupID int, style browser.GroupStyle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.groups.Style(groupID, style)
}

// UpdateTab navigates, focuses or flags a page.
func (b *Backend) UpdateTab(ctx context.Context, tabID int, update browser.TabUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	w, pos := b.locate(tabID)
	if w == nil {
		return fmt.Errorf("%w: %d", browser.ErrTabNotFound, tabID)
	}
	p := w.pages[pos]

	if update.URL != nil {
		if err := b.navigate(p, *update.URL); err != nil {
			return err
		}
	}
	if update.Pinned != nil {
		b.groups.SetPinned(tabID, *update.Pinned)
	}
	if update.Muted != nil {
		b.groups.SetMuted(tabID, *update.Muted)
	}
	if update.Active != nil && *update.Active {
		return b.activate(w, p)
	}
	return nil
}

// Close shuts every context down and stops Playwright.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range b.windows {
		_ = w.context.Close()
	}
	b.windows = nil
	_ = b.browser.Close()

	if err := b.playwright.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

func (b *Backend) openPage(w *window, url string) (*page, error) {
	pg, err := w.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	p := &page{id: b.nextTab, page: pg}
	b.nextTab++
	if err := b.navigate(p, url); err != nil {
		_ = pg.Close()
		return nil, err
	}
	return p, nil
}

func (b *Backend) navigate(p *page, url string) error {
	if url == "" {
		return nil
	}
	// Only wait for the response to commit; restoring dozens of tabs must
	// not block on every page load.
	commit := pw.WaitUntilState("commit")
	opts := pw.PageGotoOptions{WaitUntil: &commit}
	if b.opts.NavigationTimeout > 0 {
		opts.Timeout = &b.opts.NavigationTimeout
	}
	if _, err := p.page.Goto(url, opts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (b *Backend) activate(w *window, p *page) error {
	if err := p.page.BringToFront(); err != nil {
		return fmt.Errorf("activate tab %d: %w", p.id, err)
	}
	w.active = p
	return nil
}

func (b *Backend) window(id int) *window {
	for _, w := range b.windows {
		if w.id == id {
			return w
		}
	}
	return nil
}

func (b *Backend) locate(tabID int) (*window, int) {
	for _, w := range b.windows {
		for i, p := range w.pages {
			if p.id == tabID {
				return w, i
			}
		}
	}
	return nil, -1
}

func (b *Backend) dropWindow(w *window) {
	for i, cand := range b.windows {
		if cand == w {
			b.windows = append(b.windows[:i], b.windows[i+1:]...)
			break
		}
	}
	b.groups.ForgetWindow(w.id)
}
