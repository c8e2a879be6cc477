// Package cdp drives a real Chrome over the DevTools protocol with go-rod.
//
// CDP reports real window ids but has no tab groups, tab order or muting, so
// groups and flags live in a browser.GroupRegistry and tab order is the order
// this backend created or first saw each page.
package cdp

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/entrhq/tabshelf/pkg/browser"
	"github.com/entrhq/tabshelf/pkg/logging"
)

// Config configures the backend.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Headless only applies to a launched Chrome.
	Headless bool
}

// Backend is a browser.Browser backed by a CDP connection.
type Backend struct {
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	nextTab int
	ids     map[proto.TargetTargetID]int
	targets map[int]proto.TargetTargetID
	order   map[int][]int // window id -> tab ids, left to right
	active  map[int]int   // window id -> active tab id
	groups  *browser.GroupRegistry
	log     *logging.Logger
}

var _ browser.Browser = (*Backend)(nil)

// Connect launches Chrome (or dials RemoteURL) and attaches to it.
func Connect(ctx context.Context, cfg Config) (*Backend, error) {
	log, _ := logging.NewLogger("cdp")

	var wsURL string
	var l *launcher.Launcher
	if cfg.RemoteURL != "" {
		wsURL = cfg.RemoteURL
		log.Infof("connecting to remote chrome at %s", wsURL)
	} else {
		l = launcher.New().Headless(cfg.Headless)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		log.Infof("launched local chrome at %s (headless=%t)", wsURL, cfg.Headless)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Cleanup()
		}
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	return &Backend{
		browser: b,
		lnch:    l,
		nextTab: 1,
		ids:     make(map[proto.TargetTargetID]int),
		targets: make(map[int]proto.TargetTargetID),
		order:   make(map[int][]int),
		active:  make(map[int]int),
		groups:  browser.NewGroupRegistry(),
		log:     log,
	}, nil
}

// ListTabs enumerates page targets grouped by window.
func (b *Backend) ListTabs(ctx context.Context) ([]browser.Tab, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.syncLocked(ctx); err != nil {
		return nil, err
	}

	var out []browser.Tab
	for _, windowID := range b.windowOrder() {
		for i, tabID := range b.order[windowID] {
			page, err := b.browser.Context(ctx).PageFromTarget(b.targets[tabID])
			if err != nil {
				return nil, fmt.Errorf("attach tab %d: %w", tabID, err)
			}
			info, err := page.Info()
			if err != nil {
				return nil, fmt.Errorf("inspect tab %d: %w", tabID, err)
			}
			t := browser.Tab{
				ID:       tabID,
				WindowID: windowID,
				Index:    i,
				URL:      info.URL,
				Title:    info.Title,
				Active:   b.active[windowID] == tabID,
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

// CloseTab closes a page target.
func (b *Backend) CloseTab(ctx context.Context, tabID int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	page, windowID, err := b.pageLocked(ctx, tabID)
	if err != nil {
		return err
	}
	if err := page.Close(); err != nil {
		return fmt.Errorf("close tab %d: %w", tabID, err)
	}
	b.forgetLocked(tabID, windowID)
	return nil
}

// CreateWindow opens a target in a new window.
func (b *Backend) CreateWindow(ctx context.Context, url string) (browser.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url, NewWindow: true})
	if err != nil {
		return browser.Window{}, fmt.Errorf("browser: create window: %w", err)
	}
	windowID, err := b.windowOf(ctx, page.TargetID)
	if err != nil {
		return browser.Window{}, err
	}

	tabID := b.trackLocked(page.TargetID)
	b.order[windowID] = []int{tabID}
	b.active[windowID] = tabID

	return browser.Window{ID: windowID, Tabs: []browser.Tab{{
		ID: tabID, WindowID: windowID, URL: url, Active: true, GroupID: browser.NoGroup,
	}}}, nil
}

// CreateTab opens a page in a window. CDP places new targets in the focused
// window, so the window's active tab is brought to front first.
func (b *Backend) CreateTab(ctx context.Context, opts browser.CreateTabOptions) (browser.Tab, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	anchorID, ok := b.active[opts.WindowID]
	if !ok {
		return browser.Tab{}, fmt.Errorf("%w: %d", browser.ErrWindowNotFound, opts.WindowID)
	}
	anchor, err := b.browser.Context(ctx).PageFromTarget(b.targets[anchorID])
	if err != nil {
		return browser.Tab{}, fmt.Errorf("attach tab %d: %w", anchorID, err)
	}
	if _, err := anchor.Activate(); err != nil {
		return browser.Tab{}, fmt.Errorf("focus window %d: %w", opts.WindowID, err)
	}

	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: opts.URL})
	if err != nil {
		return browser.Tab{}, fmt.Errorf("browser: create tab: %w", err)
	}
	windowID, err := b.windowOf(ctx, page.TargetID)
	if err != nil {
		return browser.Tab{}, err
	}
	if windowID != opts.WindowID {
		b.log.Warnf("tab for window %d opened in window %d", opts.WindowID, windowID)
	}

	tabID := b.trackLocked(page.TargetID)
	tabs := b.order[windowID]
	pos := opts.Index
	if pos < 0 || pos > len(tabs) {
		pos = len(tabs)
	}
	tabs = append(tabs, 0)
	copy(tabs[pos+1:], tabs[pos:])
	tabs[pos] = tabID
	b.order[windowID] = tabs
	b.groups.SetPinned(tabID, opts.Pinned)

	if opts.Active {
		b.active[windowID] = tabID
	} else if _, err := anchor.Activate(); err != nil {
		b.log.Debugf("refocus tab %d: %v", anchorID, err)
	}

	return browser.Tab{
		ID: tabID, WindowID: windowID, Index: pos, URL: opts.URL,
		Pinned: opts.Pinned, Active: opts.Active, GroupID: browser.NoGroup,
	}, nil
}

// GroupTabs groups tabs of one window.
func (b *Backend) GroupTabs(ctx context.Context, tabIDs []int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(tabIDs) == 0 {
		return 0, browser.ErrNoTabs
	}
	windowID := 0
	for i, id := range tabIDs {
		w, ok := b.windowOfTab(id)
		if !ok {
			return 0, fmt.Errorf("%w: %d", browser.ErrTabNotFound, id)
		}
		if i > 0 && w != windowID {
			return 0, browser.ErrMixedWindows
		}
		windowID = w
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

// UpdateTab navigates, activates or flags a page.
func (b *Backend) UpdateTab(ctx context.Context, tabID int, update browser.TabUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	page, windowID, err := b.pageLocked(ctx, tabID)
	if err != nil {
		return err
	}
	if update.URL != nil {
		if err := page.Navigate(*update.URL); err != nil {
			return fmt.Errorf("browser: navigate %s: %w", *update.URL, err)
		}
	}
	if update.Pinned != nil {
		b.groups.SetPinned(tabID, *update.Pinned)
	}
	if update.Muted != nil {
		b.groups.SetMuted(tabID, *update.Muted)
	}
	if update.Active != nil && *update.Active {
		if _, err := page.Activate(); err != nil {
			return fmt.Errorf("activate tab %d: %w", tabID, err)
		}
		b.active[windowID] = tabID
	}
	return nil
}

// Close disconnects and, for a launched Chrome, kills it.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.browser.Close()
	if b.lnch != nil {
		b.lnch.Cleanup()
		b.lnch = nil
	}
	return err
}

// syncLocked picks up pages opened outside this backend and drops closed ones.
func (b *Backend) syncLocked(ctx context.Context) error {
	pages, err := b.browser.Context(ctx).Pages()
	if err != nil {
		return fmt.Errorf("browser: list pages: %w", err)
	}

	alive := make(map[proto.TargetTargetID]bool, len(pages))
	for _, p := range pages {
		alive[p.TargetID] = true
		if _, known := b.ids[p.TargetID]; known {
			continue
		}
		windowID, err := b.windowOf(ctx, p.TargetID)
		if err != nil {
			return err
		}
		tabID := b.trackLocked(p.TargetID)
		b.order[windowID] = append(b.order[windowID], tabID)
		if _, ok := b.active[windowID]; !ok {
			b.active[windowID] = tabID
		}
	}

	for target, tabID := range b.ids {
		if alive[target] {
			continue
		}
		if windowID, ok := b.windowOfTab(tabID); ok {
			b.forgetLocked(tabID, windowID)
		}
	}
	return nil
}

func (b *Backend) pageLocked(ctx context.Context, tabID int) (*rod.Page, int, error) {
	target, ok := b.targets[tabID]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", browser.ErrTabNotFound, tabID)
	}
	windowID, _ := b.windowOfTab(tabID)
	page, err := b.browser.Context(ctx).PageFromTarget(target)
	if err != nil {
		return nil, 0, fmt.Errorf("attach tab %d: %w", tabID, err)
	}
	return page, windowID, nil
}

func (b *Backend) windowOf(ctx context.Context, target proto.TargetTargetID) (int, error) {
	res, err := proto.BrowserGetWindowForTarget{TargetID: target}.Call(b.browser.Context(ctx))
	if err != nil {
		return 0, fmt.Errorf("browser: window for target %s: %w", target, err)
	}
	return int(res.WindowID), nil
}

func (b *Backend) trackLocked(target proto.TargetTargetID) int {
	id := b.nextTab
	b.nextTab++
	b.ids[target] = id
	b.targets[id] = target
	return id
}

func (b *Backend) forgetLocked(tabID, windowID int) {
	delete(b.ids, b.targets[tabID])
	delete(b.targets, tabID)
	b.groups.Forget(tabID)

	tabs := b.order[windowID]
	for i, id := range tabs {
		if id == tabID {
			tabs = append(tabs[:i], tabs[i+1:]...)
			break
		}
	}
	if len(tabs) == 0 {
		delete(b.order, windowID)
		delete(b.active, windowID)
		b.groups.ForgetWindow(windowID)
		return
	}
	b.order[windowID] = tabs
	if b.active[windowID] == tabID {
		b.active[windowID] = tabs[0]
	}
}

func (b *Backend) windowOfTab(tabID int) (int, bool) {
	for windowID, tabs := range b.order {
		for _, id := range tabs {
			if id == tabID {
				return windowID, true
			}
		}
	}
	return 0, false
}

// windowOrder lists windows by ascending id.
func (b *Backend) windowOrder() []int {
	out := make([]int, 0, len(b.order))
	for id := range b.order {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
