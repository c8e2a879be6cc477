package browser

import (
	"context"
	"fmt"
	"sync"
)

// Call records one capability invocation on a Memory browser.
type Call struct {
	Op   string
	Args string
}

func (c Call) String() string {
	if c.Args == "" {
		return c.Op
	}
	return c.Op + " " + c.Args
}

type memWindow struct {
	id   int
	tabs []*Tab
}

// Memory is an in-process Browser. It backs tests and the "memory" browser
// backend. Hook, when set, runs before every call and aborts it by returning
// an error.
type Memory struct {
	mu         sync.Mutex
	nextWindow int
	nextTab    int
	windows    []*memWindow
	groups     *GroupRegistry
	calls      []Call

	Hook func(Call) error
}

// NewMemory creates an empty in-memory browser.
func NewMemory() *Memory {
	return &Memory{
		nextWindow: 1,
		nextTab:    1,
		groups:     NewGroupRegistry(),
	}
}

// FailOn returns a hook that fails the n-th call (1-based) of op with err.
func FailOn(op string, n int, err error) func(Call) error {
	seen := 0
	return func(c Call) error {
		if c.Op != op {
			return nil
		}
		seen++
		if seen == n {
			return err
		}
		return nil
	}
}

// Calls returns the invocations made so far, in order.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// WindowIDs returns the open windows in creation order.
func (m *Memory) WindowIDs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, w.id)
	}
	return out
}

func (m *Memory) begin(ctx context.Context, op, format string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := Call{Op: op, Args: fmt.Sprintf(format, args...)}
	m.calls = append(m.calls, c)
	if m.Hook != nil {
		if err := m.Hook(c); err != nil {
			return err
		}
	}
	return nil
}

// ListTabs enumerates tabs window by window, left to right.
func (m *Memory) ListTabs(ctx context.Context) ([]Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "ListTabs", ""); err != nil {
		return nil, err
	}

	var out []Tab
	for _, w := range m.windows {
		for _, t := range w.tabs {
			out = append(out, m.view(t))
		}
	}
	return out, nil
}

// ListGroups enumerates groups ordered by id.
func (m *Memory) ListGroups(ctx context.Context) ([]Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "ListGroups", ""); err != nil {
		return nil, err
	}
	return m.groups.Groups(), nil
}

// CloseTab closes a tab. Closing the last tab of a window closes the window.
func (m *Memory) CloseTab(ctx context.Context, tabID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "CloseTab", "%d", tabID); err != nil {
		return err
	}

	w, pos := m.locate(tabID)
	if w == nil {
		return fmt.Errorf("%w: %d", ErrTabNotFound, tabID)
	}
	closed := w.tabs[pos]
	w.tabs = append(w.tabs[:pos], w.tabs[pos+1:]...)
	m.groups.Forget(tabID)
	m.reindex(w)

	if len(w.tabs) == 0 {
		m.removeWindow(w.id)
		return nil
	}
	if closed.Active {
		w.tabs[min(pos, len(w.tabs)-1)].Active = true
	}
	return nil
}

// CreateWindow opens a window with a single active tab.
func (m *Memory) CreateWindow(ctx context.Context, url string) (Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "CreateWindow", "%s", url); err != nil {
		return Window{}, err
	}

	w := &memWindow{id: m.nextWindow}
	m.nextWindow++
	t := &Tab{ID: m.nextTab, WindowID: w.id, URL: url, Title: url, Active: true}
	m.nextTab++
	w.tabs = append(w.tabs, t)
	m.windows = append(m.windows, w)

	return Window{ID: w.id, Tabs: []Tab{m.view(t)}}, nil
}

// CreateTab opens a tab at the requested position.
func (m *Memory) CreateTab(ctx context.Context, opts CreateTabOptions) (Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "CreateTab", "window=%d index=%d %s", opts.WindowID, opts.Index, opts.URL); err != nil {
		return Tab{}, err
	}

	w := m.window(opts.WindowID)
	if w == nil {
		return Tab{}, fmt.Errorf("%w: %d", ErrWindowNotFound, opts.WindowID)
	}
	t := &Tab{ID: m.nextTab, WindowID: w.id, URL: opts.URL, Title: opts.URL}
	m.nextTab++
	m.groups.SetPinned(t.ID, opts.Pinned)

	pos := opts.Index
	if pos < 0 || pos > len(w.tabs) {
		pos = len(w.tabs)
	}
	w.tabs = append(w.tabs, nil)
	copy(w.tabs[pos+1:], w.tabs[pos:])
	w.tabs[pos] = t
	if opts.Active {
		m.activate(w, t)
	}
	m.reindex(w)
	return m.view(t), nil
}

// GroupTabs groups tabs that all live in one window.
func (m *Memory) GroupTabs(ctx context.Context, tabIDs []int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "GroupTabs", "%v", tabIDs); err != nil {
		return 0, err
	}
	if len(tabIDs) == 0 {
		return 0, ErrNoTabs
	}

	windowID := 0
	for i, id := range tabIDs {
		w, _ := m.locate(id)
		if w == nil {
			return 0, fmt.Errorf("%w: %d", ErrTabNotFound, id)
		}
		if i > 0 && w.id != windowID {
			return 0, ErrMixedWindows
		}
		windowID = w.id
	}
	return m.groups.Create(windowID, tabIDs)
}

// UpdateGroup restyles a group.
func (m *Memory) UpdateGroup(ctx context.Context, groupID int, style GroupStyle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "UpdateGroup", "%d title=%q color=%s collapsed=%t", groupID, style.Title, style.Color, style.Collapsed); err != nil {
		return err
	}
	return m.groups.Style(groupID, style)
}

// UpdateTab changes the given fields of a tab.
func (m *Memory) UpdateTab(ctx context.Context, tabID int, update TabUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "UpdateTab", "%d%s", tabID, describeUpdate(update)); err != nil {
		return err
	}

	w, pos := m.locate(tabID)
	if w == nil {
		return fmt.Errorf("%w: %d", ErrTabNotFound, tabID)
	}
	t := w.tabs[pos]
	if update.URL != nil {
		t.URL = *update.URL
	}
	if update.Pinned != nil {
		m.groups.SetPinned(tabID, *update.Pinned)
	}
	if update.Muted != nil {
		m.groups.SetMuted(tabID, *update.Muted)
	}
	if update.Active != nil && *update.Active {
		m.activate(w, t)
	}
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func (m *Memory) view(t *Tab) Tab {
	out := *t
	m.groups.Decorate(&out)
	return out
}

func (m *Memory) window(id int) *memWindow {
	for _, w := range m.windows {
		if w.id == id {
			return w
		}
	}
	return nil
}

func (m *Memory) locate(tabID int) (*memWindow, int) {
	for _, w := range m.windows {
		for i, t := range w.tabs {
			if t.ID == tabID {
				return w, i
			}
		}
	}
	return nil, -1
}

func (m *Memory) removeWindow(id int) {
	for i, w := range m.windows {
		if w.id == id {
			m.windows = append(m.windows[:i], m.windows[i+1:]...)
			break
		}
	}
	m.groups.ForgetWindow(id)
}

func (m *Memory) activate(w *memWindow, active *Tab) {
	for _, t := range w.tabs {
		t.Active = t == active
	}
}

func (m *Memory) reindex(w *memWindow) {
	for i, t := range w.tabs {
		t.Index = i
	}
}

func describeUpdate(u TabUpdate) string {
	var s string
	if u.URL != nil {
		s += " url=" + *u.URL
	}
	if u.Active != nil {
		s += fmt.Sprintf(" active=%t", *u.Active)
	}
	if u.Pinned != nil {
		s += fmt.Sprintf(" pinned=%t", *u.Pinned)
	}
	if u.Muted != nil {
		s += fmt.Sprintf(" muted=%t", *u.Muted)
	}
	return s
}
