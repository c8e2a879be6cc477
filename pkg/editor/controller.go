// Package editor owns the single document being edited and every operation
// the presentation layer can apply to it.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/entrhq/tabshelf/pkg/autosave"
	"github.com/entrhq/tabshelf/pkg/codec"
	"github.com/entrhq/tabshelf/pkg/logging"
	"github.com/entrhq/tabshelf/pkg/snapshot"
)

var (
	ErrUnknownTab    = errors.New("editor: unknown tab")
	ErrUnknownGroup  = errors.New("editor: unknown group")
	ErrUnknownWindow = errors.New("editor: unknown window")
	ErrNoClipboard   = errors.New("editor: no clipboard available")
)

// Status messages.
const (
	StatusReady            = "Ready. Import a JSON file to begin."
	StatusLoaded           = "Loaded."
	StatusRestored         = "Restored from autosave."
	StatusAutosaved        = "Autosaved."
	StatusAutosaveCleared  = "Autosave cleared."
	StatusCreatedNewWindow = "Created new window."
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Options configures a Controller. Every field is optional.
type Options struct {
	// Store receives the autosave payload and the theme. Nil disables both.
	Store autosave.Store
	Clock autosave.Clock
	// Delay is the autosave quiet period.
	Delay     time.Duration
	Clipboard Clipboard
	// Canonicalizer rewrites URLs in the Markdown table.
	Canonicalizer *codec.Canonicalizer
	Logger        *logging.Logger
}

// Controller serializes every edit of one document. Methods are safe to call
// from several goroutines; autosave runs on the clock's timer goroutine.
type Controller struct {
	mu     sync.Mutex
	doc    *snapshot.Document
	filter snapshot.Filter
	status string

	clock autosave.Clock
	saver *autosave.Debouncer
	store autosave.Store
	clip  Clipboard
	canon *codec.Canonicalizer
	log   *logging.Logger

	lastMoved   string
	lastMovedAt time.Time
}

// New creates a controller holding an empty document.
func New(opts Options) *Controller {
	c := &Controller{
		doc:    snapshot.NewDocument(),
		status: StatusReady,
		clock:  opts.Clock,
		store:  opts.Store,
		clip:   opts.Clipboard,
		canon:  opts.Canonicalizer,
		log:    opts.Logger,
	}
	if c.clock == nil {
		c.clock = autosave.SystemClock{}
	}
	if c.canon == nil {
		c.canon = codec.DefaultCanonicalizer()
	}
	if c.log == nil {
		c.log = logging.Discard("editor")
	}
	c.saver = autosave.NewDebouncer(opts.Delay, c.clock, c.save)
	return c
}

func (c *Controller) save() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store == nil {
		return
	}
	p := autosave.Payload{Snapshot: c.doc.Snapshot(), Windows: c.doc.WindowIDs()}
	if err := autosave.SavePayload(c.store, p); err != nil {
		c.log.Errorf("autosave failed: %v", err)
		c.status = "Autosave failed: " + err.Error()
		return
	}
	c.status = StatusAutosaved
}

// changed must be called with mu held after every mutation.
func (c *Controller) changed() {
	c.saver.Schedule()
}

func (c *Controller) loadLocked(snap *snapshot.Snapshot, windows []int) {
	snap = snap.Clone()
	snapshot.Repair(snap)
	c.doc = snapshot.Load(snap, windows)
	c.lastMoved = ""
	c.status = StatusLoaded
	c.changed()
}

// Load replaces the document with snap and the known windows. An empty
// windows list derives the windows from snap.
func (c *Controller) Load(snap *snapshot.Snapshot, windows []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked(snap, windows)
	c.log.Infof("loaded %d tabs in %d windows", len(c.doc.Tabs()), len(c.doc.WindowIDs()))
}

// Restore loads the autosaved document. It reports false when nothing was
// saved or there is no store.
func (c *Controller) Restore() (bool, error) {
	if c.store == nil {
		return false, nil
	}
	p, ok, err := autosave.LoadPayload(c.store)
	if err != nil {
		c.log.Warnf("ignoring unreadable autosave: %v", err)
		c.setStatus("Restore failed: " + err.Error())
		return false, err
	}
	if !ok || p.Snapshot == nil {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked(p.Snapshot, p.Windows)
	c.status = StatusRestored
	c.log.Infof("restored %d tabs from autosave", len(c.doc.Tabs()))
	return true, nil
}

// ClearAutosave deletes the saved document and drops a pending save. The
// open document is kept.
func (c *Controller) ClearAutosave() error {
	c.saver.Stop()
	if c.store != nil {
		if err := c.store.Delete(autosave.PayloadKey); err != nil {
			c.setStatus("Clear failed: " + err.Error())
			return err
		}
	}
	c.setStatus(StatusAutosaveCleared)
	return nil
}

// ImportJSON replaces the document with an imported snapshot and returns the
// number of tabs it holds.
func (c *Controller) ImportJSON(data []byte) (int, error) {
	snap, err := codec.ParseImport(data)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = "Import failed: " + err.Error()
		c.log.Warnf("import failed: %v", err)
		return 0, err
	}
	c.loadLocked(snap, nil)
	n := len(c.doc.Tabs())
	c.status = fmt.Sprintf("Imported %d tabs.", n)
	return n, nil
}

// Export returns the canonical snapshot of the document.
func (c *Controller) Export() *snapshot.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return codec.Export(c.doc, c.clock.Now())
}

// ExportJSON writes the canonical snapshot to w and returns the number of
// exported tabs.
func (c *Controller) ExportJSON(w io.Writer) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := codec.Export(c.doc, c.clock.Now())
	data, err := codec.EncodeJSON(snap)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		c.status = "Export failed: " + err.Error()
		return 0, fmt.Errorf("editor: write export: %w", err)
	}
	c.status = fmt.Sprintf("Exported %d tabs.", len(snap.Tabs))
	return len(snap.Tabs), nil
}

// PreviewJSON returns the canonical snapshot as indented JSON without
// touching the status.
func (c *Controller) PreviewJSON() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := codec.EncodeJSON(codec.Export(c.doc, c.clock.Now()))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ExportMarkdown builds the de-duplicated Markdown table of the document.
func (c *Controller) ExportMarkdown() *codec.Table {
	c.mu.Lock()
	defer c.mu.Unlock()
	return codec.BuildTable(codec.DocumentEntries(c.doc), c.canon)
}

// CopyMarkdown writes the Markdown table to the clipboard.
func (c *Controller) CopyMarkdown() error {
	if c.clip == nil {
		c.setStatus("Copy failed: no clipboard.")
		return ErrNoClipboard
	}
	table := c.ExportMarkdown()
	if err := c.clip.WriteAll(table.Markdown()); err != nil {
		c.setStatus("Copy failed: " + err.Error())
		return fmt.Errorf("editor: write clipboard: %w", err)
	}
	c.setStatus(fmt.Sprintf("Copied %d tabs as Markdown.", len(table.Rows)))
	return nil
}

func (c *Controller) tab(ref string) (*snapshot.Tab, error) {
	t, ok := c.doc.TabByRef(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTab, ref)
	}
	return t, nil
}

func (c *Controller) group(id string) (*snapshot.Group, error) {
	g, ok := c.doc.Group(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, id)
	}
	return g, nil
}

func (c *Controller) moveLocked(t *snapshot.Tab, window int, group string, index int) error {
	if err := c.doc.MoveTab(t, window, group, index); err != nil {
		return err
	}
	c.lastMoved = c.doc.Ref(t)
	c.lastMovedAt = c.clock.Now()
	c.changed()
	return nil
}

// MoveTab drops the tab at index of the sibling set (window, group). An empty
// group is the window's ungrouped set.
func (c *Controller) MoveTab(ref string, window int, group string, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.tab(ref)
	if err != nil {
		return err
	}
	return c.moveLocked(t, window, group, index)
}

// MoveTabBy shifts a tab delta places inside its sibling set, stopping at
// either end.
func (c *Controller) MoveTabBy(ref string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.tab(ref)
	if err != nil {
		return err
	}
	size := len(c.doc.TabsOfGroup(t.WindowID, string(t.GroupID)))
	if !t.IsGrouped() {
		size = len(c.doc.UngroupedTabsOfWindow(t.WindowID))
	}
	to := max(0, min(t.Index+delta, size-1))
	if to == t.Index {
		return nil
	}
	drop := to
	if to > t.Index {
		drop++
	}
	return c.moveLocked(t, t.WindowID, string(t.GroupID), drop)
}

type container struct {
	window int
	group  string
}

func (c *Controller) containers() []container {
	var out []container
	for _, w := range c.doc.WindowIDs() {
		out = append(out, container{window: w})
		for _, g := range c.doc.GroupsOfWindow(w) {
			out = append(out, container{window: w, group: g.ID})
		}
	}
	return out
}

// MoveTabAcross moves a tab delta sibling sets forward or backward in display
// order (each window's ungrouped set, then its groups). Moving forward puts
// the tab first in the new set, moving backward puts it last.
func (c *Controller) MoveTabAcross(ref string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.tab(ref)
	if err != nil {
		return err
	}
	all := c.containers()
	cur := -1
	for i, ct := range all {
		if ct.window == t.WindowID && ct.group == string(t.GroupID) {
			cur = i
			break
		}
	}
	next := cur + delta
	if cur == -1 || delta == 0 || next < 0 || next >= len(all) {
		return nil
	}
	target := all[next]
	index := 0
	if delta < 0 {
		if target.group == "" {
			index = len(c.doc.UngroupedTabsOfWindow(target.window))
		} else {
			index = len(c.doc.TabsOfGroup(target.window, target.group))
		}
	}
	return c.moveLocked(t, target.window, target.group, index)
}

// DeleteTab removes a tab from the document.
func (c *Controller) DeleteTab(ref string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.tab(ref)
	if err != nil {
		return err
	}
	if err := c.doc.DeleteTab(t); err != nil {
		return err
	}
	c.changed()
	return nil
}

// CreateWindow adds an empty window and returns its id.
func (c *Controller) CreateWindow() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.doc.CreateWindow()
	c.status = StatusCreatedNewWindow
	c.changed()
	return id
}

// DeleteWindow removes a window with its groups and tabs.
func (c *Controller) DeleteWindow(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.doc.HasWindow(id) {
		return fmt.Errorf("%w: %d", ErrUnknownWindow, id)
	}
	c.doc.DeleteWindow(id)
	c.changed()
	return nil
}

// CreateGroup appends a new group to a window and returns its id.
func (c *Controller) CreateGroup(window int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.doc.HasWindow(window) {
		return "", fmt.Errorf("%w: %d", ErrUnknownWindow, window)
	}
	g := c.doc.CreateGroup(window)
	c.changed()
	return g.ID, nil
}

// DeleteGroup removes a group together with its tabs.
func (c *Controller) DeleteGroup(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, err := c.group(id)
	if err != nil {
		return err
	}
	if err := c.doc.DeleteGroup(g); err != nil {
		return err
	}
	c.changed()
	return nil
}

func (c *Controller) updateGroup(id string, patch func(*snapshot.Group) snapshot.GroupPatch) (*snapshot.Group, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, err := c.group(id)
	if err != nil {
		return nil, err
	}
	if err := c.doc.UpdateGroup(g, patch(g)); err != nil {
		return nil, err
	}
	c.changed()
	return g, nil
}

// RenameGroup sets a group's title.
func (c *Controller) RenameGroup(id, title string) error {
	_, err := c.updateGroup(id, func(*snapshot.Group) snapshot.GroupPatch {
		return snapshot.GroupPatch{Title: &title}
	})
	return err
}

// SetGroupColor sets a group's colour. Unknown colours become the default.
func (c *Controller) SetGroupColor(id string, color snapshot.Color) error {
	_, err := c.updateGroup(id, func(*snapshot.Group) snapshot.GroupPatch {
		return snapshot.GroupPatch{Color: &color}
	})
	return err
}

// CycleGroupColor moves a group to the next palette colour and returns it.
func (c *Controller) CycleGroupColor(id string) (snapshot.Color, error) {
	g, err := c.updateGroup(id, func(g *snapshot.Group) snapshot.GroupPatch {
		next := g.Color.Next()
		return snapshot.GroupPatch{Color: &next}
	})
	if err != nil {
		return "", err
	}
	return g.Color, nil
}

// ToggleGroupCollapsed flips the collapsed flag and returns the new value.
func (c *Controller) ToggleGroupCollapsed(id string) (bool, error) {
	g, err := c.updateGroup(id, func(g *snapshot.Group) snapshot.GroupPatch {
		collapsed := !g.Collapsed
		return snapshot.GroupPatch{Collapsed: &collapsed}
	})
	if err != nil {
		return false, err
	}
	return g.Collapsed, nil
}

// SetSearch updates the title and URL needles.
func (c *Controller) SetSearch(title, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.Title = title
	c.filter.URL = url
}

// ToggleDuplicates flips the duplicates-only filter and returns the new value.
func (c *Controller) ToggleDuplicates() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.DuplicatesOnly = !c.filter.DuplicatesOnly
	return c.filter.DuplicatesOnly
}

// Filter returns the current filter.
func (c *Controller) Filter() snapshot.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Status returns the latest status message.
func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) setStatus(s string) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// Theme returns the persisted theme, light unless dark was saved.
func (c *Controller) Theme() string {
	if c.store == nil {
		return ThemeLight
	}
	data, err := c.store.Get(autosave.ThemeKey)
	if err != nil {
		return ThemeLight
	}
	var theme string
	if json.Unmarshal(data, &theme) != nil || theme != ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// SetTheme persists a theme. Anything but dark is stored as light.
func (c *Controller) SetTheme(theme string) error {
	if theme != ThemeDark {
		theme = ThemeLight
	}
	if c.store == nil {
		return nil
	}
	data, _ := json.Marshal(theme)
	if err := c.store.Put(autosave.ThemeKey, data); err != nil {
		return fmt.Errorf("editor: save theme: %w", err)
	}
	return nil
}

// ToggleTheme switches between light and dark and returns the new theme.
func (c *Controller) ToggleTheme() (string, error) {
	next := ThemeDark
	if c.Theme() == ThemeDark {
		next = ThemeLight
	}
	return next, c.SetTheme(next)
}

// Close saves a pending change right away and stops autosave.
func (c *Controller) Close() error {
	c.saver.Flush()
	c.saver.Stop()
	return nil
}
