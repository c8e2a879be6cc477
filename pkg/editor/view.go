package editor

import (
	"fmt"
	"time"

	"github.com/entrhq/tabshelf/pkg/snapshot"
)

// RecentlyMovedFor is how long a moved tab stays highlighted.
const RecentlyMovedFor = 2 * time.Second

// EmptyText is shown when the document has no windows.
const EmptyText = "No windows yet. Import JSON or create a window."

// View is a filtered, read-only rendering of the document.
type View struct {
	Windows []WindowView
	// Total counts the tabs passing the filter across all windows.
	Total int
	// Duplicates counts distinct URLs held by more than one tab.
	Duplicates     int
	DuplicatesOnly bool
	Filtering      bool
}

// TotalLabel is the overall tab counter.
func (v View) TotalLabel() string {
	return fmt.Sprintf("Total tabs: %d", v.Total)
}

// DuplicatesLabel describes the duplicate toggle.
func (v View) DuplicatesLabel() string {
	if v.DuplicatesOnly {
		return fmt.Sprintf("Showing Duplicates (%d)", v.Duplicates)
	}
	return fmt.Sprintf("Show Duplicates (%d)", v.Duplicates)
}

// WindowView is one window with its ungrouped set first, then its groups.
type WindowView struct {
	ID    int
	Label string
	// Count is the number of visible tabs, Size the number of all tabs.
	Count     int
	Size      int
	Ungrouped SetView
	Groups    []SetView
}

// Sets returns the ungrouped set followed by the groups.
func (w WindowView) Sets() []SetView {
	return append([]SetView{w.Ungrouped}, w.Groups...)
}

// DeletePrompt is the confirmation question for deleting the window, empty
// when the window has no tabs.
func (w WindowView) DeletePrompt() string {
	if w.Size == 0 {
		return ""
	}
	return fmt.Sprintf("Delete window and close %d tab(s)?", w.Size)
}

// SetView is a sibling set. GroupID is empty for the ungrouped set.
type SetView struct {
	WindowID  int
	GroupID   string
	Title     string
	Color     snapshot.Color
	Collapsed bool
	Tabs      []TabView
	Size      int
}

// Grouped reports whether the set is a tab group.
func (s SetView) Grouped() bool {
	return s.GroupID != ""
}

// DeletePrompt is the confirmation question for deleting the group, empty
// when the group has no tabs.
func (s SetView) DeletePrompt() string {
	if s.Size == 0 {
		return ""
	}
	return fmt.Sprintf("Delete group and close %d tab(s)?", s.Size)
}

// TabView is one visible tab.
type TabView struct {
	Ref string
	// Index is the tab's position among all of its siblings, visible or not.
	Index         int
	Title         string
	URL           string
	Pinned        bool
	Active        bool
	Muted         bool
	Duplicate     bool
	RecentlyMoved bool
}

// Label is the title, or the URL when the title is empty.
func (t TabView) Label() string {
	if t.Title != "" {
		return t.Title
	}
	return t.URL
}

// View renders the document through the current filter.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	dups := c.doc.DuplicateURLSet()
	v := View{
		Duplicates:     len(dups),
		DuplicatesOnly: c.filter.DuplicatesOnly,
		Filtering:      c.filter.Active(),
	}
	recent := ""
	if c.lastMoved != "" && c.clock.Now().Sub(c.lastMovedAt) < RecentlyMovedFor {
		recent = c.lastMoved
	}

	for i, windowID := range c.doc.WindowIDs() {
		w := WindowView{
			ID:        windowID,
			Label:     fmt.Sprintf("Window %d", i+1),
			Size:      len(c.doc.TabsOfWindow(windowID)),
			Ungrouped: c.setView(windowID, nil, c.doc.UngroupedTabsOfWindow(windowID), dups, recent),
		}
		w.Count = len(w.Ungrouped.Tabs)
		for _, g := range c.doc.GroupsOfWindow(windowID) {
			s := c.setView(windowID, g, c.doc.TabsOfGroup(windowID, g.ID), dups, recent)
			w.Count += len(s.Tabs)
			w.Groups = append(w.Groups, s)
		}
		v.Total += w.Count
		v.Windows = append(v.Windows, w)
	}
	return v
}

func (c *Controller) setView(windowID int, g *snapshot.Group, tabs []*snapshot.Tab, dups map[string]struct{}, recent string) SetView {
	s := SetView{WindowID: windowID, Title: "Ungrouped", Size: len(tabs)}
	if g != nil {
		s.GroupID = g.ID
		s.Title = g.Title
		s.Color = g.Color
		s.Collapsed = g.Collapsed
	}
	for _, t := range tabs {
		if !c.filter.Match(t, dups) {
			continue
		}
		_, dup := dups[t.URL]
		ref := c.doc.Ref(t)
		s.Tabs = append(s.Tabs, TabView{
			Ref:           ref,
			Index:         t.Index,
			Title:         t.Title,
			URL:           t.URL,
			Pinned:        t.Pinned,
			Active:        t.Active,
			Muted:         t.Muted,
			Duplicate:     dup,
			RecentlyMoved: ref == recent,
		})
	}
	return s
}
