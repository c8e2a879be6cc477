package snapshot

import "fmt"

// DefaultGroupTitle is the title given to groups created in the editor.
const DefaultGroupTitle = "New Group"

// GroupPatch holds the editable attributes of a group. Nil fields are left
// unchanged.
type GroupPatch struct {
	Title     *string
	Color     *Color
	Collapsed *bool
}

// TabPatch holds the editable attributes of a tab. Window, group and index
// are structural and only change through MoveTab.
type TabPatch struct {
	URL    *string
	Title  *string
	Pinned *bool
	Active *bool
	Muted  *bool
}

// reindex assigns positions in list order and pins every tab to the given
// sibling set.
func reindex(windowID int, groupID GroupID, list []*Tab) {
	for i, t := range list {
		t.WindowID = windowID
		t.GroupID = groupID
		t.Index = i
	}
}

// MoveTab moves tab to position targetIndex of the sibling set identified by
// targetWindow and targetGroup (empty for ungrouped). Both the source and the
// target sets are densely re-indexed.
//
// Within a single sibling set targetIndex is a drop position in the list as
// it was before the move, so an index past the tab's own slot is shifted
// down by one.
func (d *Document) MoveTab(tab *Tab, targetWindow int, targetGroup string, targetIndex int) error {
	if !d.contains(tab) {
		return ErrTabNotFound
	}
	gid := GroupID(targetGroup)
	if gid != Ungrouped {
		g, ok := d.Group(targetGroup)
		if !ok {
			return fmt.Errorf("%w: %s", ErrGroupNotFound, targetGroup)
		}
		if g.WindowID != targetWindow {
			return fmt.Errorf("%w: %s is in window %d, not %d", ErrGroupWindowMismatch, g.ID, g.WindowID, targetWindow)
		}
	}
	d.ensureWindow(targetWindow)

	sourceWindow, sourceGroup := tab.WindowID, tab.GroupID
	source := d.siblings(sourceWindow, sourceGroup)
	remaining := without(source, tab)

	if sourceWindow == targetWindow && sourceGroup == gid {
		adjusted := targetIndex
		if pos := indexOf(source, tab); pos != -1 && pos < targetIndex {
			adjusted--
		}
		adjusted = clamp(adjusted, 0, len(remaining))
		reindex(sourceWindow, sourceGroup, insertAt(remaining, adjusted, tab))
		return nil
	}

	reindex(sourceWindow, sourceGroup, remaining)
	target := d.siblings(targetWindow, gid)
	pos := clamp(targetIndex, 0, len(target))
	reindex(targetWindow, gid, insertAt(target, pos, tab))
	return nil
}

// DeleteTab removes tab and re-indexes its former siblings.
func (d *Document) DeleteTab(tab *Tab) error {
	if !d.contains(tab) {
		return ErrTabNotFound
	}
	d.snap.Tabs = without(d.snap.Tabs, tab)
	d.forget(tab)
	reindex(tab.WindowID, tab.GroupID, d.siblings(tab.WindowID, tab.GroupID))
	return nil
}

// CreateWindow registers a new, empty window and returns its id.
func (d *Document) CreateWindow() int {
	d.maxWindowID++
	d.windows = append(d.windows, d.maxWindowID)
	return d.maxWindowID
}

// DeleteWindow forgets a window together with all of its groups and tabs.
func (d *Document) DeleteWindow(windowID int) {
	windows := d.windows[:0]
	for _, w := range d.windows {
		if w != windowID {
			windows = append(windows, w)
		}
	}
	d.windows = windows

	groups := d.snap.Groups[:0]
	for _, g := range d.snap.Groups {
		if g.WindowID != windowID {
			groups = append(groups, g)
		}
	}
	d.snap.Groups = groups

	tabs := d.snap.Tabs[:0]
	for _, t := range d.snap.Tabs {
		if t.WindowID == windowID {
			d.forget(t)
			continue
		}
		tabs = append(tabs, t)
	}
	d.snap.Tabs = tabs
}

// CreateGroup appends a new group to windowID. Group numbers are never
// reused, even after the group holding the highest number is deleted.
func (d *Document) CreateGroup(windowID int) *Group {
	d.ensureWindow(windowID)
	d.maxGroupSeq++
	g := &Group{
		ID:       FormatGroupID(d.maxGroupSeq),
		Title:    DefaultGroupTitle,
		Color:    DefaultColor,
		WindowID: windowID,
	}
	d.snap.Groups = append(d.snap.Groups, g)
	return g
}

// DeleteGroup removes group and deletes every tab in it. Tabs are not moved
// to the ungrouped set.
func (d *Document) DeleteGroup(group *Group) error {
	if !d.containsGroup(group) {
		return ErrGroupNotFound
	}
	groups := d.snap.Groups[:0]
	for _, g := range d.snap.Groups {
		if g != group {
			groups = append(groups, g)
		}
	}
	d.snap.Groups = groups

	tabs := d.snap.Tabs[:0]
	for _, t := range d.snap.Tabs {
		if t.GroupID == GroupID(group.ID) {
			d.forget(t)
			continue
		}
		tabs = append(tabs, t)
	}
	d.snap.Tabs = tabs
	return nil
}

// UpdateGroup applies patch to group. Colours outside the palette fall back
// to the default colour.
func (d *Document) UpdateGroup(group *Group, patch GroupPatch) error {
	if !d.containsGroup(group) {
		return ErrGroupNotFound
	}
	if patch.Title != nil {
		group.Title = *patch.Title
	}
	if patch.Color != nil {
		group.Color = ParseColor(string(*patch.Color))
	}
	if patch.Collapsed != nil {
		group.Collapsed = *patch.Collapsed
	}
	return nil
}

// UpdateTab applies patch to tab.
func (d *Document) UpdateTab(tab *Tab, patch TabPatch) error {
	if !d.contains(tab) {
		return ErrTabNotFound
	}
	if patch.URL != nil {
		if *patch.URL == "" {
			return ErrEmptyURL
		}
		tab.URL = *patch.URL
	}
	if patch.Title != nil {
		tab.Title = *patch.Title
	}
	if patch.Pinned != nil {
		tab.Pinned = *patch.Pinned
	}
	if patch.Active != nil {
		tab.Active = *patch.Active
	}
	if patch.Muted != nil {
		tab.Muted = *patch.Muted
	}
	return nil
}

func without(list []*Tab, tab *Tab) []*Tab {
	out := make([]*Tab, 0, len(list))
	for _, t := range list {
		if t != tab {
			out = append(out, t)
		}
	}
	return out
}

func indexOf(list []*Tab, tab *Tab) int {
	for i, t := range list {
		if t == tab {
			return i
		}
	}
	return -1
}

func insertAt(list []*Tab, pos int, tab *Tab) []*Tab {
	out := make([]*Tab, 0, len(list)+1)
	out = append(out, list[:pos]...)
	out = append(out, tab)
	return append(out, list[pos:]...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
