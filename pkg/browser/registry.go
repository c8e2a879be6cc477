package browser

import (
	"sort"
	"sync"

	"github.com/entrhq/tabshelf/pkg/snapshot"
)

type tabFlags struct {
	pinned bool
	muted  bool
}

// GroupRegistry keeps tab groups and the pinned and muted flags for backends
// whose protocol has no notion of them. Empty groups disappear, the way a
// browser drops a group when its last tab leaves.
type GroupRegistry struct {
	mu       sync.RWMutex
	nextID   int
	groups   map[int]*Group
	tabGroup map[int]int
	flags    map[int]tabFlags
}

// NewGroupRegistry creates an empty registry.
func NewGroupRegistry() *GroupRegistry {
	return &GroupRegistry{
		nextID:   1,
		groups:   make(map[int]*Group),
		tabGroup: make(map[int]int),
		flags:    make(map[int]tabFlags),
	}
}

// Create makes a new group in windowID holding tabIDs. Tabs already in a
// group are moved.
func (r *GroupRegistry) Create(windowID int, tabIDs []int) (int, error) {
	if len(tabIDs) == 0 {
		return 0, ErrNoTabs
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.groups[id] = &Group{ID: id, WindowID: windowID, Color: snapshot.DefaultColor}
	for _, tabID := range tabIDs {
		r.detachLocked(tabID)
		r.tabGroup[tabID] = id
	}
	return id, nil
}

// Style replaces a group's title, colour and collapsed state.
func (r *GroupRegistry) Style(groupID int, style GroupStyle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return ErrGroupNotFound
	}
	g.Title = style.Title
	g.Color = snapshot.ParseColor(string(style.Color))
	g.Collapsed = style.Collapsed
	return nil
}

// GroupOf returns the group of a tab, or NoGroup.
func (r *GroupRegistry) GroupOf(tabID int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.tabGroup[tabID]; ok {
		return id
	}
	return NoGroup
}

// Groups lists the live groups ordered by id.
func (r *GroupRegistry) Groups() []Group {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Forget drops everything known about a closed tab.
func (r *GroupRegistry) Forget(tabID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detachLocked(tabID)
	delete(r.flags, tabID)
}

// ForgetWindow drops the groups of a closed window.
func (r *GroupRegistry) ForgetWindow(windowID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tabID, groupID := range r.tabGroup {
		if r.groups[groupID].WindowID == windowID {
			delete(r.tabGroup, tabID)
			delete(r.flags, tabID)
		}
	}
	for id, g := range r.groups {
		if g.WindowID == windowID {
			delete(r.groups, id)
		}
	}
}

// SetPinned records the pinned flag of a tab.
func (r *GroupRegistry) SetPinned(tabID int, pinned bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.flags[tabID]
	f.pinned = pinned
	r.flags[tabID] = f
}

// SetMuted records the muted flag of a tab.
func (r *GroupRegistry) SetMuted(tabID int, muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.flags[tabID]
	f.muted = muted
	r.flags[tabID] = f
}

// Flags returns the pinned and muted flags of a tab.
func (r *GroupRegistry) Flags(tabID int) (pinned, muted bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f := r.flags[tabID]
	return f.pinned, f.muted
}

// Decorate fills GroupID, Pinned and Muted on a tab the backend enumerated.
func (r *GroupRegistry) Decorate(t *Tab) {
	t.GroupID = r.GroupOf(t.ID)
	t.Pinned, t.Muted = r.Flags(t.ID)
}

func (r *GroupRegistry) detachLocked(tabID int) {
	old, ok := r.tabGroup[tabID]
	if !ok {
		return
	}
	delete(r.tabGroup, tabID)
	for _, g := range r.tabGroup {
		if g == old {
			return
		}
	}
	delete(r.groups, old)
}
