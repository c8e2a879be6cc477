package snapshot

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTabNotFound         = errors.New("snapshot: tab not found")
	ErrGroupNotFound       = errors.New("snapshot: group not found")
	ErrGroupWindowMismatch = errors.New("snapshot: group belongs to another window")
	ErrEmptyURL            = errors.New("snapshot: tab url cannot be empty")
)

// Document is the single mutable snapshot owned by an editor. It keeps the
// list of known windows (so empty windows survive) and the id counters next
// to the snapshot, plus a side-table of correlation refs used by views to
// track tabs across re-renders.
//
// A Document is not safe for concurrent use.
type Document struct {
	snap        *Snapshot
	windows     []int
	maxWindowID int
	maxGroupSeq int
	refs        map[*Tab]string
	byRef       map[string]*Tab
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return Load(Empty(time.Now()), nil)
}

// Load adopts snap, which must already be normalized. When windows is empty
// the known windows are derived from the ids referenced by groups and tabs;
// otherwise the given order is kept and any referenced id missing from it is
// appended.
func Load(snap *Snapshot, windows []int) *Document {
	d := &Document{
		snap:  snap,
		refs:  make(map[*Tab]string),
		byRef: make(map[string]*Tab),
	}
	derived := deriveWindows(snap)
	if len(windows) == 0 {
		d.windows = derived
	} else {
		d.windows = append([]int(nil), windows...)
		for _, id := range derived {
			d.ensureWindow(id)
		}
	}
	d.computeMaxIDs()
	for _, t := range snap.Tabs {
		d.Ref(t)
	}
	return d
}

func deriveWindows(s *Snapshot) []int {
	seen := make(map[int]bool)
	var ids []int
	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, t := range s.Tabs {
		add(t.WindowID)
	}
	for _, g := range s.Groups {
		add(g.WindowID)
	}
	sort.Ints(ids)
	return ids
}

func (d *Document) computeMaxIDs() {
	d.maxWindowID = 0
	d.maxGroupSeq = 0
	for _, t := range d.snap.Tabs {
		d.maxWindowID = max(d.maxWindowID, t.WindowID)
	}
	for _, g := range d.snap.Groups {
		d.maxWindowID = max(d.maxWindowID, g.WindowID)
		if n, ok := GroupSeq(g.ID); ok {
			d.maxGroupSeq = max(d.maxGroupSeq, n)
		}
	}
	for _, id := range d.windows {
		d.maxWindowID = max(d.maxWindowID, id)
	}
}

func (d *Document) ensureWindow(id int) {
	for _, w := range d.windows {
		if w == id {
			return
		}
	}
	d.windows = append(d.windows, id)
	d.maxWindowID = max(d.maxWindowID, id)
}

// Snapshot returns the live snapshot. Callers must not restructure it
// directly; use the mutation methods instead.
func (d *Document) Snapshot() *Snapshot {
	return d.snap
}

// WindowIDs returns the known windows in display order.
func (d *Document) WindowIDs() []int {
	return append([]int(nil), d.windows...)
}

// HasWindow reports whether id is a known window.
func (d *Document) HasWindow(id int) bool {
	for _, w := range d.windows {
		if w == id {
			return true
		}
	}
	return false
}

// Tabs returns every tab in storage order.
func (d *Document) Tabs() []*Tab {
	return append([]*Tab(nil), d.snap.Tabs...)
}

// Groups returns every group in storage order.
func (d *Document) Groups() []*Group {
	return append([]*Group(nil), d.snap.Groups...)
}

// Group looks up a group by id.
func (d *Document) Group(id string) (*Group, bool) {
	for _, g := range d.snap.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

// Ref returns the correlation ref of t, minting one on first use. Refs are
// never part of the exported shape.
func (d *Document) Ref(t *Tab) string {
	if ref, ok := d.refs[t]; ok {
		return ref
	}
	ref := uuid.NewString()
	d.refs[t] = ref
	d.byRef[ref] = t
	return ref
}

// TabByRef resolves a correlation ref.
func (d *Document) TabByRef(ref string) (*Tab, bool) {
	t, ok := d.byRef[ref]
	return t, ok
}

func (d *Document) forget(t *Tab) {
	if ref, ok := d.refs[t]; ok {
		delete(d.byRef, ref)
		delete(d.refs, t)
	}
}

func (d *Document) contains(t *Tab) bool {
	for _, x := range d.snap.Tabs {
		if x == t {
			return true
		}
	}
	return false
}

func (d *Document) containsGroup(g *Group) bool {
	for _, x := range d.snap.Groups {
		if x == g {
			return true
		}
	}
	return false
}
