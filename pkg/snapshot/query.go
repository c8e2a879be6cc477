package snapshot

import "sort"

// GroupsOfWindow returns the groups of a window in storage order.
func (d *Document) GroupsOfWindow(windowID int) []*Group {
	var out []*Group
	for _, g := range d.snap.Groups {
		if g.WindowID == windowID {
			out = append(out, g)
		}
	}
	return out
}

// TabsOfGroup returns the tabs of a group, ordered by index.
func (d *Document) TabsOfGroup(windowID int, groupID string) []*Tab {
	return d.siblings(windowID, GroupID(groupID))
}

// UngroupedTabsOfWindow returns the ungrouped tabs of a window, ordered by
// index.
func (d *Document) UngroupedTabsOfWindow(windowID int) []*Tab {
	return d.siblings(windowID, Ungrouped)
}

// TabsOfWindow returns every tab of a window: the ungrouped block first,
// then each group's block in group order.
func (d *Document) TabsOfWindow(windowID int) []*Tab {
	out := d.UngroupedTabsOfWindow(windowID)
	for _, g := range d.GroupsOfWindow(windowID) {
		out = append(out, d.TabsOfGroup(windowID, g.ID)...)
	}
	return out
}

func (d *Document) siblings(windowID int, groupID GroupID) []*Tab {
	var out []*Tab
	for _, t := range d.snap.Tabs {
		if t.WindowID == windowID && t.GroupID == groupID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// DuplicateURLSet returns the URLs that occur on two or more tabs.
func (d *Document) DuplicateURLSet() map[string]struct{} {
	counts := make(map[string]int)
	for _, t := range d.snap.Tabs {
		if t.URL == "" {
			continue
		}
		counts[t.URL]++
	}
	dups := make(map[string]struct{})
	for url, n := range counts {
		if n > 1 {
			dups[url] = struct{}{}
		}
	}
	return dups
}
