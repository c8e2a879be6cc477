// Package bridge moves snapshots between the editor and a live browser.
package bridge

import (
	"context"
	"fmt"
	"sort"

	"github.com/entrhq/tabshelf/pkg/browser"
	"github.com/entrhq/tabshelf/pkg/logging"
	"github.com/entrhq/tabshelf/pkg/snapshot"
)

// RestoreReport tells how far a restore got. On failure it describes the
// windows that were completed before the error; nothing is rolled back.
type RestoreReport struct {
	Windows int
	Tabs    int
	Groups  int
	// WindowIDs maps snapshot window ids to the browser windows created for
	// them.
	WindowIDs map[int]int
}

// Restore recreates the windows, tabs and groups of snap in b.
//
// Windows are created in ascending id order. Within a window the ungrouped
// tabs come first, then each group's tabs, each block in index order. Every
// browser call is awaited before the next one is issued, and the first
// failure aborts the remaining work.
func Restore(ctx context.Context, b browser.Browser, snap *snapshot.Snapshot, log *logging.Logger) (*RestoreReport, error) {
	work := snap.Clone()
	snapshot.Repair(work)
	doc := snapshot.Load(work, nil)

	report := &RestoreReport{WindowIDs: make(map[int]int)}
	for _, windowID := range windowsWithTabs(doc) {
		tabs := doc.TabsOfWindow(windowID)
		created, groups, err := restoreWindow(ctx, b, doc, windowID, tabs)
		if err != nil {
			log.Errorf("restore aborted at window %d after %d windows: %v", windowID, report.Windows, err)
			return report, fmt.Errorf("restore window %d: %w", windowID, err)
		}
		report.Windows++
		report.Tabs += len(tabs)
		report.Groups += groups
		report.WindowIDs[windowID] = created
		log.Infof("restored window %d as %d (%d tabs, %d groups)", windowID, created, len(tabs), groups)
	}
	return report, nil
}

func windowsWithTabs(doc *snapshot.Document) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, t := range doc.Tabs() {
		if !seen[t.WindowID] {
			seen[t.WindowID] = true
			ids = append(ids, t.WindowID)
		}
	}
	sort.Ints(ids)
	return ids
}

func restoreWindow(ctx context.Context, b browser.Browser, doc *snapshot.Document, windowID int, tabs []*snapshot.Tab) (int, int, error) {
	first := tabs[0]
	win, err := b.CreateWindow(ctx, first.URL)
	if err != nil {
		return 0, 0, err
	}
	if len(win.Tabs) == 0 {
		return 0, 0, fmt.Errorf("window %d opened without a tab", win.ID)
	}

	handles := make([]int, len(tabs))
	handles[0] = win.Tabs[0].ID
	if first.Pinned || first.Muted {
		update := browser.TabUpdate{Pinned: browser.Bool(first.Pinned), Muted: browser.Bool(first.Muted)}
		if err := b.UpdateTab(ctx, handles[0], update); err != nil {
			return 0, 0, err
		}
	}

	for i, t := range tabs[1:] {
		created, err := b.CreateTab(ctx, browser.CreateTabOptions{
			WindowID: win.ID,
			URL:      t.URL,
			Index:    i + 1,
			Pinned:   t.Pinned,
		})
		if err != nil {
			return 0, 0, err
		}
		handles[i+1] = created.ID
		if t.Muted {
			if err := b.UpdateTab(ctx, created.ID, browser.TabUpdate{Muted: browser.Bool(true)}); err != nil {
				return 0, 0, err
			}
		}
	}

	// Group handles by their original group id, in order of appearance.
	var order []snapshot.GroupID
	members := make(map[snapshot.GroupID][]int)
	for i, t := range tabs {
		if !t.IsGrouped() {
			continue
		}
		if _, ok := members[t.GroupID]; !ok {
			order = append(order, t.GroupID)
		}
		members[t.GroupID] = append(members[t.GroupID], handles[i])
	}

	for _, groupID := range order {
		browserGroup, err := b.GroupTabs(ctx, members[groupID])
		if err != nil {
			return 0, 0, err
		}
		g, ok := doc.Group(string(groupID))
		if !ok || g.WindowID != windowID {
			continue
		}
		style := browser.GroupStyle{Title: g.Title, Color: g.Color, Collapsed: g.Collapsed}
		if err := b.UpdateGroup(ctx, browserGroup, style); err != nil {
			return 0, 0, err
		}
	}

	for i, t := range tabs {
		if t.Active {
			if err := b.UpdateTab(ctx, handles[i], browser.TabUpdate{Active: browser.Bool(true)}); err != nil {
				return 0, 0, err
			}
			break
		}
	}
	return win.ID, len(order), nil
}
