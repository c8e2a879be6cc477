package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/tabshelf/pkg/browser"
	"github.com/entrhq/tabshelf/pkg/codec"
	"github.com/entrhq/tabshelf/pkg/logging"
	"github.com/entrhq/tabshelf/pkg/snapshot"
)

// Capture reads every open tab and group into a snapshot. Browser group ids
// become "g<id>".
func Capture(ctx context.Context, b browser.Browser) (*snapshot.Snapshot, error) {
	groups, err := b.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	tabs, err := b.ListTabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}

	out := snapshot.Empty(time.Now())
	for _, g := range groups {
		out.Groups = append(out.Groups, &snapshot.Group{
			ID:        snapshot.FormatGroupID(g.ID),
			Title:     g.Title,
			Color:     g.Color,
			Collapsed: g.Collapsed,
			WindowID:  g.WindowID,
		})
	}
	for _, t := range tabs {
		tab := &snapshot.Tab{
			URL:      t.URL,
			Title:    t.Title,
			Pinned:   t.Pinned,
			Active:   t.Active,
			Muted:    t.Muted,
			WindowID: t.WindowID,
			Index:    t.Index,
		}
		if t.GroupID != browser.NoGroup {
			tab.GroupID = snapshot.GroupID(snapshot.FormatGroupID(t.GroupID))
		}
		out.Tabs = append(out.Tabs, tab)
	}

	// Window positions become per-sibling-set indexes here.
	snapshot.Repair(out)
	return out, nil
}

// ExportTable builds the Markdown table from the live tabs in enumeration
// order. When closeDuplicates is set the tabs flagged as duplicates are
// closed; close failures are joined into the returned error and the table is
// still returned.
func ExportTable(ctx context.Context, b browser.Browser, canon *codec.Canonicalizer, closeDuplicates bool, log *logging.Logger) (*codec.Table, error) {
	groups, err := b.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	titles := make(map[int]string, len(groups))
	for _, g := range groups {
		titles[g.ID] = g.Title
	}

	tabs, err := b.ListTabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	entries := make([]codec.TableEntry, 0, len(tabs))
	for _, t := range tabs {
		e := codec.TableEntry{TabID: t.ID, Title: t.Title, URL: t.URL}
		if t.GroupID != browser.NoGroup {
			e.GroupTitle = titles[t.GroupID]
		}
		entries = append(entries, e)
	}

	table := codec.BuildTable(entries, canon)
	if !closeDuplicates {
		return table, nil
	}

	var errs []error
	for _, dup := range table.Duplicates {
		if err := b.CloseTab(ctx, dup.TabID); err != nil {
			errs = append(errs, fmt.Errorf("close duplicate tab %d: %w", dup.TabID, err))
			continue
		}
		log.Debugf("closed duplicate tab %d (%s)", dup.TabID, dup.URL)
	}
	return table, errors.Join(errs...)
}
