// Package codec converts editor documents to and from their portable forms:
// the canonical JSON snapshot and the Markdown tab table.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/tabshelf/pkg/snapshot"
)

var (
	ErrInvalidJSON     = errors.New("codec: invalid JSON")
	ErrInvalidSnapshot = errors.New("codec: expected an object with a tabs array")
)

// JSONMimeType is the media type of exported snapshots.
const JSONMimeType = "application/json"

// DefaultJSONFilename is the file name suggested for exported snapshots.
const DefaultJSONFilename = "chrome-tabs.json"

// Export builds the canonical snapshot of doc. Windows are walked in known
// order; within a window the ungrouped tabs come first, followed by each
// group's tabs in group order. Every sibling set is numbered from zero.
func Export(doc *snapshot.Document, now time.Time) *snapshot.Snapshot {
	out := snapshot.Empty(now)
	for _, g := range doc.Groups() {
		out.Groups = append(out.Groups, &snapshot.Group{
			ID:        g.ID,
			Title:     g.Title,
			Color:     g.Color,
			Collapsed: g.Collapsed,
			WindowID:  g.WindowID,
		})
	}

	for _, windowID := range doc.WindowIDs() {
		appendBlock(out, windowID, snapshot.Ungrouped, doc.UngroupedTabsOfWindow(windowID))
		for _, g := range doc.GroupsOfWindow(windowID) {
			appendBlock(out, windowID, snapshot.GroupID(g.ID), doc.TabsOfGroup(windowID, g.ID))
		}
	}
	return out
}

func appendBlock(out *snapshot.Snapshot, windowID int, groupID snapshot.GroupID, tabs []*snapshot.Tab) {
	for i, t := range tabs {
		out.Tabs = append(out.Tabs, &snapshot.Tab{
			URL:      t.URL,
			Title:    t.Title,
			Pinned:   t.Pinned,
			Active:   t.Active,
			Muted:    t.Muted,
			WindowID: windowID,
			Index:    i,
			GroupID:  groupID,
		})
	}
}

// EncodeJSON renders a snapshot as indented JSON.
func EncodeJSON(s *snapshot.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("codec: encode snapshot: %w", err)
	}
	return data, nil
}

// ParseImport validates the top-level shape of an imported document and
// normalizes it. Only the outer shape is strict; everything inside is
// coerced by snapshot.Normalize.
func ParseImport(data []byte) (*snapshot.Snapshot, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrInvalidSnapshot
	}
	if _, ok := obj["tabs"].([]any); !ok {
		return nil, ErrInvalidSnapshot
	}
	return snapshot.Normalize(obj), nil
}
