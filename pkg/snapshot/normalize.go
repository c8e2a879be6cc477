package snapshot

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// Normalize turns arbitrary decoded JSON into a snapshot that satisfies every
// model invariant. It never fails: malformed fragments are dropped or coerced
// to defaults.
func Normalize(raw any) *Snapshot {
	return NormalizeAt(raw, time.Now())
}

// NormalizeJSON decodes data and normalizes the result. Bytes that are not
// JSON yield an empty snapshot.
func NormalizeJSON(data []byte) *Snapshot {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = nil
	}
	return Normalize(raw)
}

// NormalizeAt is Normalize with an explicit clock for generatedAt.
func NormalizeAt(raw any, now time.Time) *Snapshot {
	out := Empty(now)
	obj, _ := raw.(map[string]any)

	if s, ok := obj["generatedAt"].(string); ok {
		out.GeneratedAt = s
	}

	if groups, ok := obj["groups"].([]any); ok {
		for _, item := range groups {
			g, ok := item.(map[string]any)
			if !ok {
				continue
			}
			id, ok := g["id"].(string)
			if !ok {
				continue
			}
			color, _ := g["color"].(string)
			out.Groups = append(out.Groups, &Group{
				ID:        id,
				Title:     stringOr(g["title"]),
				Color:     ParseColor(color),
				Collapsed: truthy(g["collapsed"]),
				WindowID:  intOr(g["windowId"]),
			})
		}
	}

	if tabs, ok := obj["tabs"].([]any); ok {
		for _, item := range tabs {
			t, ok := item.(map[string]any)
			if !ok {
				continue
			}
			url, ok := t["url"].(string)
			if !ok || url == "" {
				continue
			}
			groupID, _ := t["groupId"].(string)
			out.Tabs = append(out.Tabs, &Tab{
				URL:      url,
				Title:    stringOr(t["title"]),
				Pinned:   truthy(t["pinned"]),
				Active:   truthy(t["active"]),
				Muted:    truthy(t["muted"]),
				WindowID: intOr(t["windowId"]),
				Index:    intOr(t["index"]),
				GroupID:  GroupID(groupID),
			})
		}
	}

	Repair(out)
	return out
}

// Empty returns a valid snapshot with no groups or tabs.
func Empty(now time.Time) *Snapshot {
	return &Snapshot{
		Version:     SchemaVersion,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Groups:      []*Group{},
		Tabs:        []*Tab{},
	}
}

// Repair enforces the model invariants on an already typed snapshot in place:
// groups need a unique non-empty id and a palette colour, tabs need a URL and
// may only reference a group of their own window, and every sibling set is
// densely indexed from zero.
func Repair(s *Snapshot) {
	s.Version = SchemaVersion

	groups := make([]*Group, 0, len(s.Groups))
	byID := make(map[string]*Group, len(s.Groups))
	for _, g := range s.Groups {
		if g == nil || g.ID == "" {
			continue
		}
		if _, dup := byID[g.ID]; dup {
			continue
		}
		g.Color = ParseColor(string(g.Color))
		byID[g.ID] = g
		groups = append(groups, g)
	}
	s.Groups = groups

	tabs := make([]*Tab, 0, len(s.Tabs))
	for _, t := range s.Tabs {
		if t == nil || t.URL == "" {
			continue
		}
		if t.IsGrouped() {
			g, ok := byID[string(t.GroupID)]
			if !ok || g.WindowID != t.WindowID {
				t.GroupID = Ungrouped
			}
		}
		tabs = append(tabs, t)
	}
	s.Tabs = tabs

	reindexAll(s.Tabs)
}

type siblingKey struct {
	window int
	group  GroupID
}

// reindexAll renumbers every sibling set, ordering by the existing index and
// keeping source order for ties.
func reindexAll(tabs []*Tab) {
	sets := make(map[siblingKey][]*Tab)
	var order []siblingKey
	for _, t := range tabs {
		k := siblingKey{t.WindowID, t.GroupID}
		if _, seen := sets[k]; !seen {
			order = append(order, k)
		}
		sets[k] = append(sets[k], t)
	}
	for _, k := range order {
		list := sets[k]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Index < list[j].Index })
		for i, t := range list {
			t.Index = i
		}
	}
}

func stringOr(v any) string {
	s, _ := v.(string)
	return s
}

// intOr accepts finite integral numbers and returns 0 for anything else.
func intOr(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0
	}
	// -MinInt is exactly representable; MaxInt may not be.
	if f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0
	}
	return int(f)
}

// truthy follows loose boolean coercion: zero values are false, any other
// value (including the string "false") is true.
func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case float64:
		return b != 0 && !math.IsNaN(b)
	case int:
		return b != 0
	case string:
		return b != ""
	default:
		return true
	}
}
