package snapshot

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SchemaVersion is the version written to every snapshot.
const SchemaVersion = 1

// GroupPrefix is the prefix of every group id ("g1", "g2", ...).
const GroupPrefix = "g"

// Snapshot is the portable document of windows, groups and tabs.
//
// Order of Groups and Tabs carries no meaning; tab order inside a sibling
// set is recovered from Tab.Index.
type Snapshot struct {
	Version     int      `json:"version"`
	GeneratedAt string   `json:"generatedAt"`
	Groups      []*Group `json:"groups"`
	Tabs        []*Tab   `json:"tabs"`
}

// Group is a named, coloured tab group living in exactly one window.
type Group struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Color     Color  `json:"color"`
	Collapsed bool   `json:"collapsed"`
	WindowID  int    `json:"windowId"`
}

// Tab is a single browser tab.
type Tab struct {
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Pinned   bool    `json:"pinned"`
	Active   bool    `json:"active"`
	Muted    bool    `json:"muted"`
	WindowID int     `json:"windowId"`
	Index    int     `json:"index"`
	GroupID  GroupID `json:"groupId"`
}

// GroupID references a Group. The zero value means the tab is ungrouped.
type GroupID string

// Ungrouped is the GroupID of a tab that belongs to no group.
const Ungrouped GroupID = ""

// MarshalJSON encodes an ungrouped reference as null.
func (g GroupID) MarshalJSON() ([]byte, error) {
	if g == Ungrouped {
		return []byte("null"), nil
	}
	return json.Marshal(string(g))
}

// UnmarshalJSON accepts a string or null.
func (g *GroupID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*g = Ungrouped
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*g = GroupID(s)
	return nil
}

// IsGrouped reports whether the tab belongs to a group.
func (t *Tab) IsGrouped() bool {
	return t.GroupID != Ungrouped
}

// Clone returns a deep copy of the snapshot without nil entries.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Version:     s.Version,
		GeneratedAt: s.GeneratedAt,
		Groups:      make([]*Group, 0, len(s.Groups)),
		Tabs:        make([]*Tab, 0, len(s.Tabs)),
	}
	for _, g := range s.Groups {
		if g == nil {
			continue
		}
		cp := *g
		out.Groups = append(out.Groups, &cp)
	}
	for _, t := range s.Tabs {
		if t == nil {
			continue
		}
		cp := *t
		out.Tabs = append(out.Tabs, &cp)
	}
	return out
}

// GroupSeq extracts the numeric suffix of a group id. It mirrors a lenient
// integer parse: leading digits after the prefix count, anything else is
// ignored. ok is false when no digits are present.
func GroupSeq(id string) (n int, ok bool) {
	rest := strings.TrimPrefix(id, GroupPrefix)
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatGroupID builds the id for the n-th group.
func FormatGroupID(n int) string {
	return GroupPrefix + strconv.Itoa(n)
}
