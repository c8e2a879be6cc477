// Package browser defines the tab-management capability the organizer drives
// and the shared pieces its backends are built from.
//
// A Browser exposes one method per capability: enumerate tabs and tab groups,
// close a tab, create windows and tabs, group tabs, and restyle groups and
// tabs. Calls are issued one at a time by callers; implementations must still
// be safe for concurrent use.
package browser

import (
	"context"
	"errors"

	"github.com/entrhq/tabshelf/pkg/snapshot"
)

// NoGroup is the GroupID of an ungrouped tab.
const NoGroup = -1

var (
	ErrTabNotFound    = errors.New("browser: tab not found")
	ErrGroupNotFound  = errors.New("browser: group not found")
	ErrWindowNotFound = errors.New("browser: window not found")
	ErrNoTabs         = errors.New("browser: no tabs to group")
	ErrMixedWindows   = errors.New("browser: tabs to group span several windows")
)

// Tab is a live browser tab.
type Tab struct {
	ID       int
	WindowID int
	// Index is the tab's position in its window.
	Index   int
	URL     string
	Title   string
	Pinned  bool
	Active  bool
	Muted   bool
	GroupID int
}

// Group is a live tab group.
type Group struct {
	ID        int
	WindowID  int
	Title     string
	Color     snapshot.Color
	Collapsed bool
}

// Window is a newly created window and its initial tabs.
type Window struct {
	ID   int
	Tabs []Tab
}

// CreateTabOptions places a new tab. A negative Index appends.
type CreateTabOptions struct {
	WindowID int
	URL      string
	Index    int
	Pinned   bool
	Active   bool
}

// GroupStyle is the full visual state of a group.
type GroupStyle struct {
	Title     string
	Color     snapshot.Color
	Collapsed bool
}

// TabUpdate changes the non-nil fields of a tab.
type TabUpdate struct {
	URL    *string
	Active *bool
	Pinned *bool
	Muted  *bool
}

// Browser is the tab-management capability.
type Browser interface {
	ListTabs(ctx context.Context) ([]Tab, error)
	ListGroups(ctx context.Context) ([]Group, error)
	CloseTab(ctx context.Context, tabID int) error
	CreateWindow(ctx context.Context, url string) (Window, error)
	CreateTab(ctx context.Context, opts CreateTabOptions) (Tab, error)
	// GroupTabs puts tabs into a new group and returns its id.
	GroupTabs(ctx context.Context, tabIDs []int) (int, error)
	UpdateGroup(ctx context.Context, groupID int, style GroupStyle) error
	UpdateTab(ctx context.Context, tabID int, update TabUpdate) error
	Close() error
}

// Bool returns a pointer to b, for TabUpdate literals.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s, for TabUpdate literals.
func String(s string) *string { return &s }
