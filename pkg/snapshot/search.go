package snapshot

import "strings"

// exactMarker switches a needle from subsequence to substring matching.
const exactMarker = "'"

// Filter is the editor's search and duplicate filter state.
type Filter struct {
	Title          string
	URL            string
	DuplicatesOnly bool
}

// Active reports whether the filter hides anything.
func (f Filter) Active() bool {
	return f.DuplicatesOnly || normalizeNeedle(f.Title) != "" || normalizeNeedle(f.URL) != ""
}

// Match reports whether t passes the filter. dups is the duplicate URL set
// and is only consulted when DuplicatesOnly is set.
func (f Filter) Match(t *Tab, dups map[string]struct{}) bool {
	if f.DuplicatesOnly {
		if _, ok := dups[t.URL]; !ok {
			return false
		}
	}
	title := normalizeNeedle(f.Title)
	url := normalizeNeedle(f.URL)
	if title == "" && url == "" {
		return true
	}
	titleHay := t.Title
	if titleHay == "" {
		titleHay = t.URL
	}
	return MatchNeedle(title, titleHay) && MatchNeedle(url, t.URL)
}

func normalizeNeedle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MatchNeedle matches needle against haystack, case-insensitively.
//
// A needle starting with ' is matched as a literal substring (an optional
// closing ' is ignored). Any other needle matches when its characters appear
// in the haystack in order, not necessarily adjacent. An empty needle always
// matches.
func MatchNeedle(needle, haystack string) bool {
	needle = normalizeNeedle(needle)
	haystack = normalizeNeedle(haystack)
	if needle == "" {
		return true
	}
	if haystack == "" {
		return false
	}
	if strings.HasPrefix(needle, exactMarker) {
		exact := strings.TrimPrefix(needle, exactMarker)
		exact = strings.TrimSuffix(exact, exactMarker)
		if exact == "" {
			return true
		}
		return strings.Contains(haystack, exact)
	}
	return isSubsequence([]rune(needle), []rune(haystack))
}

func isSubsequence(needle, haystack []rune) bool {
	i := 0
	for j := 0; i < len(needle) && j < len(haystack); j++ {
		if needle[i] == haystack[j] {
			i++
		}
	}
	return i == len(needle)
}
