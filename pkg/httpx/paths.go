package httpx

import "strings"

// PathMatcher matches request paths against ant-style patterns: a literal
// segment matches itself, "*" matches exactly one segment, and "**" matches
// any remaining tail (including nothing). Used for the authentication gate's
// exclusion list and the access policy's rule table.
type PathMatcher struct {
	patterns []string
}

// NewPathMatcher compiles a matcher over the given patterns.
func NewPathMatcher(patterns ...string) *PathMatcher {
	return &PathMatcher{patterns: patterns}
}

// Match reports whether any pattern accepts the path.
func (m *PathMatcher) Match(path string) bool {
	for _, p := range m.patterns {
		if MatchPath(p, path) {
			return true
		}
	}
	return false
}

// MatchPath reports whether a single ant-style pattern accepts the path.
func MatchPath(pattern, path string) bool {
	return matchSegments(splitPath(pattern), splitPath(path))
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, path []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "**":
			if len(pattern) == 1 {
				return true
			}
			// Try the remaining pattern against every suffix of the path.
			for i := 0; i <= len(path); i++ {
				if matchSegments(pattern[1:], path[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(path) == 0 {
				return false
			}
		default:
			if len(path) == 0 || pattern[0] != path[0] {
				return false
			}
		}
		pattern = pattern[1:]
		path = path[1:]
	}
	return len(path) == 0
}
