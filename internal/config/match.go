package config

import "github.com/bmatcuk/doublestar/v4"

// MatchAny reports whether name equals or glob-matches any pattern in
// patterns. A literal match is tried first since spec.md's exclude/root
// lists are plain names; doublestar patterns (e.g. "**/vendor/**") are
// an enrichment tried only when the literal comparison fails, so a name
// containing glob metacharacters that happens to also be meant
// literally still matches.
func MatchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if p == name {
			return true
		}
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
