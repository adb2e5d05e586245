package scan

import (
	"regexp"
	"strings"
)

// GlobToRegexp converts an ignore/grouping glob into a regular expression.
//
// Semantics: `*` matches any run of non-slash characters, `**` matches any
// run including slashes, and every other character is literal. A pattern
// that does not start with `**` is anchored at the start; a pattern that
// does not end with `*` or `**` is anchored at the end.
func GlobToRegexp(pattern string, caseInsensitive bool) (*regexp.Regexp, error) {
	var sb strings.Builder
	if caseInsensitive {
		sb.WriteString("(?i)")
	}
	if !strings.HasPrefix(pattern, "**") {
		sb.WriteString("^")
	}
	sb.WriteString(GlobBody(pattern))
	if !strings.HasSuffix(pattern, "*") {
		sb.WriteString("$")
	}
	return regexp.Compile(sb.String())
}

// GlobBody returns the unanchored regex body for a glob pattern, for
// callers that apply their own anchoring.
func GlobBody(pattern string) string {
	var sb strings.Builder
	for i := 0; i < len(pattern); {
		switch {
		case strings.HasPrefix(pattern[i:], "**"):
			sb.WriteString(".*")
			i += 2
		case pattern[i] == '*':
			sb.WriteString("[^/]*")
			i++
		default:
			sb.WriteString(regexp.QuoteMeta(string(pattern[i])))
			i++
		}
	}
	return sb.String()
}

// CompileIgnores converts glob patterns into matchers, dropping patterns
// that fail to compile.
func CompileIgnores(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := GlobToRegexp(p, false)
		if err != nil {
			debugf("scan: ignoring unparseable pattern %q: %v", p, err)
			continue
		}
		out = append(out, re)
	}
	return out
}
