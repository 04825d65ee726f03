// Package matcher implements the glob and regex PathMatcher syntaxes the
// host-facing getPathMatcher(syntax:pattern) API accepts. It is kept
// separate from the core tree so the filesystem itself never depends on
// a particular matching syntax.
package matcher

import (
	"path"
	"regexp"
	"strings"
)

// PathMatcher reports whether a given path matches the compiled pattern.
type PathMatcher interface {
	Matches(p string) bool
}

// ErrInvalidSyntax is returned for a missing or empty syntax prefix.
type ErrInvalidSyntax struct {
	Pattern string
}

func (e *ErrInvalidSyntax) Error() string {
	return "matcher: invalid syntax:pattern " + e.Pattern
}

type globMatcher struct{ pattern string }

func (g globMatcher) Matches(p string) bool {
	ok, err := path.Match(g.pattern, p)
	return err == nil && ok
}

type regexMatcher struct{ re *regexp.Regexp }

func (r regexMatcher) Matches(p string) bool { return r.re.MatchString(p) }

// New parses "syntax:pattern" (delimiter is the first colon) and compiles
// a PathMatcher. Recognized syntaxes are "glob" and "regex"; anything
// else, or a pattern with no colon or an empty prefix, is an
// *ErrInvalidSyntax.
func New(syntaxAndPattern string) (PathMatcher, error) {
	idx := strings.IndexByte(syntaxAndPattern, ':')
	if idx <= 0 {
		return nil, &ErrInvalidSyntax{Pattern: syntaxAndPattern}
	}
	syntax, pattern := syntaxAndPattern[:idx], syntaxAndPattern[idx+1:]
	switch syntax {
	case "glob":
		return globMatcher{pattern: pattern}, nil
	case "regex":
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		return regexMatcher{re: re}, nil
	default:
		return nil, &ErrInvalidSyntax{Pattern: syntaxAndPattern}
	}
}
