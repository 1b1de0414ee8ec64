package sqlscript

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DelimiterStandard is the standard SQL statement delimiter.
const DelimiterStandard = ";"

const regexOr = "|"

var ErrInvalidDelimiter = errors.New("invalid delimiter")

// delimiter describes how statements are terminated.
//
// pattern is matched against whole (trimmed, upper-cased) lines, while literal
// is the substring used to split statements appearing on the same line.
type delimiter struct {
	pattern *regexp.Regexp
	literal string
}

var standardDelimiter = mustDelimiter(DelimiterStandard)

func newDelimiter(pattern string) (delimiter, error) {
	if pattern == "" {
		return delimiter{}, fmt.Errorf("%w: empty pattern", ErrInvalidDelimiter)
	}

	literal := pattern
	if i := strings.Index(pattern, regexOr); i != -1 {
		literal = pattern[:i]
	}

	if literal == "" {
		return delimiter{}, fmt.Errorf("%w: pattern %q has no literal delimiter", ErrInvalidDelimiter, pattern)
	}

	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return delimiter{}, fmt.Errorf("%w: %w", ErrInvalidDelimiter, err)
	}

	return delimiter{pattern: re, literal: literal}, nil
}

func mustDelimiter(pattern string) delimiter {
	d, err := newDelimiter(pattern)
	if err != nil {
		panic(err)
	}

	return d
}

// isDelimiterLine reports whether the whole line is a delimiter.
func (d delimiter) isDelimiterLine(trimmed string) bool {
	return d.pattern.MatchString(strings.ToUpper(trimmed))
}

// DelimiterFor returns the delimiter pattern used for the given script and database.
//
// The standard delimiter is currently used for every script and database.
func DelimiterFor(_ string, _ DatabaseType) string {
	return DelimiterStandard
}
