package sqlscript

import (
	"regexp"
	"strings"
)

// skipSchemaLine is a schema switch statement emitted by legacy DB2 scripts
// with a non-standard terminator; it is dropped rather than replayed.
const skipSchemaLine = "SET CURRENT SCHEMA BPMS@"

// dollarQuotedBlock matches a line made of a PostgreSQL dollar quote,
// such as "$$" or "$body$".
var dollarQuotedBlock = regexp.MustCompile(`^\$.*\$$`)

// Split divides the given script lines into individual SQL statements
// using the standard delimiter.
//
// Lines that are empty or start with "--", "#" or "/*" are ignored. For
// [PostgreSQL] a delimiter inside a dollar-quoted block, delimited by lines
// consisting of a dollar quote only, does not end a statement.
//
// Statements are returned in the order they appear. Fragments joined from
// different lines or parts of a line are separated by a single space, so a
// statement may carry leading or trailing spaces. An unterminated statement at
// the end of the input is returned as is.
//
// The returned slice is never nil.
func Split(lines []string, dbType DatabaseType) []string {
	return split(lines, dbType, standardDelimiter)
}

// SplitWithDelimiter is like [Split] but uses the given delimiter pattern.
//
// A line matching the whole pattern ends the pending statement. The part
// of the pattern before the first "|" is used as a literal to split
// statements sharing a line, e.g. ";|GO" treats "GO" lines as delimiters
// and splits lines on ";".
func SplitWithDelimiter(lines []string, dbType DatabaseType, pattern string) ([]string, error) {
	d, err := newDelimiter(pattern)
	if err != nil {
		return nil, err
	}

	return split(lines, dbType, d), nil
}

func split(lines []string, dbType DatabaseType, d delimiter) []string {
	var (
		commands     = make([]string, 0)
		pending      strings.Builder
		dollarBlocks int
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if shouldSkip(trimmed) {
			continue
		}

		if dbType == PostgreSQL && dollarQuotedBlock.MatchString(trimmed) {
			dollarBlocks++
		}

		if d.isDelimiterLine(trimmed) && pending.Len() > 0 {
			commands = append(commands, pending.String())
			pending.Reset()

			continue
		}

		insideBlock := dbType == PostgreSQL && dollarBlocks%2 != 0
		if !insideBlock && strings.Contains(trimmed, d.literal) {
			completed, rest := splitLine(trimmed, d.literal, pending.String())
			commands = append(commands, completed...)

			pending.Reset()
			pending.WriteString(rest)

			continue
		}

		pending.WriteString(trimmed)
		pending.WriteByte(' ')
	}

	if pending.Len() > 0 {
		commands = append(commands, pending.String())
	}

	return commands
}

// splitLine splits a line by the literal delimiter.
//
// The first part completes the buffered statement. When the line does
// not end with the delimiter, its last part is returned as the new
// buffered statement.
func splitLine(line, delim, buffered string) (completed []string, rest string) {
	parts := splitTrimTrailing(line, delim)

	for i, part := range parts {
		switch {
		case i == 0:
			completed = append(completed, buffered+" "+part)
		case i == len(parts)-1 && !strings.HasSuffix(line, delim):
			rest = part
		default:
			completed = append(completed, part)
		}
	}

	return completed, rest
}

// splitTrimTrailing splits s around sep and drops trailing empty parts.
func splitTrimTrailing(s, sep string) []string {
	parts := strings.Split(s, sep)

	n := len(parts)
	for n > 0 && parts[n-1] == "" {
		n--
	}

	return parts[:n]
}

func shouldSkip(trimmed string) bool {
	return trimmed == "" ||
		strings.HasPrefix(trimmed, "--") ||
		strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "/*") ||
		trimmed == skipSchemaLine
}
