package sqlscript

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// maxLineSize bounds a single script line; generated dumps can hold
// multi-megabyte INSERT statements on one line.
const maxLineSize = 16 << 20

// ReadLines reads all lines from r in order, without line terminators.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lines := make([]string, 0)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}

	return lines, nil
}

// SplitReader reads a script from r and splits it into statements.
func SplitReader(r io.Reader, dbType DatabaseType) ([]string, error) {
	return splitScript(r, "", dbType)
}

// SplitFile reads the script at path and splits it into statements.
//
// If there are no statements in the script an empty slice is returned.
func SplitFile(path string, dbType DatabaseType) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	return splitScript(f, path, dbType)
}

// SplitFS reads the named script from fsys and splits it into statements.
func SplitFS(fsys fs.FS, name string, dbType DatabaseType) ([]string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	return splitScript(f, name, dbType)
}

func splitScript(r io.Reader, name string, dbType DatabaseType) ([]string, error) {
	d, err := newDelimiter(DelimiterFor(name, dbType))
	if err != nil {
		return nil, err
	}

	lines, err := ReadLines(r)
	if err != nil {
		if name != "" {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		return nil, err
	}

	return split(lines, dbType, d), nil
}
