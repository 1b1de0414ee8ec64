package sqlscript

import (
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
)

// Script is a named SQL script to be replayed.
type Script struct {
	Name string
	Body string
}

// ScriptLister is an interface that wraps the method for listing
// the scripts to be replayed, in the order they should be executed.
type ScriptLister interface {
	List() ([]Script, error)
}

// StringScripts is a slice of plain string scripts to be replayed.
// Scripts are named after their index.
type StringScripts []string

func (s StringScripts) List() ([]Script, error) {
	scripts := make([]Script, 0, len(s))
	for i, body := range s {
		scripts = append(scripts, Script{Name: strconv.Itoa(i), Body: body})
	}

	return scripts, nil
}

// FSScripts wraps an [fs.FS], such as an [embed.FS], and the path to the
// scripts directory within it.
type FSScripts struct {
	FS   fs.FS
	Path string
}

// List returns the ".sql" scripts found in [FSScripts.Path].
//
// This function does not recursively read subdirectories.
//
// Scripts are ordered lexicographically rather than naturally.
// For example, the files "1.sql", "2.sql", and "03.sql"
// will be read in the order: "03.sql", "1.sql", "2.sql".
//
// To ensure correct ordering, use zero-padding for numbers, e.g.,
// "001.sql", "002.sql", "003.sql".
func (f FSScripts) List() ([]Script, error) {
	entries, err := fs.ReadDir(f.FS, f.Path)
	if err != nil {
		return nil, errf("reading script directory: %w", err)
	}

	scripts := make([]Script, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(path.Ext(e.Name()), ".sql") {
			continue
		}

		p := path.Join(f.Path, e.Name())
		b, err := fs.ReadFile(f.FS, p)
		if err != nil {
			return nil, errf("reading script file: %w", err)
		}

		scripts = append(scripts, Script{Name: p, Body: string(b)})
	}

	return scripts, nil
}

// DirScripts lists the ".sql" scripts of a directory on the local file system.
func DirScripts(dir string) FSScripts {
	return FSScripts{FS: os.DirFS(dir), Path: "."}
}
