package shell

import (
	"path/filepath"
	"strings"
)

// OnPath reports whether dir is one of the entries of pathEnv. goos selects
// the list separator.
func OnPath(dir, pathEnv, goos string) bool {
	sep := ":"
	if goos == "windows" {
		sep = ";"
	}
	want := filepath.Clean(dir)
	for _, entry := range strings.Split(pathEnv, sep) {
		if entry == "" {
			continue
		}
		if filepath.Clean(entry) == want {
			return true
		}
		if goos == "windows" && strings.EqualFold(filepath.Clean(entry), want) {
			return true
		}
	}
	return false
}

// Hint builds the PATH instructions for shell. An unknown shell gets the
// POSIX export line with no RC file.
func Hint(shell Kind, dir, home string) (PathHint, error) {
	hint := PathHint{Shell: shell, Line: `export PATH="` + dir + `:$PATH"`}
	if shell == Fish {
		hint.Line = "fish_add_path " + dir
	}
	if !shell.Known() {
		return hint, nil
	}

	rc, err := RCFile(shell, home)
	if err != nil {
		return hint, err
	}
	hint.RCFile = rc

	configured, err := MentionsDir(rc, dir)
	if err != nil {
		return hint, err
	}
	hint.Configured = configured
	return hint, nil
}
