// Package migrations holds the versioned schema of the SQLite record store.
//
// Scripts are named NNN_description.up.sql and NNN_description.down.sql.
// Only up scripts are applied; down scripts document how to roll back by hand.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Migration is one versioned up script.
type Migration struct {
	Version int
	Name    string
	Script  string
}

// Pending returns the up migrations with a version above current, oldest first.
func Pending(current int) ([]Migration, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}

	var out []Migration
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			return nil, fmt.Errorf("migration %s: version prefix: %w", name, err)
		}
		if version <= current {
			continue
		}
		script, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}
		out = append(out, Migration{Version: version, Name: name, Script: string(script)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Latest returns the highest known version.
func Latest() (int, error) {
	all, err := Pending(0)
	if err != nil || len(all) == 0 {
		return 0, err
	}
	return all[len(all)-1].Version, nil
}
