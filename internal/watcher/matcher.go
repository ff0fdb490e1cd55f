package watcher

import (
	"path/filepath"
)

// databaseSuffixes are the companion files SQLite writes next to a database.
var databaseSuffixes = []string{"", "-wal", "-journal"}

// matchesDatabase reports whether path is the database at dbPath or one of
// its write-ahead log or rollback journal files. Symlinked directories are
// resolved before giving up.
func matchesDatabase(path, dbPath string) bool {
	path = filepath.Clean(path)
	if matchesDirect(path, dbPath) {
		return true
	}

	resolvedDir, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		return false
	}
	resolvedDB, err := filepath.EvalSymlinks(filepath.Dir(dbPath))
	if err != nil {
		return false
	}
	return matchesDirect(
		filepath.Join(resolvedDir, filepath.Base(path)),
		filepath.Join(resolvedDB, filepath.Base(dbPath)),
	)
}

func matchesDirect(path, dbPath string) bool {
	for _, suffix := range databaseSuffixes {
		if path == dbPath+suffix {
			return true
		}
	}
	return false
}
