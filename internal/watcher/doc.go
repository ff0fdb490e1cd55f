// Package watcher re-runs work whenever the stockrank database changes.
//
// SQLite in WAL mode appends to "<db>-wal" on every commit and folds the log
// back into the main file on checkpoint, so the Watcher subscribes to the
// database directory with fsnotify and reacts to writes on either file (and
// on "<db>-journal" for rollback-journal databases). Bursts of writes, such
// as a price list import, are debounced into a single callback.
//
// Example usage:
//
//	w, err := watcher.New(dbPath, func() {
//		// rebuild the report
//	}, watcher.Options{Debounce: time.Second})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := w.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
//
// The watch command's background mode re-executes the binary with
// StartDaemon; the child calls RunDaemon, which owns the PID file until its
// context is cancelled or it receives SIGTERM.
package watcher
