// Package clipboard ties scanning, matching and filling together around a
// stored snapshot.
//
// Copy scans a page, groups its filled fields into entities and keeps the
// result as the current snapshot. Paste takes a snapshot (the current one
// when none is given), scans the target page, maps fields and fills them.
//
// Storage:
//   - MemoryStore: process-local, used by tests and the CLI
//   - FileStore: zstd-compressed JSON files under a directory
//
// The current slot is last-write-wins. Saved records are kept per
// identifier, newest first, up to a history limit.
package clipboard
