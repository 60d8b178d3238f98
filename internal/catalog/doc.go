// Package catalog persists libraries and audiobooks in SQLite. All writes go
// through the scan coordinator; extraction workers never touch the store
// directly.
package catalog
