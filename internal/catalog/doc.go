// Package catalog persists the library index in SQLite: one row per scanned
// image plus an append-only log of destructive actions.
package catalog
