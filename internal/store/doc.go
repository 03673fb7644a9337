// Package store persists note characters in SQLite, one row per grapheme
// cluster, with embedded schema migrations.
package store
