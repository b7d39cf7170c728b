// Package sqlite persists sweep runs and trial outcomes in a local
// SQLite database, so past sweeps can be inspected after the fact.
package sqlite
