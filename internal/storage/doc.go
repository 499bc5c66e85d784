// Package storage provides JSON-based persistence for the event dataset.
//
// The dataset is a single JSON array of records (data.json) that the table
// renderers read and the scrapers rewrite. Files are written with two-space
// indentation and a trailing newline so that updates produce small diffs,
// and every write goes through a temporary file renamed into place.
package storage
