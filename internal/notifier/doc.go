// Package notifier reports dataset changes found by the scrapers.
//
// The CLI update command prints them for the operator; the server's scheduled
// refresh writes them to the structured log.
package notifier
