// Package cli implements the command-line interface for regional-events.
//
// The cli package provides the Cobra-based commands that render the comparison
// table (text/JSON/HTML), export it as an iCalendar feed, serve it over HTTP,
// capture it as a PNG and refresh the dataset from the upstream sources.
// Settings come from the config package; flags take precedence.
package cli
