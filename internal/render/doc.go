// Package render writes comparison tables as text, JSON or an HTML page.
//
// All renderers share the same row view: day counts suffixed with 일간/일,
// predicted values marked with "?", and a duration trend for dated rows.
package render
