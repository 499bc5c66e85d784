// Package compare builds the regional release comparison table.
//
// Correlate walks the dataset in order and classifies each event as dated (the
// target region already released it) or undated. Project then predicts a target
// window for every undated event by carrying forward the gap and duration of the
// most recent known target window, chaining each prediction off the previous one.
// Build composes both passes into the rows consumed by the renderers.
package compare
