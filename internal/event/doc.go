// Package event provides the dataset model for regional game-event release windows.
//
// A Record is one real-world game event; it carries one optional Window per Region
// (japan, taiwan, korea, global, china). Dates are calendar dates interpreted at
// midnight in a fixed UTC+9 zone so that day arithmetic never drifts with the
// system timezone. The package also detects changes between two versions of the
// dataset, which the scrapers report after an update.
package event
