package notifier

import (
	"fmt"
	"io"

	"github.com/pfrederiksen/regional-events/internal/event"
	"github.com/pfrederiksen/regional-events/internal/logger"
)

// WriterNotifier prints one line per change
type WriterNotifier struct {
	w io.Writer
}

// NewWriterNotifier creates a new notifier writing to w
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(source string, changes []*event.Change) error {
	for _, c := range changes {
		if _, err := fmt.Fprintln(n.w, formatChange(source, c)); err != nil {
			return fmt.Errorf("writing change: %w", err)
		}
	}
	return nil
}

// LogNotifier writes changes to the structured log
type LogNotifier struct{}

// NewLogNotifier creates a new log notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(source string, changes []*event.Change) error {
	for _, c := range changes {
		logger.Info("Dataset changed", logger.Fields{
			"source":      source,
			"index":       c.Index,
			"region":      c.Region,
			"change_type": c.ChangeType,
			"old_value":   c.OldValue,
			"new_value":   c.NewValue,
		})
	}
	logger.AddCounter("notifier.changes", int64(len(changes)))
	return nil
}
