package notifier

import (
	"fmt"

	"github.com/pfrederiksen/regional-events/internal/event"
)

// Notifier defines the interface for reporting dataset changes
type Notifier interface {
	// Notify reports the changes one source made to the dataset
	Notify(source string, changes []*event.Change) error
}

// Multi fans out to several notifiers, stopping at the first error
type Multi []Notifier

func (m Multi) Notify(source string, changes []*event.Change) error {
	for _, n := range m {
		if err := n.Notify(source, changes); err != nil {
			return err
		}
	}
	return nil
}

// formatChange renders one change as a single line
func formatChange(source string, c *event.Change) string {
	return fmt.Sprintf("%s: %s", source, c)
}
