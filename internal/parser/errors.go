package parser

import (
	"fmt"

	"github.com/pable/go-rl-metrics/internal/entity"
)

// DataIntegrityError reports a resource reading that is not a whole number
// in [0,255]. It aborts the whole reduction.
type DataIntegrityError struct {
	Frame  int
	Entity entity.ID
	Level  int
	// Raw is set when the reading is not an integer at all.
	Raw string
}

func (e *DataIntegrityError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("data integrity: boost value %s is not an integer on entity %d at frame %d",
			e.Raw, e.Entity, e.Frame)
	}
	return fmt.Sprintf("data integrity: boost level %d out of range [0,255] on entity %d at frame %d",
		e.Level, e.Entity, e.Frame)
}
