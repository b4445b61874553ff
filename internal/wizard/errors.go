package wizard

import (
	"errors"
	"fmt"

	"github.com/jonathan/cv-builder/internal/validation"
)

var (
	// ErrBusy is returned when the same operation is already outstanding.
	ErrBusy = errors.New("operation already in progress")
	// ErrNotAvailable is returned when an action does not apply to the current view.
	ErrNotAvailable = errors.New("action not available in the current view")
	// ErrInternal wraps a recovered panic inside an action handler.
	ErrInternal = errors.New("internal error")
)

// InvalidStepError reports a navigation blocked by validation.
type InvalidStepError struct {
	Step   string
	Result validation.Result
}

func (e *InvalidStepError) Error() string {
	return fmt.Sprintf("step %s is incomplete: %s", e.Step, e.Result.Summary())
}

// UnknownFieldError is returned by the reducer for a field name a section does not have.
type UnknownFieldError struct {
	Section string
	Field   string
}

func (e *UnknownFieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("unknown section %q", e.Section)
	}
	return fmt.Sprintf("unknown field %q in %s", e.Field, e.Section)
}
