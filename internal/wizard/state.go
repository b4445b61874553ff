package wizard

import (
	"github.com/jonathan/cv-builder/internal/steps"
	"github.com/jonathan/cv-builder/internal/types"
)

// ViewMode is the controller's current view.
type ViewMode int

const (
	EditingStep ViewMode = iota
	FullPreview
	SavedList
)

func (m ViewMode) String() string {
	switch m {
	case EditingStep:
		return "editing"
	case FullPreview:
		return "preview"
	case SavedList:
		return "list"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the controller.
type State struct {
	Mode      ViewMode
	StepIndex int
	// Completed holds the indices of steps that have passed validation, ascending.
	Completed []int
	Draft     types.ResumeDraft
	// FieldErrors are the current step's errors, recomputed from Draft, once
	// a navigation attempt on that step has failed.
	FieldErrors map[string]string
	// StepsWithErrors lists revealed steps whose data is currently invalid.
	StepsWithErrors []int
	Saved           []types.SavedResume

	Saving   bool
	Loading  bool
	Deleting bool
	Listing  bool
}

// Step returns the definition of the current step.
func (s State) Step() steps.StepDefinition {
	def, _ := steps.At(s.StepIndex)
	return def
}

// IsCompleted reports whether step index i has passed validation.
func (s State) IsCompleted(i int) bool {
	for _, c := range s.Completed {
		if c == i {
			return true
		}
	}
	return false
}

// IsLastStep reports whether the current step is the final one.
func (s State) IsLastStep() bool {
	return s.StepIndex == steps.Count()-1
}

// Progress returns the 1-based position of the current step.
func (s State) Progress() (current, total int) {
	return s.StepIndex + 1, steps.Count()
}
