// Package wizard implements the multi-step résumé form state machine:
// validation-gated navigation, preview and saved-list views, draft
// auto-save and persistence through the résumé service.
package wizard

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/jonathan/cv-builder/internal/listedit"
	"github.com/jonathan/cv-builder/internal/resumeapi"
	"github.com/jonathan/cv-builder/internal/steps"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/validation"
	"github.com/rs/zerolog"
)

// Repository is the résumé service as the controller sees it.
type Repository interface {
	List(ctx context.Context) ([]types.SavedResume, error)
	Get(ctx context.Context, id string) (types.SavedResume, error)
	Create(ctx context.Context, d types.ResumeDraft, meta types.ResumeMeta) (types.SavedResume, error)
	Update(ctx context.Context, id string, d types.ResumeDraft, meta types.ResumeMeta) (types.SavedResume, error)
	Delete(ctx context.Context, id string) error
}

// DraftStore persists the in-progress draft.
type DraftStore interface {
	Schedule(d types.ResumeDraft)
	Load(ctx context.Context) (types.ResumeDraft, bool, error)
	Clear(ctx context.Context) error
}

type operation string

const (
	opSave   operation = "save"
	opLoad   operation = "load"
	opDelete operation = "delete"
	opList   operation = "list"
)

// Options configures a Controller.
type Options struct {
	Repository Repository
	// Drafts may be nil, which disables auto-save and restore.
	Drafts   DraftStore
	Notifier *Notifier
	Logger   zerolog.Logger
	IDs      listedit.IDFunc
}

// Controller serializes wizard transitions. Network calls run outside the
// lock; their results are applied once they return.
type Controller struct {
	repo     Repository
	drafts   DraftStore
	notifier *Notifier
	log      zerolog.Logger
	ids      listedit.IDFunc

	mu        sync.Mutex
	draft     types.ResumeDraft
	mode      ViewMode
	step      int
	completed map[int]bool
	revealed  map[int]bool
	saved     []types.SavedResume
	inflight  map[operation]bool

	obsMu     sync.Mutex
	observers map[int]func(State)
	obsSeq    int
}

// New returns a controller at EditingStep(0) with an empty draft.
func New(opts Options) *Controller {
	n := opts.Notifier
	if n == nil {
		n = NewNotifier()
	}
	ids := opts.IDs
	if ids == nil {
		ids = listedit.NewID
	}
	c := &Controller{
		repo:      opts.Repository,
		drafts:    opts.Drafts,
		notifier:  n,
		log:       opts.Logger,
		ids:       ids,
		inflight:  make(map[operation]bool),
		observers: make(map[int]func(State)),
	}
	c.resetLocked(types.NewDraft())
	return c
}

// Notifier returns the controller's notice channel owner.
func (c *Controller) Notifier() *Notifier { return c.notifier }

// Subscribe registers fn to receive a snapshot after every state change.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.obsSeq++
	id := c.obsSeq
	c.observers[id] = fn
	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		delete(c.observers, id)
	}
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Next validates the current step. On success the step is marked completed
// and the wizard advances, or enters the preview from the last step.
func (c *Controller) Next() error {
	return c.guard("next", func() error {
		defer c.changed()
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.mode != EditingStep {
			return ErrNotAvailable
		}
		if err := c.validateCurrentLocked(); err != nil {
			return err
		}
		if c.step == steps.Count()-1 {
			c.mode = FullPreview
		} else {
			c.step++
		}
		return nil
	})
}

// GoTo jumps to step j. Earlier and completed steps are always reachable;
// otherwise the current step must validate first.
func (c *Controller) GoTo(j int) error {
	return c.guard("goto", func() error {
		if _, err := steps.At(j); err != nil {
			return err
		}
		defer c.changed()
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.mode != EditingStep {
			return ErrNotAvailable
		}
		if j <= c.step || c.completed[j] {
			c.step = j
			return nil
		}
		if err := c.validateCurrentLocked(); err != nil {
			return err
		}
		c.step = j
		return nil
	})
}

// Prev steps back one position without validating.
func (c *Controller) Prev() error {
	return c.guard("prev", func() error {
		defer c.changed()
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.mode != EditingStep || c.step == 0 {
			return ErrNotAvailable
		}
		c.step--
		return nil
	})
}

// SubmitFinal validates the last step and opens the preview. Nothing is persisted.
func (c *Controller) SubmitFinal() error {
	return c.guard("submit", func() error {
		defer c.changed()
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.mode != EditingStep || c.step != steps.Count()-1 {
			return ErrNotAvailable
		}
		if err := c.validateCurrentLocked(); err != nil {
			return err
		}
		c.mode = FullPreview
		return nil
	})
}

// ReturnToEdit leaves the preview for the step that was being edited.
func (c *Controller) ReturnToEdit() error {
	return c.guard("edit", func() error {
		defer c.changed()
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.mode != FullPreview {
			return ErrNotAvailable
		}
		c.mode = EditingStep
		return nil
	})
}

// Dispatch applies an edit and schedules a draft save.
func (c *Controller) Dispatch(a Action) error {
	return c.guard("dispatch", func() error {
		snapshot, err := c.apply(a)
		if err != nil {
			return err
		}

		if c.drafts != nil {
			c.drafts.Schedule(snapshot)
		}
		c.changed()
		return nil
	})
}

func (c *Controller) apply(a Action) (types.ResumeDraft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == SavedList {
		return types.ResumeDraft{}, ErrNotAvailable
	}
	next, err := Reduce(c.draft, a, c.ids)
	if err != nil {
		return types.ResumeDraft{}, err
	}
	c.draft = next
	return next.Clone(), nil
}

// New discards the working draft and starts over at the first step.
// The stored draft is left alone until the next edit replaces it.
func (c *Controller) New() error {
	return c.guard("new", func() error {
		defer c.changed()
		c.mu.Lock()
		defer c.mu.Unlock()
		c.resetLocked(types.NewDraft())
		return nil
	})
}

// Restore seeds the wizard from the stored draft, if any. An unreadable
// draft counts as none.
func (c *Controller) Restore(ctx context.Context) (bool, error) {
	var restored bool
	err := c.guard("restore", func() error {
		if c.drafts == nil {
			return nil
		}
		d, found, err := c.drafts.Load(ctx)
		if err != nil {
			c.log.Warn().Err(err).Msg("could not read stored draft")
			return nil
		}
		if !found {
			return nil
		}

		c.mu.Lock()
		c.resetLocked(d)
		c.mu.Unlock()
		restored = true

		c.notifier.Publish(NoticeInfo, "Draft restored", "Your previously saved data has been restored.", false)
		c.changed()
		return nil
	})
	return restored, err
}

// Edit loads a saved résumé into the wizard. Steps are not pre-marked
// complete; each re-validates on its own navigation.
func (c *Controller) Edit(ctx context.Context, id string) error {
	return c.guard("open", func() error {
		if err := c.begin(opLoad); err != nil {
			return err
		}
		defer c.end(opLoad)

		saved, err := c.repo.Get(ctx, id)
		if err != nil {
			c.failed("Could not open résumé", "load resume", err)
			return fmt.Errorf("load resume %s: %w", id, err)
		}

		d := saved.Data.Normalize()
		d.ID = saved.ID
		if saved.Template != "" {
			d.Template = saved.Template
		}
		if saved.Customization != (types.Customization{}) {
			d.Customization = saved.Customization.WithDefaults()
		}

		c.mu.Lock()
		c.resetLocked(d)
		c.mu.Unlock()
		return nil
	})
}

// Save persists the draft from the preview: create when it has no id,
// update otherwise. On success the wizard moves to the saved list.
func (c *Controller) Save(ctx context.Context) error {
	return c.guard("save", func() error {
		c.mu.Lock()
		if c.mode != FullPreview {
			c.mu.Unlock()
			return ErrNotAvailable
		}
		d := c.draft.Clone()
		c.mu.Unlock()

		if err := c.begin(opSave); err != nil {
			return err
		}
		defer c.end(opSave)

		meta := types.MetaFromDraft(d)
		var (
			saved types.SavedResume
			err   error
		)
		if d.ID == "" {
			saved, err = c.repo.Create(ctx, d, meta)
		} else {
			saved, err = c.repo.Update(ctx, d.ID, d, meta)
		}
		if err != nil {
			c.failed("Could not save résumé", "save resume", err)
			return fmt.Errorf("save resume: %w", err)
		}

		c.mu.Lock()
		c.draft.ID = saved.ID
		c.mode = SavedList
		c.mu.Unlock()

		if c.drafts != nil {
			if err := c.drafts.Clear(ctx); err != nil {
				c.log.Warn().Err(err).Msg("could not clear stored draft after save")
			}
		}
		c.log.Info().Str("id", saved.ID).Str("name", saved.Name).Msg("résumé saved")
		c.notifier.Publish(NoticeSuccess, "Résumé saved", "Your résumé has been saved to the server.", false)
		c.refresh(ctx)
		return nil
	})
}

// Back returns to the saved list without saving.
func (c *Controller) Back(ctx context.Context) error {
	return c.guard("back", func() error {
		c.mu.Lock()
		if c.mode == SavedList {
			c.mu.Unlock()
			return ErrNotAvailable
		}
		c.mode = SavedList
		c.mu.Unlock()

		c.refresh(ctx)
		return nil
	})
}

// OpenList shows the saved list and reloads it from the server.
func (c *Controller) OpenList(ctx context.Context) error {
	return c.guard("list", func() error {
		c.mu.Lock()
		c.mode = SavedList
		c.mu.Unlock()

		c.refresh(ctx)
		return nil
	})
}

// Delete removes a saved résumé from the list view.
func (c *Controller) Delete(ctx context.Context, id string) error {
	return c.guard("delete", func() error {
		c.mu.Lock()
		mode := c.mode
		c.mu.Unlock()
		if mode != SavedList {
			return ErrNotAvailable
		}

		if err := c.begin(opDelete); err != nil {
			return err
		}
		defer c.end(opDelete)

		if err := c.repo.Delete(ctx, id); err != nil {
			c.failed("Could not delete résumé", "delete resume", err)
			return fmt.Errorf("delete resume %s: %w", id, err)
		}

		c.mu.Lock()
		kept := c.saved[:0:0]
		for _, r := range c.saved {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		c.saved = kept
		if c.draft.ID == id {
			c.draft.ID = ""
		}
		c.mu.Unlock()

		c.notifier.Publish(NoticeSuccess, "Résumé deleted", "", false)
		c.refresh(ctx)
		return nil
	})
}

// refresh reloads the saved list. Failures become notices; a refresh
// already in flight is not repeated.
func (c *Controller) refresh(ctx context.Context) {
	if err := c.begin(opList); err != nil {
		return
	}
	defer c.end(opList)

	list, err := c.repo.List(ctx)
	if err != nil {
		c.failed("Could not load résumés", "list resumes", err)
		return
	}

	c.mu.Lock()
	c.saved = list
	c.mu.Unlock()
}

// validateCurrentLocked runs the validator on the current step and records the outcome.
func (c *Controller) validateCurrentLocked() error {
	def := steps.Registry[c.step]
	res, err := validation.Validate(def.ID, c.draft)
	if err != nil {
		return err
	}
	if !res.Valid {
		c.revealed[c.step] = true
		c.notifier.Publish(NoticeError, "Please check your information", res.Summary(), false)
		return &InvalidStepError{Step: def.ID, Result: res}
	}
	c.completed[c.step] = true
	return nil
}

func (c *Controller) resetLocked(d types.ResumeDraft) {
	c.draft = d.Normalize()
	c.mode = EditingStep
	c.step = 0
	c.completed = make(map[int]bool)
	c.revealed = make(map[int]bool)
}

func (c *Controller) snapshotLocked() State {
	s := State{
		Mode:      c.mode,
		StepIndex: c.step,
		Draft:     c.draft.Clone(),
		Saved:     append([]types.SavedResume(nil), c.saved...),
		Saving:    c.inflight[opSave],
		Loading:   c.inflight[opLoad],
		Deleting:  c.inflight[opDelete],
		Listing:   c.inflight[opList],
	}
	for i := range c.completed {
		s.Completed = append(s.Completed, i)
	}
	sort.Ints(s.Completed)

	for i := range c.revealed {
		res, err := validation.Validate(steps.Registry[i].ID, c.draft)
		if err != nil || res.Valid {
			continue
		}
		s.StepsWithErrors = append(s.StepsWithErrors, i)
		if i == c.step {
			s.FieldErrors = res.FieldErrors
		}
	}
	sort.Ints(s.StepsWithErrors)
	return s
}

// begin marks op in flight or returns ErrBusy.
func (c *Controller) begin(op operation) error {
	c.mu.Lock()
	if c.inflight[op] {
		c.mu.Unlock()
		return ErrBusy
	}
	c.inflight[op] = true
	c.mu.Unlock()
	c.changed()
	return nil
}

func (c *Controller) end(op operation) {
	c.mu.Lock()
	delete(c.inflight, op)
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) failed(title, action string, err error) {
	c.log.Warn().Err(err).Str("action", action).Msg("résumé service call failed")
	c.notifier.Publish(NoticeError, title, resumeapi.UserMessage(err), true)
}

// changed sends a snapshot to every observer.
func (c *Controller) changed() {
	s := c.State()

	c.obsMu.Lock()
	fns := make([]func(State), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.obsMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// guard converts a panic in an action into ErrInternal and a notice.
func (c *Controller) guard(action string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().
				Str("action", action).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("recovered from panic in wizard action")
			c.notifier.Publish(NoticeError, "Unexpected error", "Something went wrong. Please try again.", false)
			err = fmt.Errorf("%w: %s: %v", ErrInternal, action, r)
		}
	}()
	return fn()
}
