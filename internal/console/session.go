// Package console drives the wizard from a line-oriented terminal session.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jonathan/cv-builder/internal/draft"
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/resumeapi"
	"github.com/jonathan/cv-builder/internal/steps"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/validation"
	"github.com/jonathan/cv-builder/internal/wizard"
)

// Prompt is printed before each command when the session is interactive.
const Prompt = "cv> "

// noticeBuffer holds the notices one command can publish before the
// session drains them.
const noticeBuffer = 32

// errQuit ends Run without error.
var errQuit = errors.New("quit")

// UsageError reports a malformed command line.
type UsageError struct {
	Command string
	Message string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s (try 'help')", e.Command, e.Message)
}

// DraftStatus reports the auto-save indicator.
type DraftStatus interface {
	Status() draft.Status
}

// Session reads commands and applies them to a controller.
type Session struct {
	ctrl    *wizard.Controller
	printer *observability.Printer
	out     io.Writer
	drafts  DraftStatus

	// Interactive prints the prompt before each line.
	Interactive bool

	notices    <-chan wizard.Notice
	lastNotice uint64
}

// NewSession returns a session writing to out. drafts may be nil.
func NewSession(ctrl *wizard.Controller, out io.Writer, drafts DraftStatus) *Session {
	return &Session{
		ctrl:    ctrl,
		printer: observability.NewPrinter(out),
		out:     out,
		drafts:  drafts,
	}
}

// Run executes commands from in until quit or end of input. Command
// failures are reported and the session continues.
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	notices, cancel := s.ctrl.Notifier().Subscribe(noticeBuffer)
	defer cancel()
	s.notices = notices

	s.Show()
	// Notices published before the session started, such as a restored draft.
	for _, n := range s.ctrl.Notifier().Active() {
		s.printNotice(n)
	}
	s.flushNotices()
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64<<10), 8<<20)
	for {
		if s.Interactive {
			fmt.Fprint(s.out, Prompt)
		}
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := s.Exec(ctx, scanner.Text())
		s.flushNotices()
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			s.report(err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}
	return nil
}

//nolint:errcheck // writing to the terminal; errors are not recoverable
func (s *Session) report(err error) {
	var invalid *wizard.InvalidStepError
	var usage *UsageError
	switch {
	case errors.As(err, &invalid):
		// The step view already lists the field errors.
		s.Show()
	case errors.Is(err, wizard.ErrNotAvailable):
		fmt.Fprintf(s.out, "not available in the %s view\n", s.ctrl.State().Mode)
	case errors.Is(err, wizard.ErrBusy):
		fmt.Fprintln(s.out, "please wait, a request is already running")
	case errors.As(err, &usage):
		fmt.Fprintln(s.out, usage.Error())
	case errors.Is(err, wizard.ErrInternal), isServiceError(err):
		// A notice was already published.
	default:
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
}

func isServiceError(err error) bool {
	var apiErr *resumeapi.APIError
	var transportErr *resumeapi.TransportError
	return errors.As(err, &apiErr) || errors.As(err, &transportErr) ||
		errors.Is(err, resumeapi.ErrCredentialExpired) || errors.Is(err, context.DeadlineExceeded)
}

// flushNotices prints the notices delivered since the last flush.
func (s *Session) flushNotices() {
	for {
		select {
		case n, ok := <-s.notices:
			if !ok {
				return
			}
			s.printNotice(n)
		default:
			return
		}
	}
}

func (s *Session) printNotice(n wizard.Notice) {
	if n.ID <= s.lastNotice {
		return
	}
	s.printer.PrintNotice(n)
	s.lastNotice = n.ID
}

// Show prints the current view.
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func (s *Session) Show() {
	st := s.ctrl.State()
	switch st.Mode {
	case wizard.EditingStep:
		s.printer.PrintStep(st)
	case wizard.FullPreview:
		s.printer.PrintPreview(st)
		fmt.Fprintln(s.out, "save to persist, edit to keep editing, back for the saved list")
	case wizard.SavedList:
		if st.Listing {
			fmt.Fprintln(s.out, "loading…")
		}
		s.printer.PrintSavedList(st.Saved)
	}
	if s.drafts != nil {
		if status := s.drafts.Status(); status != draft.StatusIdle {
			fmt.Fprintf(s.out, "draft: %s\n", status)
		}
	}
}

// Exec runs one command line.
func (s *Session) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	name, rest := cut(line)
	cmd, ok := commands[name]
	if !ok {
		return &UsageError{Command: name, Message: "unknown command"}
	}
	return cmd.run(s, ctx, rest)
}

type command struct {
	usage string
	help  string
	run   func(s *Session, ctx context.Context, args string) error
}

var commands map[string]command

// commandOrder fixes the help listing.
var commandOrder = []string{
	"show", "set", "add", "skill", "rm", "mv", "drop",
	"next", "prev", "goto", "submit", "edit",
	"template", "customize", "save", "back", "list", "open", "delete", "new",
	"dismiss", "help", "quit",
}

func init() {
	commands = map[string]command{
		"show": {"show", "print the current view", func(s *Session, _ context.Context, _ string) error {
			s.Show()
			return nil
		}},
		"set":       {"set <field> <value> | set <n> <field> <value> | set <n> <skill>", "change a field on the current step", (*Session).set},
		"add":       {"add [skill]", "append an entry to the current step", (*Session).add},
		"skill":     {"skill <name>", "append a skill", (*Session).skill},
		"rm":        {"rm <n>", "remove entry n", (*Session).remove},
		"mv":        {"mv <from> <to>", "move an entry to a new position", (*Session).move},
		"drop":      {"drop <dragged> <target>", "drop the dragged entry onto the target's slot", (*Session).drop},
		"next":      {"next", "validate this step and continue", navigate((*wizard.Controller).Next)},
		"prev":      {"prev", "go back one step", navigate((*wizard.Controller).Prev)},
		"goto":      {"goto <n|step|field>", "jump to a step", (*Session).gotoStep},
		"submit":    {"submit", "validate the last step and open the preview", navigate((*wizard.Controller).SubmitFinal)},
		"edit":      {"edit", "leave the preview and keep editing", navigate((*wizard.Controller).ReturnToEdit)},
		"template":  {"template <" + strings.Join(types.Templates, "|") + ">", "choose the visual template", (*Session).template},
		"customize": {"customize <font|colorScheme|spacing|fontSize> <value>", "change a visual option", (*Session).customize},
		"save":      {"save", "persist the previewed résumé", network((*wizard.Controller).Save)},
		"back":      {"back", "return to the saved list without saving", network((*wizard.Controller).Back)},
		"list":      {"list", "show saved résumés", network((*wizard.Controller).OpenList)},
		"open":      {"open <id>", "load a saved résumé for editing", (*Session).open},
		"delete":    {"delete <id>", "delete a saved résumé (list view)", (*Session).delete},
		"new":       {"new", "start a blank résumé", navigate((*wizard.Controller).New)},
		"dismiss":   {"dismiss <notice#>", "dismiss a notice", (*Session).dismiss},
		"help":      {"help", "list commands", (*Session).help},
		"quit":      {"quit", "end the session", func(*Session, context.Context, string) error { return errQuit }},
	}
}

func navigate(fn func(*wizard.Controller) error) func(*Session, context.Context, string) error {
	return func(s *Session, _ context.Context, _ string) error {
		if err := fn(s.ctrl); err != nil {
			return err
		}
		s.Show()
		return nil
	}
}

func network(fn func(*wizard.Controller, context.Context) error) func(*Session, context.Context, string) error {
	return func(s *Session, ctx context.Context, _ string) error {
		if err := fn(s.ctrl, ctx); err != nil {
			return err
		}
		s.Show()
		return nil
	}
}

// cut splits off the first whitespace-separated token.
func cut(line string) (string, string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, func(r rune) bool { return r == ' ' || r == '\t' })
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

// value unescapes \n so multi-line descriptions fit on one command line.
func value(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func index(cmd, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &UsageError{Command: cmd, Message: fmt.Sprintf("%q is not an entry number", s)}
	}
	return n, nil
}

// section returns the collection owned by the current step.
func (s *Session) section(cmd string) (string, error) {
	def := s.ctrl.State().Step()
	if !def.Collection {
		return "", &UsageError{Command: cmd, Message: "the " + def.ID + " step has no list"}
	}
	return def.Fields[0], nil
}

func (s *Session) set(_ context.Context, args string) error {
	def := s.ctrl.State().Step()
	first, rest := cut(args)
	if first == "" {
		return &UsageError{Command: "set", Message: "missing field"}
	}

	if !def.Collection {
		return s.ctrl.Dispatch(wizard.SetPersonalField{Field: first, Value: value(rest)})
	}

	i, err := index("set", first)
	if err != nil {
		return err
	}
	if def.ID == steps.Skills {
		return s.ctrl.Dispatch(wizard.SetSkill{Index: i, Value: value(rest)})
	}
	field, val := cut(rest)
	if field == "" {
		return &UsageError{Command: "set", Message: "missing field; one of " + strings.Join(wizard.EntryFields(def.Fields[0]), ", ")}
	}
	return s.ctrl.Dispatch(wizard.SetEntryField{Section: def.Fields[0], Index: i, Field: field, Value: value(val)})
}

func (s *Session) add(_ context.Context, args string) error {
	sec, err := s.section("add")
	if err != nil {
		return err
	}
	if sec == steps.FieldSkills && args != "" {
		return s.ctrl.Dispatch(wizard.AppendSkill{Value: args})
	}
	return s.ctrl.Dispatch(wizard.AppendEntry{Section: sec})
}

func (s *Session) skill(_ context.Context, args string) error {
	if args == "" {
		return &UsageError{Command: "skill", Message: "missing skill name"}
	}
	return s.ctrl.Dispatch(wizard.AppendSkill{Value: args})
}

func (s *Session) remove(_ context.Context, args string) error {
	sec, err := s.section("rm")
	if err != nil {
		return err
	}
	i, err := index("rm", args)
	if err != nil {
		return err
	}
	return s.ctrl.Dispatch(wizard.RemoveEntry{Section: sec, Index: i})
}

func (s *Session) move(_ context.Context, args string) error {
	sec, err := s.section("mv")
	if err != nil {
		return err
	}
	from, to, err := pair("mv", args)
	if err != nil {
		return err
	}
	return s.ctrl.Dispatch(wizard.MoveEntry{Section: sec, From: from, To: to})
}

// drop resolves positions to entry ids the way a drag-and-drop list does.
func (s *Session) drop(_ context.Context, args string) error {
	sec, err := s.section("drop")
	if err != nil {
		return err
	}
	from, to, err := pair("drop", args)
	if err != nil {
		return err
	}
	ids := entryIDs(s.ctrl.State().Draft, sec)
	if from < 0 || from >= len(ids) || to < 0 || to >= len(ids) {
		return &UsageError{Command: "drop", Message: fmt.Sprintf("positions must be between 0 and %d", len(ids)-1)}
	}
	return s.ctrl.Dispatch(wizard.DropEntry{Section: sec, ActiveID: ids[from], OverID: ids[to]})
}

func entryIDs(d types.ResumeDraft, section string) []string {
	var ids []string
	switch section {
	case steps.FieldExperience:
		for _, e := range d.Experience {
			ids = append(ids, e.ID)
		}
	case steps.FieldEducation:
		for _, e := range d.Education {
			ids = append(ids, e.ID)
		}
	case steps.FieldActivities:
		for _, e := range d.Activities {
			ids = append(ids, e.ID)
		}
	case steps.FieldAwards:
		for _, e := range d.Awards {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func pair(cmd, args string) (int, int, error) {
	a, b := cut(args)
	if a == "" || b == "" {
		return 0, 0, &UsageError{Command: cmd, Message: "expected two entry numbers"}
	}
	x, err := index(cmd, a)
	if err != nil {
		return 0, 0, err
	}
	y, err := index(cmd, b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// gotoStep accepts a 1-based step number, a step id or the draft field a
// step owns, so "goto personalInfo" lands on the personal step.
func (s *Session) gotoStep(_ context.Context, args string) error {
	if args == "" {
		return &UsageError{Command: "goto", Message: "missing step"}
	}
	j := steps.IndexOf(args)
	if j < 0 {
		j = steps.IndexOf(steps.OwnerOf(args))
	}
	if j < 0 {
		n, err := strconv.Atoi(args)
		if err != nil {
			return &UsageError{Command: "goto", Message: fmt.Sprintf("unknown step %q", args)}
		}
		j = n - 1
	}
	if err := s.ctrl.GoTo(j); err != nil {
		return err
	}
	s.Show()
	return nil
}

func (s *Session) template(_ context.Context, args string) error {
	if args == "" {
		return &UsageError{Command: "template", Message: "missing template id"}
	}
	return s.ctrl.Dispatch(wizard.SetTemplate{ID: args})
}

func (s *Session) customize(_ context.Context, args string) error {
	key, val := cut(args)
	if key == "" || val == "" {
		return &UsageError{Command: "customize", Message: "expected an option and a value"}
	}
	return s.ctrl.Dispatch(wizard.SetCustomization{Key: key, Value: val})
}

func (s *Session) open(ctx context.Context, args string) error {
	if args == "" {
		return &UsageError{Command: "open", Message: "missing résumé id"}
	}
	if err := s.ctrl.Edit(ctx, args); err != nil {
		return err
	}
	s.Show()
	return nil
}

func (s *Session) delete(ctx context.Context, args string) error {
	if args == "" {
		return &UsageError{Command: "delete", Message: "missing résumé id"}
	}
	if err := s.ctrl.Delete(ctx, args); err != nil {
		return err
	}
	s.Show()
	return nil
}

//nolint:errcheck // writing to the terminal; errors are not recoverable
func (s *Session) dismiss(_ context.Context, args string) error {
	id, err := strconv.ParseUint(strings.TrimPrefix(args, "#"), 10, 64)
	if err != nil {
		return &UsageError{Command: "dismiss", Message: "expected a notice number"}
	}
	if !s.ctrl.Notifier().Dismiss(id) {
		fmt.Fprintf(s.out, "no active notice #%d\n", id)
	}
	return nil
}

//nolint:errcheck // writing to the terminal; errors are not recoverable
func (s *Session) help(_ context.Context, _ string) error {
	for _, name := range commandOrder {
		c := commands[name]
		fmt.Fprintf(s.out, "  %-58s %s\n", c.usage, c.help)
	}
	fmt.Fprintf(s.out, "\npersonal fields: %s\n", strings.Join(wizard.PersonalFields(), ", "))
	for _, sec := range wizard.Sections() {
		if fields := wizard.EntryFields(sec); len(fields) > 0 {
			fmt.Fprintf(s.out, "%s fields: %s\n", sec, strings.Join(fields, ", "))
		}
	}
	fmt.Fprintf(s.out, "steps: %s\n", strings.Join(stepIDs(), ", "))
	fmt.Fprintln(s.out, `use \n inside a value for a line break`)
	return nil
}

func stepIDs() []string {
	ids := make([]string, 0, steps.Count())
	for _, def := range steps.Registry {
		ids = append(ids, def.ID)
	}
	return ids
}

// Summary returns the validation summary for every invalid step of d,
// for callers that check a draft outside a session.
func Summary(d types.ResumeDraft) []string {
	var out []string
	for _, id := range validation.InvalidSteps(d) {
		res, err := validation.Validate(id, d)
		if err != nil {
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s", id, res.Summary()))
	}
	return out
}
