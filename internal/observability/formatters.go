// Package observability provides formatted terminal output for the console front end.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-builder/internal/draft"
	"github.com/jonathan/cv-builder/internal/steps"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/wizard"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// timeLayout formats saved-list timestamps
	timeLayout = "2006-01-02 15:04"
)

// Printer handles formatted output for the console session
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// stepMarkers renders one marker per step: ✓ completed, ! has errors, > current.
func stepMarkers(s wizard.State) string {
	withErrors := make(map[int]bool, len(s.StepsWithErrors))
	for _, i := range s.StepsWithErrors {
		withErrors[i] = true
	}

	parts := make([]string, 0, steps.Count())
	for i, def := range steps.Registry {
		mark := " "
		switch {
		case withErrors[i]:
			mark = "!"
		case s.IsCompleted(i):
			mark = "✓"
		}
		if s.Mode == wizard.EditingStep && i == s.StepIndex {
			parts = append(parts, fmt.Sprintf(">%s%s", mark, def.ID))
			continue
		}
		parts = append(parts, mark+def.ID)
	}
	return strings.Join(parts, " ")
}

// PrintStep outputs the current step with its data and any revealed field errors.
func (p *Printer) PrintStep(s wizard.State) {
	def := s.Step()
	cur, total := s.Progress()

	var sb strings.Builder
	sb.WriteString(stepMarkers(s))
	sb.WriteString("\n\n")

	switch def.ID {
	case steps.Personal:
		writePersonal(&sb, s.Draft.PersonalInfo)
	case steps.Skills:
		if len(s.Draft.Skills) == 0 {
			sb.WriteString("(no skills yet: add skills)\n")
		}
		for i, skill := range s.Draft.Skills {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i, skill))
		}
	default:
		writeEntries(&sb, def.Fields[0], s.Draft)
	}

	if len(s.FieldErrors) > 0 {
		sb.WriteString("\nErrors:\n")
		keys := make([]string, 0, len(s.FieldErrors))
		for k := range s.FieldErrors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  ⚠ %s: %s\n", k, s.FieldErrors[k]))
		}
	}

	p.printBox(fmt.Sprintf("STEP %d/%d · %s", cur, total, strings.ToUpper(def.Title)), strings.TrimSuffix(sb.String(), "\n"))
}

func writePersonal(sb *strings.Builder, info types.PersonalInfo) {
	rows := [][2]string{
		{"fullName", info.FullName},
		{"email", info.Email},
		{"phone", info.Phone},
		{"jobTitle", info.JobTitle},
		{"summary", info.Summary},
	}
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-9s %s\n", r[0]+":", r[1]))
	}
	if info.ProfileImage != "" {
		sb.WriteString(fmt.Sprintf("%-9s (%d bytes)\n", "photo:", len(info.ProfileImage)))
	}
}

// entryLines returns one headline and detail lines per entry in section.
func entryLines(section string, d types.ResumeDraft) [][]string {
	var out [][]string
	switch section {
	case steps.FieldExperience:
		for _, e := range d.Experience {
			out = append(out, []string{
				fmt.Sprintf("%s @ %s", orDash(e.Position), orDash(e.Company)),
				dates(e.StartDate, e.EndDate),
				e.Description,
			})
		}
	case steps.FieldEducation:
		for _, e := range d.Education {
			detail := dates(e.StartDate, e.EndDate)
			if e.GPA != "" {
				detail += " · GPA " + e.GPA
			}
			out = append(out, []string{
				fmt.Sprintf("%s, %s @ %s", orDash(e.Degree), orDash(e.Field), orDash(e.Institution)),
				detail,
			})
		}
	case steps.FieldActivities:
		for _, a := range d.Activities {
			out = append(out, []string{
				fmt.Sprintf("%s @ %s", orDash(a.Title), orDash(a.Organization)),
				dates(a.StartDate, a.EndDate),
				a.Description,
			})
		}
	case steps.FieldAwards:
		for _, a := range d.Awards {
			out = append(out, []string{
				fmt.Sprintf("%s (%s)", orDash(a.Title), orDash(a.Issuer)),
				orDash(a.Date),
				a.Description,
			})
		}
	}
	return out
}

func writeEntries(sb *strings.Builder, section string, d types.ResumeDraft) {
	entries := entryLines(section, d)
	if len(entries) == 0 {
		sb.WriteString(fmt.Sprintf("(no entries yet: add %s)\n", section))
		return
	}
	for i, lines := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i, lines[0]))
		for _, l := range lines[1:] {
			if l != "" {
				sb.WriteString("   " + strings.ReplaceAll(l, "\n", " ") + "\n")
			}
		}
	}
}

func dates(start, end string) string {
	if end == "" {
		end = "present"
	}
	return orDash(start) + " – " + end
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

// PrintPreview outputs the whole draft as it will be saved.
func (p *Printer) PrintPreview(s wizard.State) {
	p.PrintDraft("PREVIEW", s.Draft)
}

// PrintDraft outputs every section of d under title.
func (p *Printer) PrintDraft(title string, d types.ResumeDraft) {
	d = d.Normalize()
	var sb strings.Builder
	writePersonal(&sb, d.PersonalInfo)
	sb.WriteString(fmt.Sprintf("%-9s %s (%s, %s, %s, %s)\n", "look:", d.Template,
		d.Customization.Font, d.Customization.ColorScheme, d.Customization.Spacing, d.Customization.FontSize))

	for _, section := range wizard.Sections() {
		sb.WriteString("\n" + strings.ToUpper(section) + "\n")
		if section == steps.FieldSkills {
			if len(d.Skills) == 0 {
				sb.WriteString("(none)\n")
				continue
			}
			sb.WriteString(strings.Join(d.Skills, ", ") + "\n")
			continue
		}
		writeEntries(&sb, section, d)
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSavedList outputs saved résumés, most recent first as given.
func (p *Printer) PrintSavedList(list []types.SavedResume) {
	if len(list) == 0 {
		p.printBox("SAVED RÉSUMÉS", "No saved résumés yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d saved:\n\n", len(list)))
	for i, r := range list {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, orDash(r.Name)))
		updated := "—"
		if !r.UpdatedAt.IsZero() {
			updated = r.UpdatedAt.Local().Format(timeLayout)
		}
		sb.WriteString(fmt.Sprintf("   id %s\n", r.ID))
		sb.WriteString(fmt.Sprintf("   %s · updated %s\n", r.Template, updated))
		if i < len(list)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("SAVED RÉSUMÉS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintNotice outputs a one-line notice.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintNotice(n wizard.Notice) {
	icon := "ℹ"
	switch n.Kind {
	case wizard.NoticeSuccess:
		icon = "✅"
	case wizard.NoticeError:
		icon = "⚠"
	}
	line := fmt.Sprintf("%s %s", icon, n.Title)
	if n.Message != "" {
		line += ": " + n.Message
	}
	if n.Retryable {
		line += " (retry available)"
	}
	fmt.Fprintf(p.out, "[#%d] %s\n", n.ID, line)
}

// PrintDraftStatus outputs the auto-save indicator.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDraftStatus(status draft.Status, err error) {
	switch status {
	case draft.StatusSaving:
		fmt.Fprintln(p.out, "… saving draft")
	case draft.StatusSaved:
		fmt.Fprintln(p.out, "✓ draft saved")
	case draft.StatusFailed:
		fmt.Fprintf(p.out, "⚠ draft not saved: %v\n", err)
	}
}
