package rendering

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/jonathan/cv-builder/internal/types"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var (
	parseOnce sync.Once
	parsed    *template.Template
	parseErr  error

	descriptionPolicy = bluemonday.UGCPolicy()
)

// Style is the CSS derived from a customization.
type Style struct {
	FontFamily template.CSS
	Accent     template.CSS
	AccentSoft template.CSS
	Gap        template.CSS
	FontSize   template.CSS
}

var fontFamilies = map[string]string{
	"inter":    `"Inter", "Helvetica Neue", Arial, sans-serif`,
	"serif":    `Georgia, "Times New Roman", serif`,
	"mono":     `"JetBrains Mono", Menlo, Consolas, monospace`,
	"playfair": `"Playfair Display", Georgia, serif`,
}

var accents = map[string][2]string{
	"blue":   {"#2563eb", "#dbeafe"},
	"green":  {"#16a34a", "#dcfce7"},
	"purple": {"#9333ea", "#f3e8ff"},
	"red":    {"#dc2626", "#fee2e2"},
	"orange": {"#ea580c", "#ffedd5"},
	"gray":   {"#4b5563", "#f3f4f6"},
}

var gaps = map[string]string{
	"compact": "0.5rem",
	"normal":  "1rem",
	"relaxed": "1.5rem",
}

var fontSizes = map[string]string{
	"small":  "13px",
	"medium": "15px",
	"large":  "17px",
}

// StyleFor maps a customization to CSS values. Unknown or empty options
// fall back to the defaults.
func StyleFor(c types.Customization) Style {
	c = c.WithDefaults()
	def := types.DefaultCustomization()

	pick := func(m map[string]string, key, fallback string) string {
		if v, ok := m[key]; ok {
			return v
		}
		return m[fallback]
	}
	accent, ok := accents[c.ColorScheme]
	if !ok {
		accent = accents[def.ColorScheme]
	}

	// Values come from the fixed tables above, never from user input.
	return Style{
		FontFamily: template.CSS(pick(fontFamilies, c.Font, def.Font)),
		Accent:     template.CSS(accent[0]),
		AccentSoft: template.CSS(accent[1]),
		Gap:        template.CSS(pick(gaps, c.Spacing, def.Spacing)),
		FontSize:   template.CSS(pick(fontSizes, c.FontSize, def.FontSize)),
	}
}

// entry is one dated item in a section.
type entry struct {
	Heading     string
	Subheading  string
	Dates       string
	Extra       string
	Description template.HTML
}

// section is a titled list of entries, in draft order.
type section struct {
	ID      string
	Title   string
	Entries []entry
}

type pageView struct {
	Template string
	Style    Style
	Person   types.PersonalInfo
	Photo    template.URL
	Summary  template.HTML
	Sections []section
	Skills   []string
}

func loadTemplates() (*template.Template, error) {
	parseOnce.Do(func() {
		parsed, parseErr = template.New("resume").ParseFS(templateFS, "templates/*.html.tmpl")
	})
	return parsed, parseErr
}

// HTML renders d with the named template and customization. An empty
// template id uses the one stored on the draft.
func HTML(d types.ResumeDraft, templateID string, c types.Customization) ([]byte, error) {
	d = d.Normalize()
	if templateID == "" {
		templateID = d.Template
	}
	if !types.IsTemplate(templateID) {
		return nil, &TemplateError{Template: templateID, Message: "unknown template"}
	}

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, &RenderError{Message: "failed to parse embedded templates", Cause: err}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, templateID, buildPage(d, templateID, c)); err != nil {
		return nil, &TemplateError{Template: templateID, Message: "failed to execute template", Cause: err}
	}
	return buf.Bytes(), nil
}

func buildPage(d types.ResumeDraft, templateID string, c types.Customization) pageView {
	p := pageView{
		Template: templateID,
		Style:    StyleFor(c),
		Person:   d.PersonalInfo,
		Summary:  sanitize(d.PersonalInfo.Summary),
		Skills:   nonBlank(d.Skills),
	}
	if img := strings.TrimSpace(d.PersonalInfo.ProfileImage); strings.HasPrefix(img, "data:image/") {
		p.Photo = template.URL(img) //nolint:gosec // restricted to inline image data
	}

	exp := section{ID: "experience", Title: "Experience"}
	for _, e := range d.Experience {
		exp.Entries = append(exp.Entries, entry{
			Heading:     e.Position,
			Subheading:  e.Company,
			Dates:       dateRange(e.StartDate, e.EndDate),
			Description: sanitize(e.Description),
		})
	}
	edu := section{ID: "education", Title: "Education"}
	for _, e := range d.Education {
		extra := ""
		if e.GPA != "" {
			extra = "GPA " + e.GPA
		}
		edu.Entries = append(edu.Entries, entry{
			Heading:    joinNonEmpty(", ", e.Degree, e.Field),
			Subheading: e.Institution,
			Dates:      dateRange(e.StartDate, e.EndDate),
			Extra:      extra,
		})
	}
	act := section{ID: "activities", Title: "Activities"}
	for _, a := range d.Activities {
		act.Entries = append(act.Entries, entry{
			Heading:     a.Title,
			Subheading:  a.Organization,
			Dates:       dateRange(a.StartDate, a.EndDate),
			Description: sanitize(a.Description),
		})
	}
	awd := section{ID: "awards", Title: "Awards"}
	for _, a := range d.Awards {
		awd.Entries = append(awd.Entries, entry{
			Heading:     a.Title,
			Subheading:  a.Issuer,
			Dates:       a.Date,
			Description: sanitize(a.Description),
		})
	}

	for _, s := range []section{exp, edu, act, awd} {
		if len(s.Entries) > 0 {
			p.Sections = append(p.Sections, s)
		}
	}
	return p
}

// sanitize keeps basic formatting from free text and turns line breaks into <br>.
func sanitize(s string) template.HTML {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	clean := descriptionPolicy.Sanitize(s)
	clean = strings.ReplaceAll(clean, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(clean, "\n", "<br>")) //nolint:gosec // sanitized above
}

func dateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start + " – Present"
	case start == "":
		return end
	default:
		return start + " – " + end
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
