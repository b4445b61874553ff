package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/resumeapi"
	"github.com/jonathan/cv-builder/internal/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Render a saved résumé to HTML, PDF or plain text",
	Long: "Fetches a saved résumé and writes one file per requested format into --out. " +
		"PDF output needs a local Chrome or Chromium.",
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	exportFormats  []string
	exportTemplate string
	exportOutDir   string
)

// Export formats.
const (
	formatHTML = "html"
	formatPDF  = "pdf"
	formatText = "txt"
)

func init() {
	exportCmd.Flags().StringSliceVarP(&exportFormats, "format", "f", []string{formatHTML}, "Output formats: html, pdf, txt")
	exportCmd.Flags().StringVarP(&exportTemplate, "template", "t", "", "Template id; defaults to the résumé's own")
	exportCmd.Flags().StringVarP(&exportOutDir, "out", "o", ".", "Output directory")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	formats, err := parseFormats(exportFormats)
	if err != nil {
		return err
	}
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}

	saved, err := client.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("could not load résumé %s: %s", args[0], resumeapi.UserMessage(err))
	}
	page, err := renderSaved(saved, exportTemplate)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(exportOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	printer := rendering.PDFPrinter{ChromePath: a.cfg.ChromePath}
	base := filepath.Join(exportOutDir, exportName(saved))

	g, ctx := errgroup.WithContext(cmd.Context())
	written := make([]string, len(formats))
	for i, format := range formats {
		g.Go(func() error {
			data, err := convert(ctx, format, page, printer)
			if err != nil {
				return err
			}
			path := base + "." + format
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			written[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, path := range written {
		a.log.Info().Str("path", path).Msg("exported")
		fmt.Fprintln(cmd.OutOrStdout(), path) //nolint:errcheck
	}
	return nil
}

// renderSaved renders the résumé with its stored look. templateID overrides
// the stored template when set.
func renderSaved(saved types.SavedResume, templateID string) ([]byte, error) {
	d := saved.Data.Normalize()
	if saved.Template != "" {
		d.Template = saved.Template
	}
	c := saved.Customization.WithDefaults()
	return rendering.HTML(d, templateID, c)
}

func convert(ctx context.Context, format string, page []byte, printer rendering.PDFPrinter) ([]byte, error) {
	switch format {
	case formatPDF:
		return printer.Print(ctx, page)
	case formatText:
		text, err := rendering.PlainText(page)
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	default:
		return page, nil
	}
}

func parseFormats(in []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case formatHTML, formatPDF, formatText:
		default:
			return nil, fmt.Errorf("unknown export format %q (use html, pdf or txt)", f)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one export format is required")
	}
	return out, nil
}

// exportName builds a file name from the résumé name, falling back to its id.
func exportName(saved types.SavedResume) string {
	var b strings.Builder
	for _, r := range strings.ToLower(saved.Name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteRune('-')
			}
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		return "resume-" + saved.ID
	}
	return name
}
