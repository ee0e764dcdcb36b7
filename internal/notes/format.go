package notes

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ariel-frischer/versionlog/internal/record"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// LevelStyle defines the color and icon for a bump level.
type LevelStyle struct {
	Color *color.Color
	Icon  string
}

// levelStyles maps bump levels to their terminal styling.
var levelStyles = map[record.Level]LevelStyle{
	record.Major: {Color: color.New(color.FgRed, color.Bold), Icon: "●"},
	record.Minor: {Color: color.New(color.FgBlue), Icon: "◆"},
	record.Patch: {Color: color.New(color.FgGreen), Icon: "·"},
}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
	Limit    int  // Maximum number of releases to show (0 = all)
}

// FormatTerminal writes the tree to w with terminal styling, newest first.
func FormatTerminal(t *Tree, w io.Writer, opts FormatOptions) error {
	releases := t.Releases()
	if len(releases) == 0 {
		_, err := fmt.Fprintln(w, "No releases recorded.")
		return err
	}
	if opts.Limit > 0 && len(releases) > opts.Limit {
		releases = releases[:opts.Limit]
	}

	width := resolveWidth(opts.MaxWidth)
	lastMajor := -1
	for _, rel := range releases {
		if rel.Version.Major != lastMajor {
			if err := writeMajorHeader(rel.Version.Major, w, opts, lastMajor >= 0); err != nil {
				return err
			}
			lastMajor = rel.Version.Major
		}
		if err := writeRelease(rel, w, opts, width); err != nil {
			return fmt.Errorf("formatting %s: %w", rel.Version, err)
		}
	}
	return nil
}

// writeMajorHeader writes the header line for a major version.
func writeMajorHeader(major int, w io.Writer, opts FormatOptions, addSeparator bool) error {
	if addSeparator {
		fmt.Fprintln(w)
	}
	header := fmt.Sprintf("v%d.x", major)

	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

// writeRelease writes one release line with optional wrapping.
func writeRelease(rel Release, w io.Writer, opts FormatOptions, width int) error {
	rec := rel.Record
	text := describe(rec)
	if rec.Author != "" {
		text += " (" + rec.Author + ")"
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "  %s [%s] %s %s\n", rel.Version, rec.Type, releaseDate(rec), text)
		return err
	}

	style, ok := levelStyles[rec.Type]
	if !ok {
		style = levelStyles[record.Patch]
	}
	colored := style.Color.SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	prefix := fmt.Sprintf("  %s %s ", style.Icon, rel.Version)
	wrapped := wrapText(text, width-len(prefix)-len(dateLayout)-1, strings.Repeat(" ", len(prefix)))
	_, err := fmt.Fprintf(w, "  %s %s %s %s\n", colored(style.Icon), colored(rel.Version.String()), dim(releaseDate(rec)), wrapped)
	return err
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}
