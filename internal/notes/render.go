package notes

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ariel-frischer/versionlog/internal/record"
)

// dateLayout is used for release dates in rendered output.
const dateLayout = "2006-01-02"

// RenderMarkdown writes the tree as a release-notes document, newest
// version first: one section per major, one subsection per minor, one list
// item per record.
//
// The function is idempotent - given the same tree, it produces identical output.
func RenderMarkdown(t *Tree, title string, w io.Writer) error {
	if title == "" {
		title = "Release Notes"
	}
	if _, err := fmt.Fprintf(w, "# %s\n", title); err != nil {
		return fmt.Errorf("rendering header: %w", err)
	}

	if t.Len() == 0 {
		_, err := fmt.Fprintf(w, "\nNo releases recorded.\n")
		return err
	}

	for _, majorNum := range t.MajorKeys() {
		major := t.Majors[majorNum]
		if err := renderMajor(major, w); err != nil {
			return fmt.Errorf("rendering major %d: %w", majorNum, err)
		}
	}
	return nil
}

// RenderMarkdownString is a convenience function that renders to a string.
func RenderMarkdownString(t *Tree, title string) (string, error) {
	var b strings.Builder
	if err := RenderMarkdown(t, title, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderMajor(major *MajorNode, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "\n## %d.x\n", major.Number); err != nil {
		return err
	}

	for _, minorNum := range major.MinorKeys() {
		minor := major.Minors[minorNum]
		if _, err := fmt.Fprintf(w, "\n### %d.%d.x\n\n", major.Number, minor.Number); err != nil {
			return err
		}
		for _, patchNum := range minor.PatchKeys() {
			version := fmt.Sprintf("%d.%d.%d", major.Number, minor.Number, patchNum)
			if _, err := fmt.Fprintln(w, markdownItem(version, minor.Patches[patchNum])); err != nil {
				return err
			}
		}
	}
	return nil
}

// markdownItem formats a single release line.
func markdownItem(version string, rec record.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- **%s** (%s, %s) %s", version, releaseDate(rec), rec.Type, describe(rec))
	if rec.Author != "" {
		fmt.Fprintf(&sb, " _by %s_", rec.Author)
	}
	if rec.Tags != "" {
		fmt.Fprintf(&sb, " `%s`", rec.Tags)
	}
	return sb.String()
}

func releaseDate(rec record.Record) string {
	return time.Unix(rec.Timestamp, 0).UTC().Format(dateLayout)
}

func describe(rec record.Record) string {
	if strings.TrimSpace(rec.Description) == "" {
		return "No description"
	}
	return strings.TrimSpace(rec.Description)
}
