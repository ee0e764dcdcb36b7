// Package output provides terminal output formatting utilities for the versionlog CLI.
// This package is designed to have minimal dependencies to avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintSuccess prints a green checkmark followed by the message.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), message)
}

// PrintSkipped prints a dim note for a step that had nothing to do.
func PrintSkipped(out io.Writer, message string) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", dim("-"), dim(message))
}

// PrintVersion prints a version number, highlighted unless plain is set.
func PrintVersion(out io.Writer, label, version string, plain bool) {
	if plain {
		fmt.Fprintln(out, version)
		return
	}
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", label, cyan(version))
}

// Row is one line of a two-column listing.
type Row struct {
	Key   string
	Value string
	Note  string
}

// PrintRows prints rows with keys padded to a common width. Notes are
// rendered dim after the value.
func PrintRows(out io.Writer, rows []Row) {
	width := 0
	for _, r := range rows {
		if len(r.Key) > width {
			width = len(r.Key)
		}
	}

	dim := color.New(color.Faint).SprintFunc()
	for _, r := range rows {
		line := fmt.Sprintf("  %-*s  %s", width, r.Key, r.Value)
		if r.Note != "" {
			line += "  " + dim(r.Note)
		}
		fmt.Fprintln(out, strings.TrimRight(line, " "))
	}
}

// PrintSectionHeader prints a bold section title followed by a rule.
func PrintSectionHeader(out io.Writer, title string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s\n%s\n", bold(title), strings.Repeat("─", len(title)))
}
