package output

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// ASCIIEnv forces ASCII symbols when set to "1".
const ASCIIEnv = "VERSIONLOG_ASCII"

// Capabilities describes what the terminal behind a writer supports.
type Capabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	Width           int
}

// DetectCapabilities inspects w. Writers that are not a terminal file
// (buffers, pipes) report no capabilities.
func DetectCapabilities(w io.Writer) Capabilities {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return Capabilities{}
	}

	width := 0
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
		width = cols
	}
	return Capabilities{
		IsTTY:           true,
		SupportsColor:   os.Getenv("NO_COLOR") == "",
		SupportsUnicode: os.Getenv(ASCIIEnv) != "1",
		Width:           width,
	}
}

// SpinnerCharSet picks a spinner.CharSets index.
// Unicode: braille dots (14). ASCII: | / - \ (9).
func SpinnerCharSet(caps Capabilities) int {
	if caps.SupportsUnicode {
		return 14
	}
	return 9
}

// NewSpinner returns a stopped spinner writing to w, or nil when w is not
// a terminal. The Start/Stop helpers accept nil.
func NewSpinner(w io.Writer, suffix string) *spinner.Spinner {
	caps := DetectCapabilities(w)
	if !caps.IsTTY {
		return nil
	}
	return spinner.New(spinner.CharSets[SpinnerCharSet(caps)], 100*time.Millisecond,
		spinner.WithWriter(w),
		spinner.WithSuffix(suffix),
		spinner.WithHiddenCursor(true),
	)
}

// StartSpinner starts s if it is non-nil.
func StartSpinner(s *spinner.Spinner) {
	if s != nil {
		s.Start()
	}
}

// StopSpinner stops s if it is non-nil.
func StopSpinner(s *spinner.Spinner) {
	if s != nil {
		s.Stop()
	}
}
