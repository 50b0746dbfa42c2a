package common

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// SupportsColor honours NO_COLOR, --no-color and dumb terminals.
func SupportsColor(w io.Writer, noColor bool) bool {
	if noColor || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	if !IsTerminal(w) {
		return false
	}
	termName := strings.TrimSpace(strings.ToLower(os.Getenv("TERM")))
	return termName != "" && termName != "dumb"
}
