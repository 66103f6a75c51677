package minilog

import "os"

// isTerminal is a best-effort check used only to decide whether to emit
// ANSI color codes; it never affects what gets logged.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
