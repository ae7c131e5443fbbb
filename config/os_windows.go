//go:build windows

package config

import (
	"os"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

// CleanFileName drops characters Windows does not allow in file names.
func CleanFileName(in string) string {
	drop := `<>":/\|?*` + string(os.PathSeparator) + string(os.PathListSeparator)
	out := strings.Map(func(r rune) rune {
		if r < 32 || strings.ContainsRune(drop, r) {
			return -1
		}
		return r
	}, in)
	if len(out) == 0 {
		return "_bad_file_name_"
	}
	return out
}

// EnableColorOutput turns on VT100 sequence processing for console attached
// to stream. Returns false when stream is not a console or mode cannot be set
// (older Windows versions).
func EnableColorOutput(stream *os.File) bool {
	if !term.IsTerminal(int(stream.Fd())) {
		return false
	}
	h := windows.Handle(stream.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
