package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the tablewatch banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{" _        _     _               _       _     ", "#22d3ee"},
		{"| |_ __ _| |__ | | _____      _| |_ ___| |__  ", "#38bdf8"},
		{"| __/ _` | '_ \\| |/ _ \\ \\ /\\ / / __/ __| '_ \\ ", "#60a5fa"},
		{"| || (_| | |_) | |  __/\\ V  V /| || (__| | | |", "#818cf8"},
		{" \\__\\__,_|_.__/|_|\\___| \\_/\\_/  \\__\\___|_| |_|", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
