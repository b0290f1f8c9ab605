package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`   ____      _ _                         `, "#818cf8"},
	{`  / ___|___ | | | ___   __ _ _   _ _   _ `, "#a78bfa"},
	{` | |   / _ \| | |/ _ \ / _' | | | | | | |`, "#c084fc"},
	{` | |__| (_) | | | (_) | (_| | |_| | |_| |`, "#e879f9"},
	{`  \____\___/|_|_|\___/ \__, |\__,_|\__, |`, "#f472b6"},
	{`                          |_|      |___/ `, "#fb7185"},
}

// PrintBanner writes the colloquy banner and version to w.
// Colors degrade to plain text when w is not a color terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  "+version).Faint())
	fmt.Fprintln(w)
}
