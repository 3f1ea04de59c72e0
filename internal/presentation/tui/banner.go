package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner with the running version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Leafy gradient, dark to light.
	lines := []struct {
		text  string
		color string
	}{
		{"  _                           _     _", "#15803d"},
		{" | |__  _ __ __ _ _ __ ___   | |__ | | ___", "#16a34a"},
		{" | '_ \\| '__/ _` | '_ ` _ \\  | '_ \\| |/ _ \\", "#22c55e"},
		{" | |_) | | | (_| | | | | | | | |_) | |  __/", "#4ade80"},
		{" |_.__/|_|  \\__,_|_| |_| |_| |_.__/|_|\\___|", "#86efac"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Println(termenv.String("   v" + v).Foreground(p.Color("#6e7681")))
	}
	fmt.Println()
}
