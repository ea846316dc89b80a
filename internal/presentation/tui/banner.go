package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the wayfarer ASCII banner with a warm gradient.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`                          __                       `, "#818cf8"},
		{` __  _  ______ ___.__._/ ____\____ _______   ____  `, "#a78bfa"},
		{` \ \/ \/ /\__  \<   |  |\   __\\__  \\_  __ \_/ __ \ `, "#c084fc"},
		{`  \     /  / __ \\___  | |  |   / __ \|  | \/\  ___/ `, "#e879f9"},
		{`   \/\_/  (____  / ____| |__|  (____  /__|    \___  >`, "#f472b6"},
		{`               \/\/                 \/            \/ `, "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
