package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner shown on interactive runs.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Cool-to-warm gradient, one color per row
	s1 := termenv.String("  _          _   _          ").Foreground(p.Color("#38bdf8"))
	s2 := termenv.String(" | |__   ___| |_| |__   ___ ").Foreground(p.Color("#60a5fa"))
	s3 := termenv.String(" | '_ \\ / _ \\ __| '_ \\ / _ \\").Foreground(p.Color("#818cf8"))
	s4 := termenv.String(" | |_) |  __/ |_| | | |  __/").Foreground(p.Color("#a78bfa"))
	s5 := termenv.String(" |_.__/ \\___|\\__|_| |_|\\___|").Foreground(p.Color("#c084fc"))
	s6 := termenv.String("   semicircular DMFT loop   ").Foreground(p.Color("#e879f9"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}
