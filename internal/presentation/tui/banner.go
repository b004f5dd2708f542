package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Ferret with its version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Warm amber-to-rust gradient
	s1 := termenv.String(`   __                    _   `).Foreground(p.Color("#fbbf24"))
	s2 := termenv.String(`  / _| ___ _ __ _ __ ___| |_ `).Foreground(p.Color("#f59e0b"))
	s3 := termenv.String(` | |_ / _ \ '__| '__/ _ \ __|`).Foreground(p.Color("#f97316"))
	s4 := termenv.String(` |  _|  __/ |  | | |  __/ |_ `).Foreground(p.Color("#ea580c"))
	s5 := termenv.String(` |_|  \___|_|  |_|  \___|\__|`).Foreground(p.Color("#dc2626"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
	fmt.Println(termenv.String(" keyword hunter " + version).Foreground(p.Color("#9ca3af")).Italic())
	fmt.Println()
}
