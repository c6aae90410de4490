// Package ui holds the pterm helpers used for command output outside the
// interactive monitor.
package ui

import (
	"github.com/pterm/pterm"
)

// DarkTheme selects the light variants of each colour.
var DarkTheme bool

func Green(a any) string {
	if DarkTheme {
		return pterm.LightGreen(a)
	}

	return pterm.Green(a)
}

func Cyan(a any) string {
	if DarkTheme {
		return pterm.LightCyan(a)
	}

	return pterm.Cyan(a)
}

func Yellow(a any) string {
	if DarkTheme {
		return pterm.LightYellow(a)
	}

	return pterm.Yellow(a)
}

func Red(a any) string {
	if DarkTheme {
		return pterm.LightRed(a)
	}

	return pterm.Red(a)
}

func Highlight(a any) string {
	if DarkTheme {
		return pterm.LightWhite(a)
	}

	return pterm.Black(a)
}

// Score colours an overall score by band: green from 80, yellow from 50,
// red below.
func Score(score float64) string {
	s := pterm.Sprintf("%.0f", score)

	switch {
	case score >= 80:
		return Green(s)
	case score >= 50:
		return Yellow(s)
	default:
		return Red(s)
	}
}
