// Package ui styles command-line output with [lipgloss].
//
// A [Palette] is bound to the writer it renders for, so colors are dropped when output is not a terminal.
package ui
