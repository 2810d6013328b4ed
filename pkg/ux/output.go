// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the cnnscore CLI.
//
// Styling is applied only when stdout is a terminal; redirected output
// (scripts, log capture) gets plain text.
package ux

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// cnnscore palette - muted lab-notebook blues
var (
	ColorPrimary   = lipgloss.Color("#4C9AFF") // headings, fold banners
	ColorHighlight = lipgloss.Color("#79C0FF") // values the user asked for
	ColorSuccess   = lipgloss.Color("#3FB950") // completed stages
	ColorWarning   = lipgloss.Color("#F4D03F") // degraded defaults
	ColorError     = lipgloss.Color("#E74C3C") // failures
	ColorMuted     = lipgloss.Color("#6E7681") // file paths, side notes
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true),
}

// interactive reports whether stdout is attached to a terminal.
// Overridable in tests.
var interactive = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// render applies a style only for interactive sessions.
func render(style lipgloss.Style, text string) string {
	if !interactive() {
		return text
	}
	return style.Render(text)
}

// Title prints a styled section title.
func Title(text string) {
	fmt.Println(render(Styles.Title, text))
}

// Step prints a pipeline stage banner, e.g. "==> training fold 2/3".
func Step(format string, args ...any) {
	fmt.Println(render(Styles.Bold, "==> "+fmt.Sprintf(format, args...)))
}

// Detail prints an indented, muted detail line under a Step.
func Detail(format string, args ...any) {
	fmt.Println("    " + render(Styles.Muted, fmt.Sprintf(format, args...)))
}

// Success prints a completion line with a check mark.
func Success(format string, args ...any) {
	fmt.Println(render(Styles.Success, "✓ "+fmt.Sprintf(format, args...)))
}

// Warn prints a warning line.
func Warn(format string, args ...any) {
	fmt.Println(render(Styles.Warning, "⚠ "+fmt.Sprintf(format, args...)))
}

// Error prints an error line.
func Error(format string, args ...any) {
	fmt.Println(render(Styles.Error, "✗ "+fmt.Sprintf(format, args...)))
}

// Metric prints a name/value result line, e.g. AUC per series.
func Metric(name string, format string, args ...any) {
	fmt.Printf("    %s %s\n", render(Styles.Muted, name+":"),
		render(Styles.Highlight, fmt.Sprintf(format, args...)))
}
