package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/mikaelreiersolmoen/tracedog/internal/trace"
	"github.com/muesli/reflow/truncate"
)

const (
	indexColumnWidth = 7
	valueColumnWidth = 18
)

// formatValue renders v compactly and cuts it to the column width
func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	return truncate.StringWithTail(s, valueColumnWidth, "…")
}

// FormatRow returns one sample row: optional index, then x and y columns
func FormatRow(index int, p trace.Point, color lipgloss.TerminalColor, showIndex bool) string {
	valueStyle := lipgloss.NewStyle().Foreground(color)

	row := fmt.Sprintf("%-*s %s",
		valueColumnWidth, formatValue(p.X),
		valueStyle.Render(fmt.Sprintf("%*s", valueColumnWidth, formatValue(p.Y))),
	)
	if !showIndex {
		return row
	}
	return indexStyle.Render(fmt.Sprintf("%*d", indexColumnWidth, index)) + " " + row
}

// FormatPlain returns a row without styling, for the clipboard
func FormatPlain(p trace.Point) string {
	return strconv.FormatFloat(p.X, 'g', -1, 64) + "\t" + strconv.FormatFloat(p.Y, 'g', -1, 64)
}
