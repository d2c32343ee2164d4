package ui

import (
	"strings"
	"testing"

	"github.com/mikaelreiersolmoen/tracedog/internal/trace"
	"github.com/stretchr/testify/assert"
)

func TestFormatValueTruncates(t *testing.T) {
	assert.Equal(t, "1.5", formatValue(1.5))
	assert.Equal(t, "1700000000123", formatValue(1700000000123))
	long := formatValue(1e-10 / 3)
	assert.LessOrEqual(t, len([]rune(long)), valueColumnWidth)
	assert.True(t, strings.HasSuffix(long, "…"))
}

func TestFormatRow(t *testing.T) {
	row := FormatRow(3, trace.Point{X: 1, Y: 2}, colorFlat, false)
	assert.True(t, strings.HasPrefix(row, "1 "))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(row), "2"))

	withIndex := FormatRow(3, trace.Point{X: 1, Y: 2}, colorFlat, true)
	assert.Contains(t, withIndex, "3")
	assert.Greater(t, len(withIndex), len(row))
}

func TestTrendColor(t *testing.T) {
	assert.Equal(t, colorFlat, TrendColor(0, 5, false))
	assert.Equal(t, colorRising, TrendColor(1, 5, true))
	assert.Equal(t, colorFalling, TrendColor(5, 1, true))
	assert.Equal(t, colorFlat, TrendColor(5, 5, true))
}
