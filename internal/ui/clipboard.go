package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/mikaelreiersolmoen/tracedog/internal/trace"
)

// copyToClipboard is swapped out in tests
var copyToClipboard = clipboard.WriteAll

func copyPoints(points []trace.Point) error {
	if len(points) == 0 {
		return fmt.Errorf("nothing to copy")
	}
	lines := make([]string, len(points))
	for i, p := range points {
		lines[i] = FormatPlain(p)
	}
	return copyToClipboard(strings.Join(lines, "\n"))
}
