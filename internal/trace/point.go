package trace

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a single trace sample
type Point struct {
	X float64
	Y float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// ParsePoint parses a sample line. Accepted forms:
//
//	"y"       single value, X is left to the caller (hasX is false)
//	"x y"     whitespace separated
//	"x,y"     comma separated
//	"x=y"     property style
func ParsePoint(line string) (p Point, hasX bool, err error) {
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return Point{}, false, fmt.Errorf("empty line")
	}

	var parts []string
	switch {
	case strings.ContainsRune(line, '='):
		parts = strings.SplitN(line, "=", 2)
	case strings.ContainsRune(line, ','):
		parts = strings.SplitN(line, ",", 2)
	default:
		parts = strings.Fields(line)
	}

	switch len(parts) {
	case 1:
		y, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return Point{}, false, fmt.Errorf("parse value %q: %w", parts[0], err)
		}
		return Point{Y: y}, false, nil
	case 2:
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return Point{}, false, fmt.Errorf("parse x %q: %w", parts[0], err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return Point{}, false, fmt.Errorf("parse y %q: %w", parts[1], err)
		}
		return Point{X: x, Y: y}, true, nil
	default:
		return Point{}, false, fmt.Errorf("expected 1 or 2 fields, got %d", len(parts))
	}
}
