package collector

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/magiconair/properties"
	"github.com/mikaelreiersolmoen/tracedog/internal/trace"
)

// LoadProperties reads a properties file of "x=y" pairs and adds the points
// to tr sorted by X. It returns the number of points added.
func LoadProperties(tr *trace.Trace, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read properties: %w", err)
	}

	props := properties.NewProperties()
	props.DisableExpansion = true
	if err := props.Load(data, properties.UTF8); err != nil {
		return 0, fmt.Errorf("parse properties: %w", err)
	}

	points := make([]trace.Point, 0, props.Len())
	for _, key := range props.Keys() {
		x, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return 0, fmt.Errorf("parse x %q: %w", key, err)
		}
		value, _ := props.Get(key)
		y, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("parse y for %q: %w", key, err)
		}
		points = append(points, trace.Point{X: x, Y: y})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].X < points[j].X
	})
	tr.AddBatch(points)
	return len(points), nil
}
