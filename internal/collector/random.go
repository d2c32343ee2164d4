package collector

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/mikaelreiersolmoen/tracedog/internal/trace"
)

// RandomWalk produces time-stamped samples whose value moves up or down by a
// random step in [0, 1) on every call.
type RandomWalk struct {
	rng *rand.Rand
	now func() time.Time
	y   float64
}

// NewRandomWalk creates a random walk source. A nil rng uses a time seeded one.
func NewRandomWalk(rng *rand.Rand) *RandomWalk {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &RandomWalk{rng: rng, now: time.Now}
}

// Collect returns the next sample with X set to the current time in milliseconds
func (r *RandomWalk) Collect(ctx context.Context) (trace.Point, error) {
	if err := ctx.Err(); err != nil {
		return trace.Point{}, err
	}
	if r.rng.Float64() >= 0.5 {
		r.y += r.rng.Float64()
	} else {
		r.y -= r.rng.Float64()
	}
	return trace.Point{X: float64(r.now().UnixMilli()), Y: r.y}, nil
}
