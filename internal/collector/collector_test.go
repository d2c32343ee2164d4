package collector

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"os/exec"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mikaelreiersolmoen/tracedog/internal/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrace(t *testing.T, capacity int) *trace.Trace {
	t.Helper()
	tr, err := trace.New("test", capacity)
	require.NoError(t, err)
	return tr
}

func TestRandomWalkSteps(t *testing.T) {
	walk := NewRandomWalk(rand.New(rand.NewPCG(1, 2)))
	fixed := time.UnixMilli(1_700_000_000_000)
	walk.now = func() time.Time { return fixed }

	prev := 0.0
	for i := 0; i < 100; i++ {
		p, err := walk.Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, float64(fixed.UnixMilli()), p.X)
		assert.Less(t, math.Abs(p.Y-prev), 1.0)
		prev = p.Y
	}
}

func TestRandomWalkHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRandomWalk(nil).Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingSource struct {
	n    atomic.Int64
	fail bool
}

func (s *countingSource) Collect(ctx context.Context) (trace.Point, error) {
	n := s.n.Add(1)
	if s.fail && n%2 == 0 {
		return trace.Point{}, errors.New("flaky")
	}
	return trace.Point{X: float64(n), Y: float64(n)}, nil
}

func TestManagerCollectsUntilStopped(t *testing.T) {
	tr := newTrace(t, 5)
	src := &countingSource{}
	m := NewManager(src, tr, time.Millisecond, nil)

	require.NoError(t, m.Start())
	assert.True(t, m.Running())
	assert.Error(t, m.Start())
	assert.Equal(t, StatusRunning, <-m.StatusChan())

	require.Eventually(t, func() bool { return src.n.Load() >= 10 }, time.Second, time.Millisecond)
	require.NoError(t, m.Stop())
	assert.False(t, m.Running())
	assert.Equal(t, StatusStopped, <-m.StatusChan())

	// Stopped means no more samples
	n := src.n.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, src.n.Load())

	assert.Equal(t, 5, tr.Size())
	newest := tr.Newest(1)
	require.Len(t, newest, 1)
	assert.Equal(t, float64(n), newest[0].X)

	require.NoError(t, m.Stop())
}

func TestManagerKeepsGoingAfterErrors(t *testing.T) {
	tr := newTrace(t, 100)
	src := &countingSource{fail: true}
	m := NewManager(src, tr, time.Millisecond, nil)

	require.NoError(t, m.Start())
	require.Eventually(t, func() bool { return tr.Size() >= 5 }, time.Second, time.Millisecond)
	require.NoError(t, m.Stop())

	for _, p := range tr.Points() {
		assert.Equal(t, 1.0, math.Mod(p.X, 2))
	}
}

func TestCommandReaderParsesLines(t *testing.T) {
	tr := newTrace(t, 10)
	c := NewCommandReader(tr, nil, "unused")

	input := strings.Join([]string{
		"1.5",
		"2.5",
		"garbage",
		"10 7",
		"3",
	}, "\n")
	c.ReadFrom(context.Background(), strings.NewReader(input))

	assert.Equal(t, []trace.Point{
		{X: 0, Y: 1.5},
		{X: 1, Y: 2.5},
		{X: 10, Y: 7},
		{X: 11, Y: 3},
	}, tr.Points())
	assert.Equal(t, 1, c.Malformed())
}

func TestCommandReaderRunsCommand(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	tr := newTrace(t, 10)
	c := NewCommandReader(tr, nil, "sh", "-c", "printf '1\\n2\\n3\\n'")

	require.NoError(t, c.Start())
	assert.Equal(t, StatusRunning, <-c.StatusChan())
	assert.Equal(t, StatusStopped, <-c.StatusChan())
	assert.False(t, c.Running())

	assert.Equal(t, []trace.Point{{X: 0, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 3}}, tr.Points())
	require.NoError(t, c.Stop())
}

func TestLoadPropertiesSortsByX(t *testing.T) {
	tr := newTrace(t, 10)
	input := `# samples
3.0=30
1.0=10
2.5 = 25
`
	n, err := LoadProperties(tr, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []trace.Point{{X: 1, Y: 10}, {X: 2.5, Y: 25}, {X: 3, Y: 30}}, tr.Points())
}

func TestLoadPropertiesRejectsNonNumeric(t *testing.T) {
	tr := newTrace(t, 10)
	_, err := LoadProperties(tr, strings.NewReader("a=1\n"))
	assert.Error(t, err)

	_, err = LoadProperties(tr, strings.NewReader("1=b\n"))
	assert.Error(t, err)
	assert.True(t, tr.IsEmpty())
}
