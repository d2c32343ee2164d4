package collector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/mikaelreiersolmoen/tracedog/internal/trace"
	"go.uber.org/zap"
)

const (
	flushInterval = 33 * time.Millisecond // ~30 FPS
	maxBatch      = 100
)

// CommandReader runs an external command and streams the samples it prints,
// one per line, into a trace.
type CommandReader struct {
	name  string
	args  []string
	trace *trace.Trace

	logger     *zap.Logger
	statusChan chan string

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	nextX     float64
	malformed int
}

// NewCommandReader creates a reader for the given command line
func NewCommandReader(tr *trace.Trace, logger *zap.Logger, name string, args ...string) *CommandReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandReader{
		name:       name,
		args:       args,
		trace:      tr,
		logger:     logger.With(zap.String("trace", tr.Name()), zap.String("command", name)),
		statusChan: make(chan string, 10),
	}
}

// Start launches the command
func (c *CommandReader) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		select {
		case <-c.done:
			c.cancel()
		default:
			return fmt.Errorf("command already running")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, c.name, c.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s: %w", c.name, err)
	}

	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.sendStatus(StatusRunning)
	go func() {
		c.readLines(ctx, stdout)
		status := StatusStopped
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			c.logger.Warn("command exited", zap.Error(err))
			status = StatusError
		}
		close(done)
		c.sendStatus(status)
	}()

	c.logger.Info("command started", zap.Strings("args", c.args))
	return nil
}

// Stop kills the command and waits for the reader to finish
func (c *CommandReader) Stop() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Running reports whether the command is still being read
func (c *CommandReader) Running() bool {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Malformed returns the number of lines that could not be parsed
func (c *CommandReader) Malformed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.malformed
}

// StatusChan returns the channel for receiving status updates
func (c *CommandReader) StatusChan() <-chan string {
	return c.statusChan
}

// ReadFrom streams samples from r until EOF or ctx is done.
// It is what Start runs against the command's stdout.
func (c *CommandReader) ReadFrom(ctx context.Context, r io.Reader) {
	c.readLines(ctx, r)
}

func (c *CommandReader) readLines(ctx context.Context, r io.Reader) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			c.logger.Warn("scan failed", zap.Error(err))
		}
	}()

	batch := make([]trace.Point, 0, maxBatch)
	flush := func() {
		if len(batch) > 0 {
			c.trace.AddBatch(batch)
			batch = batch[:0]
		}
	}

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-ticker.C:
			flush()
		case line, ok := <-lines:
			if !ok {
				flush()
				return
			}
			if p, ok := c.parse(line); ok {
				batch = append(batch, p)
				if len(batch) >= maxBatch {
					flush()
				}
			}
		}
	}
}

func (c *CommandReader) parse(line string) (trace.Point, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, hasX, err := trace.ParsePoint(line)
	if err != nil {
		c.malformed++
		c.logger.Debug("skipping line", zap.String("line", line), zap.Error(err))
		return trace.Point{}, false
	}
	if !hasX {
		p.X = c.nextX
	}
	c.nextX = p.X + 1
	return p, true
}

func (c *CommandReader) sendStatus(status string) {
	select {
	case c.statusChan <- status:
	default:
	}
}
