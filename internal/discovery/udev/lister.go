// internal/discovery/udev/lister.go
package udev

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"

	"serial-discovery/internal/model"
)

const (
	// DefaultCommand is the udev management tool used for enumeration
	DefaultCommand = "udevadm"

	maxLineSize = 1024 * 1024
)

// DefaultArgs asks udevadm to export the whole device database
var DefaultArgs = []string{"info", "-e"}

// CommandFunc builds the enumeration process. It matches exec.CommandContext.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Result is the single outcome of one enumeration
type Result struct {
	Ports []model.PortInfo
	Err   error
}

// Lister enumerates serial ports through udevadm
type Lister struct {
	command    string
	args       []string
	byPathDir  string
	newCommand CommandFunc
	logger     *zap.Logger
}

// Option configures a Lister
type Option func(*Lister)

// WithCommand overrides the udevadm binary and its arguments
func WithCommand(name string, args ...string) Option {
	return func(l *Lister) {
		l.command = name
		if len(args) > 0 {
			l.args = args
		}
	}
}

// WithByPathDir overrides the directory used to decide which ports are active
func WithByPathDir(dir string) Option {
	return func(l *Lister) {
		l.byPathDir = dir
	}
}

// WithCommandFunc replaces the process factory
func WithCommandFunc(fn CommandFunc) Option {
	return func(l *Lister) {
		l.newCommand = fn
	}
}

// WithLogger attaches a logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *Lister) {
		l.logger = logger
	}
}

// NewLister creates a lister with the system defaults
func NewLister(opts ...Option) *Lister {
	l := &Lister{
		command:    DefaultCommand,
		args:       DefaultArgs,
		byPathDir:  DefaultByPathDir,
		newCommand: exec.CommandContext,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// List enumerates active serial ports and waits for the result
func (l *Lister) List(ctx context.Context) ([]model.PortInfo, error) {
	result := <-l.ListAsync(ctx)
	return result.Ports, result.Err
}

// ListAsync starts an enumeration and returns a channel that receives
// exactly one Result. Cancelling ctx kills the udevadm process.
func (l *Lister) ListAsync(ctx context.Context) <-chan Result {
	done := make(chan Result, 1)
	go l.run(ctx, &completion{done: done})
	return done
}

// completion delivers the first terminal event and drops the rest
type completion struct {
	once sync.Once
	done chan<- Result
}

func (c *completion) resolve(ports []model.PortInfo) {
	c.once.Do(func() {
		c.done <- Result{Ports: ports}
		close(c.done)
	})
}

func (c *completion) reject(err error) {
	c.once.Do(func() {
		c.done <- Result{Err: err}
		close(c.done)
	})
}

func (l *Lister) run(ctx context.Context, c *completion) {
	startTime := time.Now()

	activeCh := make(chan map[string]struct{}, 1)
	go func() {
		activeCh <- ActiveDevices(l.byPathDir)
	}()

	if err := ctx.Err(); err != nil {
		c.reject(canceledError(err))
		return
	}

	cmd := l.newCommand(ctx, l.command, l.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		c.reject(err)
		return
	}

	if err := cmd.Start(); err != nil {
		c.reject(err)
		return
	}

	parser := NewParser()
	lines := 0

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		parser.Feed(scanner.Text())
		lines++
	}

	if err := scanner.Err(); err != nil {
		c.reject(err)
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.reject(canceledError(ctxErr))
			return
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			c.reject(err)
			return
		}

		// ExitCode is -1 when udevadm was stopped by a signal; what it
		// printed before that still counts.
		if code := exitErr.ExitCode(); code > 0 {
			c.reject(NewDiscoveryError(fmt.Sprintf("process exited with error code: %d", code)))
			return
		}
	}

	active := <-activeCh
	candidates := parser.Ports()

	ports := make([]model.PortInfo, 0, len(candidates))
	for _, port := range candidates {
		if _, ok := active[port.Path]; ok {
			ports = append(ports, port)
		}
	}

	l.logger.Debug("udevadm enumeration completed",
		zap.Int("lines", lines),
		zap.Int("candidates", len(candidates)),
		zap.Int("active_links", len(active)),
		zap.Int("ports", len(ports)),
		zap.Stringer("parser_state", parser.state),
		zap.Duration("duration", time.Since(startTime)),
	)

	c.resolve(ports)
}

func canceledError(err error) error {
	return &DiscoveryError{
		Message:  fmt.Sprintf("serial port enumeration canceled: %v", err),
		Canceled: true,
	}
}
