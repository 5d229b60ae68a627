package executor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/installez/internal/domain"
	"github.com/doeshing/installez/internal/ports"
)

const maxLineBytes = 1024 * 1024

// pipeGrace is how long output may keep flowing after cancellation before the
// pipes are closed. Grandchildren can inherit them and outlive the killed child.
const pipeGrace = 2 * time.Second

// LaunchError reports a failure to start or communicate with a subprocess.
// A process that ran and exited non-zero is not a LaunchError.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("run %s: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// LocalExecutor runs commands directly on the host, without a shell.
type LocalExecutor struct {
	timeout time.Duration
	env     []string
}

// NewLocalExecutor builds an executor. A zero timeout leaves invocations unbounded.
func NewLocalExecutor(timeout time.Duration) *LocalExecutor {
	return &LocalExecutor{timeout: timeout}
}

// Output implements ports.ProcessExecutor. Only standard output is captured.
func (e *LocalExecutor) Output(ctx context.Context, name string, args ...string) (domain.ProcessResult, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	c := e.command(ctx, name, args...)
	var out bytes.Buffer
	c.Stdout = &out
	// winget prints refresh warnings on stderr that can mention the id
	c.Stderr = io.Discard

	err := c.Run()
	result := domain.ProcessResult{Output: out.String()}
	code, err := e.exitStatus(ctx, c, err)
	result.ExitCode = code
	return result, err
}

// Stream implements ports.ProcessExecutor.
func (e *LocalExecutor) Stream(ctx context.Context, onLine func(domain.OutputLine), name string, args ...string) (domain.InstallAttempt, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	c := e.command(ctx, name, args...)
	stdout, err := c.StdoutPipe()
	if err != nil {
		return domain.InstallAttempt{}, e.launchError(c, err)
	}
	stderr, err := c.StderrPipe()
	if err != nil {
		return domain.InstallAttempt{}, e.launchError(c, err)
	}
	if err := c.Start(); err != nil {
		return domain.InstallAttempt{}, e.launchError(c, err)
	}
	drained := make(chan struct{})
	defer close(drained)
	go closeAfterCancel(ctx, drained, stdout, stderr)

	lines := make(chan domain.OutputLine)
	readErrs := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go scanLines(stdout, domain.StreamStdout, lines, readErrs, &wg)
	go scanLines(stderr, domain.StreamStderr, lines, readErrs, &wg)
	go func() {
		wg.Wait()
		close(lines)
		close(readErrs)
	}()

	var attempt domain.InstallAttempt
	for line := range lines {
		attempt.Lines = append(attempt.Lines, line)
		if onLine != nil {
			onLine(line)
		}
	}

	var readErr error
	for err := range readErrs {
		if readErr == nil {
			readErr = err
		}
	}

	code, err := e.exitStatus(ctx, c, c.Wait())
	attempt.ExitCode = code
	if err != nil {
		return attempt, err
	}
	if readErr != nil {
		return attempt, e.launchError(c, readErr)
	}
	return attempt, nil
}

func scanLines(r io.Reader, stream domain.Stream, out chan<- domain.OutputLine, errs chan<- error, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}
		out <- domain.OutputLine{Stream: stream, Text: text}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		errs <- err
		// keep the pipe drained so the child never blocks on a full buffer
		_, _ = io.Copy(io.Discard, r)
	}
}

func closeAfterCancel(ctx context.Context, drained <-chan struct{}, pipes ...io.Closer) {
	select {
	case <-drained:
		return
	case <-ctx.Done():
	}
	timer := time.NewTimer(pipeGrace)
	defer timer.Stop()
	select {
	case <-drained:
		return
	case <-timer.C:
	}
	for _, p := range pipes {
		_ = p.Close()
	}
}

func (e *LocalExecutor) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	c := exec.CommandContext(ctx, name, args...)
	c.SysProcAttr = sysProcAttr()
	c.WaitDelay = pipeGrace
	if len(e.env) > 0 {
		c.Env = append(os.Environ(), e.env...)
	}
	return c
}

func (e *LocalExecutor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return context.WithCancel(ctx)
}

// exitStatus separates a non-zero exit, which is data, from a launch failure.
func (e *LocalExecutor) exitStatus(ctx context.Context, c *exec.Cmd, err error) (int, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, e.launchError(c, ctxErr)
	}
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, e.launchError(c, err)
}

func (e *LocalExecutor) launchError(c *exec.Cmd, err error) error {
	return &LaunchError{Command: strings.Join(c.Args, " "), Err: err}
}

var _ ports.ProcessExecutor = (*LocalExecutor)(nil)
