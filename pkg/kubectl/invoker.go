package kubectl

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/semaphore"
)

// Invoker runs the kubectl binary. It is the only component in the
// repository that spawns external processes; every launch goes through
// the concurrency permit and the per-call timeout here, so no caller
// can bypass either.
type Invoker struct {
	binary    string
	sem       *semaphore.Weighted
	capacity  int64
	maxOutput int
}

// NewInvoker creates an Invoker with a permit pool of maxConcurrent and
// an output accumulation cap of maxOutputBytes per stream.
func NewInvoker(binary string, maxConcurrent, maxOutputBytes int) *Invoker {
	return &Invoker{
		binary:    binary,
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
		capacity:  int64(maxConcurrent),
		maxOutput: maxOutputBytes,
	}
}

// cappedBuffer accumulates up to max bytes and then keeps draining
// writes without storing them, so the child never blocks on a full pipe
// while we stop growing memory.
type cappedBuffer struct {
	max       int
	buf       bytes.Buffer
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if remaining := b.max - b.buf.Len(); remaining > 0 {
		if len(p) > remaining {
			b.buf.Write(p[:remaining])
			b.truncated = true
		} else {
			b.buf.Write(p)
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	return len(p), nil
}

// Invoke runs one kubectl command. argv is passed element-wise to the
// OS process-creation primitive; no shell is ever involved. The permit
// is released on every exit path. On timeout the whole child process
// group is killed before returning, which matters for drain.
func (iv *Invoker) Invoke(ctx context.Context, argv []string, stdin []byte, timeout time.Duration) (*Outcome, error) {
	if err := iv.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer iv.sem.Release(1)

	cmd := exec.Command(iv.binary, argv...)
	// Own process group so a timeout kill reaches kubectl's children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	stdout := &cappedBuffer{max: iv.maxOutput}
	stderr := &cappedBuffer{max: iv.maxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &ProcessLaunchError{Binary: iv.binary, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		exitCode := 0
		if err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return nil, &ProcessLaunchError{Binary: iv.binary, Err: err}
			}
			exitCode = exitErr.ExitCode()
		}
		return &Outcome{
			ExitCode:  exitCode,
			Stdout:    stdout.buf.String(),
			Stderr:    stderr.buf.String(),
			Truncated: stdout.truncated,
			Duration:  time.Since(start),
		}, nil

	case <-timer.C:
		iv.killGroup(cmd)
		<-done
		return nil, &ProcessTimeoutError{
			Timeout:   timeout,
			Argv:      argv,
			Stdout:    stdout.buf.String(),
			Truncated: stdout.truncated,
		}

	case <-ctx.Done():
		iv.killGroup(cmd)
		<-done
		return nil, ctx.Err()
	}
}

// killGroup terminates the child and everything it spawned.
func (iv *Invoker) killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	// Negative pid addresses the process group created by Setpgid.
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}

// idle reports whether every permit is back in the pool. Used by tests
// to assert permit non-leakage.
func (iv *Invoker) idle() bool {
	if !iv.sem.TryAcquire(iv.capacity) {
		return false
	}
	iv.sem.Release(iv.capacity)
	return true
}
