package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"video-uploader/internal/pkg/logger"

	"go.uber.org/zap"
)

const maxCapturedStderr = 64 * 1024

var errNonZeroExit = errors.New("non-zero exit")

// Result is the outcome of one external tool invocation. A failed run is a
// value, not a panic or a thrown error; callers branch on OK().
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
	// Err is set when the process could not start, timed out or exited non-zero.
	Err error
}

func (r Result) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Failure summarizes a failed run, including the tail of stderr.
func (r Result) Failure() error {
	if r.OK() {
		return nil
	}
	cause := r.Err
	if cause == nil {
		cause = errNonZeroExit
	}
	tail := strings.TrimSpace(string(r.Stderr))
	if len(tail) > 512 {
		tail = tail[len(tail)-512:]
	}
	if tail == "" {
		return fmt.Errorf("exit code %d: %w", r.ExitCode, cause)
	}
	return fmt.Errorf("exit code %d: %w: %s", r.ExitCode, cause, tail)
}

type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// ExecRunner runs tools as subprocesses. Stdout and stderr are drained into
// buffers so a chatty tool can never block on a full pipe.
type ExecRunner struct {
	Timeout time.Duration
	log     *zap.Logger
}

func NewExecRunner(timeout time.Duration, log *zap.Logger) *ExecRunner {
	return &ExecRunner{Timeout: timeout, log: logger.Named(log, "exec")}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout bytes.Buffer
	stderr := &tailBuffer{limit: maxCapturedStderr}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	err := cmd.Run()
	res := Result{
		ExitCode: 0,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		res.Err = err
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		default:
			res.ExitCode = -1
		}
		if ctx.Err() != nil {
			res.Err = fmt.Errorf("%s killed: %w", name, ctx.Err())
		}
	}

	r.log.Debug("tool finished",
		zap.String("tool", name),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration),
		zap.Error(res.Err))
	return res
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) Bytes() []byte {
	return b.buf
}
