package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrToolMissing reports that pdftoppm, tesseract or the .doc converter is not installed.
var ErrToolMissing = errors.New("external tool not found")

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, logger *slog.Logger, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands on the host.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, logger *slog.Logger, args ...string) ([]byte, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("running command", "cmd_line", strings.Join(append([]string{name}, args...), " "))

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if errors.Is(err, exec.ErrNotFound) {
		err = fmt.Errorf("%w: %s", ErrToolMissing, name)
	}
	return out.Bytes(), errb.Bytes(), err
}

// ToolError is a failed external command together with the head of its stderr.
type ToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, e.Stderr)
}

func (e *ToolError) Unwrap() error { return e.Err }

// run executes one external tool through the engine's Runner and returns its stdout.
func (e *Engine) run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	start := time.Now()
	out, errb, err := e.runner.Run(ctx, tool, e.logger, args...)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		terr := &ToolError{Tool: tool, Stderr: truncate(strings.TrimSpace(string(errb)), 512), Err: err}
		e.logger.Error("ocr.exec.failed", "tool", tool, "elapsed_ms", elapsed, "error", terr)
		return nil, terr
	}
	e.logger.Debug("ocr.exec.ok", "tool", tool, "elapsed_ms", elapsed, "stdout_bytes", len(out))
	return out, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
