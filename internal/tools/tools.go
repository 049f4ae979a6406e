// Package tools wraps the external binaries used for integrity checks and
// format conversion. A missing binary is never an error: checks degrade to
// NotApplicable and the scanner carries on.
package tools

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"ludex/internal/errs"
)

var signalTerminate = syscall.SIGTERM

// IntegrityStatus is the outcome of an external integrity check.
type IntegrityStatus int

const (
	// IntegrityNotApplicable means no checker handles the file, or the
	// required binary is not installed.
	IntegrityNotApplicable IntegrityStatus = iota
	// IntegrityPassed means the external tool confirmed the dump.
	IntegrityPassed
	// IntegrityFailed means the external tool reported corruption.
	IntegrityFailed
)

func (s IntegrityStatus) String() string {
	switch s {
	case IntegrityPassed:
		return "passed"
	case IntegrityFailed:
		return "failed"
	default:
		return "not applicable"
	}
}

// IntegrityResult carries the check outcome plus whatever the tool printed,
// kept for the entry's error column when the check fails.
type IntegrityResult struct {
	Status IntegrityStatus
	Detail string
}

// Verifier checks one file with an external tool. Supports scopes the check
// to a console family as well as an extension: shared extensions like .iso
// must not be judged by a tool that only understands one family's layout.
type Verifier interface {
	Name() string
	Supports(system, path string) bool
	Verify(ctx context.Context, path string) IntegrityResult
}

// Executor abstracts command execution so tests can fake tool output.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures a tool wrapper.
type Option func(*options)

type options struct {
	exec    Executor
	timeout time.Duration
}

// WithExecutor injects a custom executor, used by tests.
func WithExecutor(exec Executor) Option {
	return func(o *options) { o.exec = exec }
}

// WithTimeout bounds each tool invocation. Zero means no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) { o.timeout = timeout }
}

func buildOptions(opts []Option) options {
	built := options{exec: commandExecutor{}}
	for _, opt := range opts {
		opt(&built)
	}
	return built
}

// registry tracks in-flight tool processes so a global cancel can reach
// them even when the owning context is not available.
var registry = struct {
	sync.Mutex
	procs map[*exec.Cmd]struct{}
}{procs: map[*exec.Cmd]struct{}{}}

func registerProcess(cmd *exec.Cmd) {
	registry.Lock()
	registry.procs[cmd] = struct{}{}
	registry.Unlock()
}

func unregisterProcess(cmd *exec.Cmd) {
	registry.Lock()
	delete(registry.procs, cmd)
	registry.Unlock()
}

// CancelAll kills every running tool process. Returns true when at least one
// process was signalled.
func CancelAll() bool {
	registry.Lock()
	procs := make([]*exec.Cmd, 0, len(registry.procs))
	for cmd := range registry.procs {
		procs = append(procs, cmd)
	}
	registry.Unlock()

	cancelled := false
	for _, cmd := range procs {
		if cmd.Process == nil {
			continue
		}
		if err := cmd.Process.Kill(); err == nil {
			cancelled = true
			continue
		}
		if err := cmd.Process.Signal(signalTerminate); err == nil {
			cancelled = true
		}
	}
	return cancelled
}

// commandExecutor runs binaries with os/exec, combining stdout and stderr so
// failure detail survives a nonzero exit.
type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	registerProcess(cmd)
	defer unregisterProcess(cmd)
	return cmd.CombinedOutput()
}

func runWithTimeout(ctx context.Context, opts options, binary string, args []string) ([]byte, error) {
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	return opts.exec.Run(ctx, binary, args)
}

func binaryAvailable(binary string) bool {
	if strings.TrimSpace(binary) == "" {
		return false
	}
	_, err := exec.LookPath(binary)
	return err == nil
}

func toolError(tool, operation string, output []byte, err error) error {
	message := strings.TrimSpace(string(output))
	if message == "" {
		message = "no output"
	}
	return errs.Wrap(errs.ErrExternalTool, tool, operation, message, err)
}
