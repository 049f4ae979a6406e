package tools

import (
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

// Chdman wraps MAME's chdman binary for CHD verification and extraction.
type Chdman struct {
	binary string
	opts   options
}

// NewChdman constructs a wrapper for the given chdman binary.
func NewChdman(binary string, opts ...Option) *Chdman {
	return &Chdman{binary: strings.TrimSpace(binary), opts: buildOptions(opts)}
}

func (c *Chdman) Name() string { return "chdman" }

// Available reports whether the binary can be resolved.
func (c *Chdman) Available() bool { return binaryAvailable(c.binary) }

// Supports reports whether path is a CHD archive. CHD is not shared between
// console families, so only the extension matters.
func (c *Chdman) Supports(_, path string) bool {
	return isCHD(path)
}

func isCHD(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".chd")
}

// Verify runs "chdman verify" against path. A zero exit or a "verify ok"
// line counts as a pass.
func (c *Chdman) Verify(ctx context.Context, path string) IntegrityResult {
	if !isCHD(path) || !c.Available() {
		return IntegrityResult{Status: IntegrityNotApplicable}
	}
	output, err := runWithTimeout(ctx, c.opts, c.binary, []string{"verify", "-i", path})
	text := strings.TrimSpace(string(output))
	if err == nil || strings.Contains(strings.ToLower(text), "verify ok") {
		return IntegrityResult{Status: IntegrityPassed, Detail: text}
	}
	return IntegrityResult{Status: IntegrityFailed, Detail: text}
}

// CreateCHD compresses a disc image into a CHD archive. Cue sheets and other
// CD track layouts go through "createcd", plain ISOs through "createdvd",
// matching how chdman distinguishes CD and DVD sources.
func (c *Chdman) CreateCHD(ctx context.Context, input, output string) error {
	if !c.Available() {
		return toolError("chdman", "create", nil, exec.ErrNotFound)
	}
	subcommand := "createdvd"
	switch strings.ToLower(filepath.Ext(input)) {
	case ".cue", ".gdi", ".toc":
		subcommand = "createcd"
	}
	out, err := runWithTimeout(ctx, c.opts, c.binary, []string{subcommand, "-i", input, "-o", output})
	if err != nil {
		return toolError("chdman", subcommand, out, err)
	}
	return nil
}

// ExtractPrefix decompresses the first maxBytes of the archived image by
// streaming "chdman extract" to stdout and cutting it off once enough data
// arrived. Used to reach boot records inside CHD archives.
func (c *Chdman) ExtractPrefix(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	if !c.Available() {
		return nil, toolError("chdman", "extract", nil, exec.ErrNotFound)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if c.opts.timeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, c.opts.timeout)
		defer timeoutCancel()
	}

	cmd := exec.CommandContext(ctx, c.binary, "extract", "-i", path, "-o", "-") //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, toolError("chdman", "extract", nil, err)
	}
	registerProcess(cmd)
	defer unregisterProcess(cmd)
	if err := cmd.Start(); err != nil {
		return nil, toolError("chdman", "extract", nil, err)
	}

	buf := make([]byte, maxBytes)
	n, readErr := io.ReadFull(stdout, buf)
	// Stop the tool once the prefix is in hand; a short image is fine.
	cancel()
	_ = cmd.Wait()
	if n == 0 {
		return nil, toolError("chdman", "extract", nil, readErr)
	}
	return buf[:n], nil
}
