package tools

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
)

// DolphinTool wraps dolphin-tool for GameCube and Wii image verification,
// header reads and RVZ conversion.
type DolphinTool struct {
	binary string
	opts   options
}

// RVZOptions tune dolphin-tool convert output.
type RVZOptions struct {
	BlockSize   int
	Compression string
	Level       int
}

func defaultRVZOptions() RVZOptions {
	return RVZOptions{BlockSize: 131072, Compression: "zstd", Level: 5}
}

// NewDolphinTool constructs a wrapper for the given dolphin-tool binary.
func NewDolphinTool(binary string, opts ...Option) *DolphinTool {
	return &DolphinTool{binary: strings.TrimSpace(binary), opts: buildOptions(opts)}
}

func (d *DolphinTool) Name() string { return "dolphin-tool" }

// Available reports whether the binary can be resolved.
func (d *DolphinTool) Available() bool { return binaryAvailable(d.binary) }

// Supports reports whether path is a disc format dolphin-tool should judge.
// RVZ, GCM and WBFS belong to the GameCube and Wii families outright, but a
// plain ISO is shared with the PlayStation families and counts only inside
// the gamecube and wii trees.
func (d *DolphinTool) Supports(system, path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rvz", ".gcm", ".wbfs":
		return true
	case ".iso":
		return strings.EqualFold(system, "gamecube") || strings.EqualFold(system, "wii")
	}
	return false
}

func isDolphinImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rvz", ".iso", ".gcm", ".wbfs":
		return true
	}
	return false
}

// Verify runs "dolphin-tool verify". Exit zero means a confirmed good dump.
func (d *DolphinTool) Verify(ctx context.Context, path string) IntegrityResult {
	if !isDolphinImage(path) || !d.Available() {
		return IntegrityResult{Status: IntegrityNotApplicable}
	}
	output, err := runWithTimeout(ctx, d.opts, d.binary, []string{"verify", "-i", path})
	text := strings.TrimSpace(string(output))
	if err == nil {
		return IntegrityResult{Status: IntegrityPassed, Detail: text}
	}
	return IntegrityResult{Status: IntegrityFailed, Detail: text}
}

// ConvertToRVZ rewrites a disc image as a compressed RVZ archive.
func (d *DolphinTool) ConvertToRVZ(ctx context.Context, input, output string, rvz RVZOptions) error {
	if !d.Available() {
		return toolError("dolphin-tool", "convert", nil, nil)
	}
	if rvz.BlockSize <= 0 {
		rvz = defaultRVZOptions()
	}
	args := []string{
		"convert",
		"-i", input,
		"-o", output,
		"-f", "rvz",
		"-b", strconv.Itoa(rvz.BlockSize),
		"-c", rvz.Compression,
		"--compression_level", strconv.Itoa(rvz.Level),
	}
	out, err := runWithTimeout(ctx, d.opts, d.binary, args)
	if err != nil {
		return toolError("dolphin-tool", "convert", out, err)
	}
	return nil
}

// Header reads the disc header fields dolphin-tool reports: game id,
// internal name and revision, keyed by their lowercased labels.
func (d *DolphinTool) Header(ctx context.Context, path string) (map[string]string, error) {
	if !d.Available() {
		return nil, toolError("dolphin-tool", "header", nil, nil)
	}
	output, err := runWithTimeout(ctx, d.opts, d.binary, []string{"header", "-i", path})
	if err != nil {
		return nil, toolError("dolphin-tool", "header", output, err)
	}
	fields := map[string]string{}
	for _, line := range strings.Split(string(output), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		switch key {
		case "game id", "internal name", "revision":
			fields[key] = strings.TrimSpace(value)
		}
	}
	return fields, nil
}
