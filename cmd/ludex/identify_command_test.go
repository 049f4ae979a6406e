package main

import (
	"path/filepath"
	"testing"
)

func TestIdentifyRejectsUnknownExtension(t *testing.T) {
	env := setupCLITestEnv(t)
	target := writeLibraryFile(t, env, filepath.Join("misc", "notes.txt"), "plain text")

	_, _, err := runCLI(t, []string{"identify", target}, env.configPath)
	if err == nil {
		t.Fatal("expected identify to fail for an unrecognized extension")
	}
	requireContains(t, err.Error(), "no provider recognizes")
}
