package integration

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushfile/internal/testutil"
)

func getProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "../.."
	}
	// Walk up until we find go.mod
	for dir != "/" {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		dir = filepath.Dir(dir)
	}
	return "../.."
}

// buildBinary returns PUSHFILE_BINARY, or builds the binary into a temp dir
func buildBinary(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping binary integration test in short mode")
	}
	if binaryPath := os.Getenv("PUSHFILE_BINARY"); binaryPath != "" {
		return binaryPath
	}

	binaryPath := filepath.Join(t.TempDir(), "pushfile-test")
	buildCmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/pushfile")
	buildCmd.Dir = getProjectRoot()
	var buildOut bytes.Buffer
	buildCmd.Stdout = &buildOut
	buildCmd.Stderr = &buildOut
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("Failed to build binary: %v\nOutput: %s", err, buildOut.String())
	}
	return binaryPath
}

// cleanEnviron drops inputs inherited from a surrounding workflow run
func cleanEnviron() []string {
	var environ []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "INPUT_") || strings.HasPrefix(kv, "GITHUB_") || strings.HasPrefix(kv, "RUNNER_DEBUG=") {
			continue
		}
		environ = append(environ, kv)
	}
	return environ
}

type runResult struct {
	stdout string
	stderr string
	code   int
}

func run(t *testing.T, binaryPath, workdir string, vars map[string]string, args ...string) runResult {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = workdir
	cmd.Env = cleanEnviron()
	for k, v := range vars {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr), "unexpected error: %v", err)
		code = exitErr.ExitCode()
	}
	return runResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func TestCLIHelp(t *testing.T) {
	binaryPath := buildBinary(t)

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "help flag",
			args:     []string{"--help"},
			expected: "pushfile",
		},
		{
			name:     "plan help",
			args:     []string{"plan", "--help"},
			expected: "--output",
		},
		{
			name:     "version",
			args:     []string{"version"},
			expected: "pushfile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, binaryPath, t.TempDir(), nil, tt.args...)
			assert.Equal(t, 0, res.code, res.stderr)
			assert.Contains(t, res.stdout, tt.expected)
		})
	}
}

func TestCLIPushLifecycle(t *testing.T) {
	binaryPath := buildBinary(t)
	fake := testutil.NewFakeGitHub(t, "octo", "site", "ghs_integration")
	workdir := t.TempDir()

	vars := map[string]string{
		"INPUT_GITHUB-TOKEN":   fake.Token,
		"INPUT_BRANCH":         "main",
		"INPUT_FILE-PATH":      "status.json",
		"INPUT_COMMIT-MSG":     "Update status",
		"INPUT_ALLOW-REMOVING": "false",
		"GITHUB_REPOSITORY":    "octo/site",
		"GITHUB_API_URL":       fake.URL(),
	}
	local := filepath.Join(workdir, "status.json")

	// Missing input fails before any request
	missing := map[string]string{"GITHUB_API_URL": fake.URL()}
	res := run(t, binaryPath, workdir, missing)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "No input: INPUT_GITHUB-TOKEN")
	assert.Empty(t, fake.Calls())

	// Create
	require.NoError(t, os.WriteFile(local, []byte(`{"ok":true}`), 0o644))
	res = run(t, binaryPath, workdir, vars)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Created status.json\nPushed "+testutil.CommitSHA(1)[:7]+" to main\n", res.stdout)

	// Unchanged
	res = run(t, binaryPath, workdir, vars)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "No changes to push\n", res.stdout)

	// Update
	require.NoError(t, os.WriteFile(local, []byte(`{"ok":false}`), 0o644))
	res = run(t, binaryPath, workdir, vars)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Updated status.json\nPushed "+testutil.CommitSHA(2)[:7]+" to main\n", res.stdout)

	// Removal refused
	require.NoError(t, os.Remove(local))
	res = run(t, binaryPath, workdir, vars)
	assert.Equal(t, 2, res.code)
	_, exists := fake.File("main", "status.json")
	assert.True(t, exists)

	// Removal allowed
	vars["INPUT_ALLOW-REMOVING"] = "true"
	res = run(t, binaryPath, workdir, vars)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Removed status.json\nPushed "+testutil.CommitSHA(3)[:7]+" to main\n", res.stdout)
	_, exists = fake.File("main", "status.json")
	assert.False(t, exists)

	assert.Len(t, fake.Writes(), 3)
}

func TestCLIAuthFailure(t *testing.T) {
	binaryPath := buildBinary(t)
	fake := testutil.NewFakeGitHub(t, "octo", "site", "ghs_integration")
	workdir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workdir, "a.txt"), []byte("a"), 0o644))

	res := run(t, binaryPath, workdir, map[string]string{
		"INPUT_GITHUB-TOKEN":   "revoked",
		"INPUT_BRANCH":         "main",
		"INPUT_FILE-PATH":      "a.txt",
		"INPUT_COMMIT-MSG":     "msg",
		"INPUT_ALLOW-REMOVING": "false",
		"GITHUB_REPOSITORY":    "octo/site",
		"GITHUB_API_URL":       fake.URL(),
	})

	assert.Equal(t, 3, res.code)
	assert.Contains(t, res.stderr, "github-token")
	assert.Empty(t, fake.Writes())
}
