// Package integration provides integration tests for citeline commands.
package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

var (
	citelineBinary     string
	citelineBinaryOnce sync.Once
	citelineBinaryErr  error
)

// moduleRoot returns the repository root of this module.
func moduleRoot() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	return filepath.Dir(filepath.Dir(filepath.Dir(filename)))
}

// getCitelineBinary builds the citeline binary once and returns its path.
func getCitelineBinary(t *testing.T) string {
	t.Helper()
	citelineBinaryOnce.Do(func() {
		root := moduleRoot()
		if root == "" {
			citelineBinaryErr = os.ErrInvalid
			return
		}

		tmpDir, err := os.MkdirTemp("", "citeline-test-*")
		if err != nil {
			citelineBinaryErr = err
			return
		}
		citelineBinary = filepath.Join(tmpDir, "citeline")

		cmd := exec.Command("go", "build", "-o", citelineBinary, "./cmd/citeline")
		cmd.Dir = root
		if output, err := cmd.CombinedOutput(); err != nil {
			citelineBinaryErr = fmt.Errorf("%w: %s", err, output)
		}
	})
	if citelineBinaryErr != nil {
		t.Fatalf("failed to build citeline: %v", citelineBinaryErr)
	}
	return citelineBinary
}

// runCiteline executes citeline in dir and returns stdout. Stderr carries
// logs and is included in the error on failure.
func runCiteline(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getCitelineBinary(t), args...)
	cmd.Dir = dir
	// Keep the user's global config out of the test.
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+filepath.Join(dir, ".config-home"))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("%w\nstderr: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
