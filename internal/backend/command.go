package backend

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// defaultCommandTimeout bounds external tool invocations so a hung
// process cannot wedge a dispatch forever.
const defaultCommandTimeout = 30 * time.Second

// runCommand executes an external tool and returns its stdout. The call
// is bounded by timeout (or defaultCommandTimeout when zero); any
// non-zero exit is an error carrying the captured stderr.
func runCommand(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error) {
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s error: %w - %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// commandAvailable reports whether an external tool is on PATH. Probed
// fresh each time so tools installed or removed while the process runs
// are noticed.
func commandAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
