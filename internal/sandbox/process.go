// Package sandbox runs generated scripts under an external interpreter. It
// is the host.Sandbox used by the CLI host; desktop plugins bring their own
// in-process execution environment instead.
package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cartoflow/gis-copilot/internal/host"
)

const (
	defaultInterpreter = "python3"
	defaultTimeout     = 120 * time.Second
	defaultMaxOutput   = 64 * 1024
	diagnosticTailLen  = 2000
)

// blockedEnvSubstrings filters credentials out of the child environment.
var blockedEnvSubstrings = []string{"TOKEN", "SECRET", "KEY", "PASSWORD"}

// blockedEnvPrefixes filters cloud and shell credentials.
var blockedEnvPrefixes = []string{"AWS_", "SSH_"}

// Process executes scripts by spawning an interpreter on a temp file.
type Process struct {
	interpreter string
	args        []string
	workDir     string
	timeout     time.Duration
	maxOutput   int
}

// ProcessOption configures a Process.
type ProcessOption func(*Process)

// WithInterpreter overrides the interpreter binary.
func WithInterpreter(path string) ProcessOption {
	return func(p *Process) { p.interpreter = path }
}

// WithArgs adds interpreter arguments placed before the script path.
func WithArgs(args ...string) ProcessOption {
	return func(p *Process) { p.args = args }
}

// WithWorkDir sets the working directory of the child process.
func WithWorkDir(dir string) ProcessOption {
	return func(p *Process) { p.workDir = dir }
}

// WithTimeout bounds one execution.
func WithTimeout(d time.Duration) ProcessOption {
	return func(p *Process) { p.timeout = d }
}

// WithMaxOutput caps the captured bytes per stream.
func WithMaxOutput(n int) ProcessOption {
	return func(p *Process) { p.maxOutput = n }
}

// NewProcess creates a subprocess sandbox with the defaults: python3, 120s
// timeout, 64 KiB output cap per stream.
func NewProcess(opts ...ProcessOption) *Process {
	p := &Process{
		interpreter: defaultInterpreter,
		timeout:     defaultTimeout,
		maxOutput:   defaultMaxOutput,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Execute writes the code to a temp file, prepends the capability prelude,
// and runs the interpreter on it. Every failure mode comes back through the
// Outcome; Execute never returns an error of its own.
func (p *Process) Execute(ctx context.Context, code string, caps host.CapabilitySet) host.Outcome {
	start := time.Now()

	file, err := os.CreateTemp("", "copilot-*.py")
	if err != nil {
		return host.Outcome{
			Diagnostic: fmt.Sprintf("failed to stage script: %v", err),
			Duration:   time.Since(start),
		}
	}
	defer os.Remove(file.Name())

	script := prelude(caps) + code
	if _, err := file.WriteString(script); err != nil {
		file.Close()
		return host.Outcome{
			Diagnostic: fmt.Sprintf("failed to stage script: %v", err),
			Duration:   time.Since(start),
		}
	}
	file.Close()

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := append(append([]string{}, p.args...), file.Name())
	cmd := exec.CommandContext(runCtx, p.interpreter, args...)
	cmd.Env = filterEnvironment(os.Environ())
	if p.workDir != "" {
		if abs, err := filepath.Abs(p.workDir); err == nil {
			cmd.Dir = abs
		}
	}

	var stdout, stderr cappedBuffer
	stdout.limit = p.maxOutput
	stderr.limit = p.maxOutput
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return host.Outcome{
				Diagnostic: fmt.Sprintf("execution timed out after %s", p.timeout),
				Stdout:     stdout.String(),
				Duration:   duration,
			}
		}
		if _, ok := err.(*exec.ExitError); ok {
			return host.Outcome{
				Diagnostic: diagnosticTail(stderr.String()),
				Stdout:     stdout.String(),
				Duration:   duration,
			}
		}
		return host.Outcome{
			Diagnostic: fmt.Sprintf("failed to start interpreter: %v", err),
			Duration:   duration,
		}
	}

	return host.Outcome{
		Success:  true,
		Stdout:   stdout.String(),
		Duration: duration,
	}
}

// prelude renders the import lines for the capability set. It is the only
// implicit code added to a script.
func prelude(caps host.CapabilitySet) string {
	if len(caps.Modules) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, module := range caps.Modules {
		fmt.Fprintf(&sb, "import %s\n", module)
	}
	sb.WriteString("\n")
	return sb.String()
}

// diagnosticTail keeps the last part of stderr, where the traceback ends.
func diagnosticTail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return "script exited with a non-zero status"
	}
	if len(stderr) > diagnosticTailLen {
		return stderr[len(stderr)-diagnosticTailLen:]
	}
	return stderr
}

// filterEnvironment removes credential-bearing variables from the child
// environment.
func filterEnvironment(env []string) []string {
	filtered := make([]string, 0, len(env))
outer:
	for _, entry := range env {
		key, _, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		upper := strings.ToUpper(key)
		for _, sub := range blockedEnvSubstrings {
			if strings.Contains(upper, sub) {
				continue outer
			}
		}
		for _, prefix := range blockedEnvPrefixes {
			if strings.HasPrefix(upper, prefix) {
				continue outer
			}
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

// cappedBuffer accepts writes up to a limit and marks truncation.
type cappedBuffer struct {
	bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if b.Len()+len(p) > b.limit {
		remaining := b.limit - b.Len()
		if remaining > 0 {
			b.Buffer.Write(p[:remaining])
		}
		b.truncated = true
		return len(p), nil
	}
	return b.Buffer.Write(p)
}

func (b *cappedBuffer) String() string {
	if b.truncated {
		return b.Buffer.String() + "\n... [output truncated]"
	}
	return b.Buffer.String()
}
