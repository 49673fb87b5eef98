package sandbox

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartoflow/gis-copilot/internal/host"
)

func pythonOrSkip(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
}

func TestProcessExecuteSuccess(t *testing.T) {
	pythonOrSkip(t)

	p := NewProcess()
	outcome := p.Execute(context.Background(), `print("hello from the sandbox")`, host.CapabilitySet{})

	assert.True(t, outcome.Success)
	assert.Contains(t, outcome.Stdout, "hello from the sandbox")
	assert.Empty(t, outcome.Diagnostic)
	assert.Greater(t, outcome.Duration, time.Duration(0))
}

func TestProcessExecuteFailureCapturesStderrTail(t *testing.T) {
	pythonOrSkip(t)

	p := NewProcess()
	outcome := p.Execute(context.Background(), `raise ValueError("layer not found")`, host.CapabilitySet{})

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Diagnostic, "ValueError")
	assert.Contains(t, outcome.Diagnostic, "layer not found")
}

func TestProcessExecuteTimeout(t *testing.T) {
	pythonOrSkip(t)

	p := NewProcess(WithTimeout(200 * time.Millisecond))
	outcome := p.Execute(context.Background(), "import time\ntime.sleep(5)\n", host.CapabilitySet{})

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Diagnostic, "timed out")
}

func TestProcessExecuteMissingInterpreter(t *testing.T) {
	p := NewProcess(WithInterpreter("/nonexistent/interpreter"))
	outcome := p.Execute(context.Background(), `print("never runs")`, host.CapabilitySet{})

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Diagnostic, "failed to start interpreter")
}

func TestProcessExecuteOutputCap(t *testing.T) {
	pythonOrSkip(t)

	p := NewProcess(WithMaxOutput(256))
	outcome := p.Execute(context.Background(), `print("x" * 10000)`, host.CapabilitySet{})

	require.True(t, outcome.Success)
	assert.LessOrEqual(t, len(outcome.Stdout), 256+len("\n... [output truncated]"))
	assert.Contains(t, outcome.Stdout, "[output truncated]")
}

func TestPrelude(t *testing.T) {
	tests := []struct {
		name string
		caps host.CapabilitySet
		want string
	}{
		{
			name: "empty capability set adds nothing",
			caps: host.CapabilitySet{},
			want: "",
		},
		{
			name: "single module",
			caps: host.CapabilitySet{Modules: []string{"arcpy"}},
			want: "import arcpy\n\n",
		},
		{
			name: "multiple modules preserve order",
			caps: host.CapabilitySet{Modules: []string{"qgis.core", "qgis.utils", "processing"}},
			want: "import qgis.core\nimport qgis.utils\nimport processing\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, prelude(tt.caps))
		})
	}
}

func TestDiagnosticTail(t *testing.T) {
	t.Run("empty stderr", func(t *testing.T) {
		assert.Equal(t, "script exited with a non-zero status", diagnosticTail("   \n"))
	})

	t.Run("short stderr kept whole", func(t *testing.T) {
		assert.Equal(t, "Traceback: boom", diagnosticTail("Traceback: boom\n"))
	})

	t.Run("long stderr keeps tail", func(t *testing.T) {
		long := strings.Repeat("a", 3000) + "NameError: name 'lyr' is not defined"
		got := diagnosticTail(long)
		assert.Len(t, got, diagnosticTailLen)
		assert.True(t, strings.HasSuffix(got, "NameError: name 'lyr' is not defined"))
	})
}

func TestFilterEnvironment(t *testing.T) {
	env := []string{
		"PATH=/usr/bin",
		"HOME=/home/user",
		"API_TOKEN=abc",
		"MY_SECRET=shh",
		"GEMINI_API_KEY=xyz",
		"DB_PASSWORD=pw",
		"AWS_REGION=us-east-1",
		"SSH_AUTH_SOCK=/tmp/agent",
		"LANG=C.UTF-8",
	}

	got := filterEnvironment(env)

	assert.ElementsMatch(t, []string{"PATH=/usr/bin", "HOME=/home/user", "LANG=C.UTF-8"}, got)
}
