package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cartoflow/gis-copilot/internal/host"
)

func TestTerminalUIPromptText(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "task entered", input: "buffer the rivers layer\n", want: "buffer the rivers layer", wantOK: true},
		{name: "whitespace trimmed", input: "  clip to extent  \n", want: "clip to extent", wantOK: true},
		{name: "blank line cancels", input: "\n", wantOK: false},
		{name: "EOF cancels", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			ui := NewTerminalUI(strings.NewReader(tt.input), &out, false)

			got, ok := ui.PromptText(context.Background())
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalUIConfirm(t *testing.T) {
	proposal := host.Proposal{
		Code:        `print("hello")`,
		Explanation: "Prints a greeting.",
		Warnings:    []string{"overwrites existing output"},
		UsedLayers:  []string{"rivers"},
	}

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "yes spelled out", input: "YES\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "default is no", input: "\n", want: false},
		{name: "EOF is no", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			ui := NewTerminalUI(strings.NewReader(tt.input), &out, false)

			got := ui.Confirm(context.Background(), proposal)
			assert.Equal(t, tt.want, got)

			assert.Contains(t, out.String(), `print("hello")`)
			assert.Contains(t, out.String(), "Prints a greeting.")
			assert.Contains(t, out.String(), "rivers")
			assert.Contains(t, out.String(), "overwrites existing output")
		})
	}
}

func TestTerminalUIAutoConfirm(t *testing.T) {
	var out bytes.Buffer
	ui := NewTerminalUI(strings.NewReader(""), &out, true)

	ok := ui.Confirm(context.Background(), host.Proposal{Code: "pass"})
	assert.True(t, ok)
	assert.Contains(t, out.String(), "auto-confirmed")
}

func TestTerminalUIRepairingHeader(t *testing.T) {
	var out bytes.Buffer
	ui := NewTerminalUI(strings.NewReader("n\n"), &out, false)

	ui.Confirm(context.Background(), host.Proposal{Code: "pass", Repairing: true})
	assert.Contains(t, out.String(), "Repaired code")
}

func TestTerminalUINotify(t *testing.T) {
	var out bytes.Buffer
	ui := NewTerminalUI(strings.NewReader(""), &out, false)

	ui.Notify(host.LevelWarning, "context snapshot unavailable")
	assert.Equal(t, "warning: context snapshot unavailable\n", out.String())
}
