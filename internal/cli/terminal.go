package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cartoflow/gis-copilot/internal/host"
)

// TerminalUI implements host.UserInteraction over a terminal: prompts and
// confirmations on stdin, notices on stderr so piped stdout stays clean.
type TerminalUI struct {
	in          *bufio.Reader
	out         io.Writer
	autoConfirm bool
}

// NewTerminalUI creates a terminal interaction surface. With autoConfirm set
// every proposal is accepted without asking.
func NewTerminalUI(in io.Reader, out io.Writer, autoConfirm bool) *TerminalUI {
	return &TerminalUI{
		in:          bufio.NewReader(in),
		out:         out,
		autoConfirm: autoConfirm,
	}
}

// PromptText asks for a task description. EOF or a blank line means the user
// cancelled.
func (t *TerminalUI) PromptText(_ context.Context) (string, bool) {
	fmt.Fprint(t.out, "Describe the task: ")
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	return line, true
}

// Confirm shows the proposal and asks for a y/N answer.
func (t *TerminalUI) Confirm(_ context.Context, proposal host.Proposal) bool {
	if proposal.Repairing {
		fmt.Fprintln(t.out, "\n--- Repaired code ---")
	} else {
		fmt.Fprintln(t.out, "\n--- Proposed code ---")
	}
	fmt.Fprintln(t.out, proposal.Code)
	fmt.Fprintln(t.out, "---------------------")
	if proposal.Explanation != "" {
		fmt.Fprintf(t.out, "%s\n", proposal.Explanation)
	}
	if len(proposal.UsedLayers) > 0 {
		fmt.Fprintf(t.out, "Layers: %s\n", strings.Join(proposal.UsedLayers, ", "))
	}
	for _, w := range proposal.Warnings {
		fmt.Fprintf(t.out, "warning: %s\n", w)
	}

	if t.autoConfirm {
		fmt.Fprintln(t.out, "Running (auto-confirmed).")
		return true
	}

	fmt.Fprint(t.out, "Run this code? [y/N] ")
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// Notify prints a leveled notice.
func (t *TerminalUI) Notify(level host.Level, message string) {
	fmt.Fprintf(t.out, "%s: %s\n", level, message)
}
