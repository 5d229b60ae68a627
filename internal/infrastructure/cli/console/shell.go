// Package console implements UI shells for terminals and stdio pipes.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/doeshing/installez/internal/domain"
	"github.com/doeshing/installez/internal/ports"
)

// TerminalShell prints streamed output dimmed, alerts in red and colors each
// summary line by outcome.
type TerminalShell struct {
	mu    sync.Mutex
	out   io.Writer
	errw  io.Writer
	quiet bool

	dim     *color.Color
	alert   *color.Color
	success *color.Color
	notice  *color.Color
	failure *color.Color
}

// NewTerminalShell writes status lines to out and alerts to errw. Quiet hides
// streamed package manager output and keeps only alerts and the summary.
func NewTerminalShell(out, errw io.Writer, quiet bool) *TerminalShell {
	return &TerminalShell{
		out:     out,
		errw:    errw,
		quiet:   quiet,
		dim:     color.New(color.Faint),
		alert:   color.New(color.FgRed, color.Bold),
		success: color.New(color.FgGreen),
		notice:  color.New(color.FgYellow),
		failure: color.New(color.FgRed),
	}
}

func (s *TerminalShell) Emit(line string) {
	if s.quiet {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.dim.Fprintln(s.out, line)
}

func (s *TerminalShell) EmitSummary(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if summary == "" {
		return
	}
	for _, line := range strings.Split(summary, "\n") {
		_, _ = s.colorFor(line).Fprintln(s.out, line)
	}
}

func (s *TerminalShell) Alert(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.alert.Fprintln(s.errw, message)
}

func (s *TerminalShell) colorFor(line string) *color.Color {
	switch {
	case strings.HasPrefix(line, "Successfully installed "):
		return s.success
	case strings.HasPrefix(line, "Failed to install "):
		return s.failure
	default:
		return s.notice
	}
}

// PrintResult renders a per-app table after a batch, for --details.
func PrintResult(out io.Writer, res domain.BatchResult) {
	fmt.Fprintf(out, "Batch %s (%s)\n", res.RequestID, res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
	for _, r := range res.Results {
		fmt.Fprintf(out, "  %-40s %-18s attempts=%d exit=%d\n", r.App, r.Outcome, r.Attempts, r.ExitCode)
	}
}

var _ ports.SummaryShell = (*TerminalShell)(nil)
