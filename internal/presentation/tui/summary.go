package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/dmftio/bethe/pkg/domain"
)

// PrintSummary writes the end-of-run report for a finished state.
func PrintSummary(w io.Writer, state *domain.RunState) {
	if state == nil {
		return
	}
	p := termenv.ColorProfile()

	phase := termenv.String(string(state.Phase))
	switch state.Phase {
	case domain.PhaseConverged:
		phase = phase.Foreground(p.Color("#4ade80")).Bold()
	case domain.PhaseExhausted:
		phase = phase.Foreground(p.Color("#facc15")).Bold()
	case domain.PhaseFailed:
		phase = phase.Foreground(p.Color("#f87171")).Bold()
	default:
		phase = phase.Foreground(p.Color("#94a3b8"))
	}

	fmt.Fprintf(w, "\nrun %s: %s\n", state.RunID, phase)
	fmt.Fprintf(w, "  iterations: %d\n", state.Iteration)
	if len(state.History) > 0 {
		fmt.Fprintf(w, "  last delta change: %.6g\n", state.LastMetric())
	}
	if state.Mu != 0 || state.Occupation != 0 {
		fmt.Fprintf(w, "  mu: %.6g  occupation: %.6g\n", state.Mu, state.Occupation)
	}
	fmt.Fprintln(w)
}
