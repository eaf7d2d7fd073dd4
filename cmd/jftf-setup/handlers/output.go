package handlers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jftf/jftf-setup/internal/provisioning"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorDim    = lipgloss.Color("#6b7280")

	titleStyle   = lipgloss.NewStyle().Bold(true)
	readyStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	failedStyle  = lipgloss.NewStyle().Foreground(colorRed)
	warningStyle = lipgloss.NewStyle().Foreground(colorYellow)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	warnMark  = "[??]"
	skipMark  = "[--]"
)

func printHeader(w io.Writer, title string) {
	fmt.Fprintf(w, "  %s\n", titleStyle.Render(title))
	fmt.Fprintln(w, "  "+strings.Repeat("═", len(title)))
}

func printRow(w io.Writer, indicator, name, extra string) {
	if extra != "" {
		fmt.Fprintf(w, "  %s  %-20s %s\n", indicator, name, extra)
		return
	}
	fmt.Fprintf(w, "  %s  %s\n", indicator, name)
}

func statusIndicator(status provisioning.PhaseStatus) string {
	switch status {
	case provisioning.PhaseCompleted:
		return readyStyle.Render(checkMark)
	case provisioning.PhaseWarned:
		return warningStyle.Render(warnMark)
	case provisioning.PhaseSkipped:
		return dimStyle.Render(skipMark)
	default:
		return failedStyle.Render(crossMark)
	}
}

// printResults renders the phase outcomes of a run.
func printResults(w io.Writer, results []provisioning.PhaseResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w)
	printHeader(w, "Setup summary")
	for _, r := range results {
		extra := string(r.Status)
		if r.Status != provisioning.PhaseSkipped {
			extra += dimStyle.Render(fmt.Sprintf(" (%s)", r.Duration.Round(time.Millisecond)))
		}
		printRow(w, statusIndicator(r.Status), r.Phase, extra)
	}
	fmt.Fprintln(w)
}
