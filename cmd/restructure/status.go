// File: status.go
// Role: renders jobrunner.RunAll's per-region results as a colorized table.
// The header/summary banner is styled with lipgloss (stacktower's
// StyleTitle/StyleDim pattern in internal/cli/ui.go); each result row's
// status column is colored with fatih/color (uber-go/nilaway's golden-test
// tool: color.NoColor forced off only when writing to a terminal,
// color.New(attr).Fprintln per row) per SPEC_FULL.md's red/yellow/green
// convention.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/cfgforge/restructure/jobrunner"
	"github.com/cfgforge/restructure/rerrors"
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func printResultsTable(w io.Writer, results []jobrunner.Result) {
	color.NoColor = true
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		color.NoColor = false
	}

	fmt.Fprintln(w, styleTitle.Render(fmt.Sprintf("Restructuring results (%d regions)", len(results))))
	fmt.Fprintln(w, styleDim.Render(fmt.Sprintf("%-32s %-16s %10s  %s", "REGION", "STATUS", "DURATION", "DETAIL")))
	for _, r := range results {
		status, attr, detail := classifyResult(r)
		line := fmt.Sprintf("%-32s %-16s %10s  %s", r.Region, status, r.Duration.Round(time.Millisecond), detail)
		mustFprintln(color.New(attr).Fprintln(w, line))
	}
}

func classifyResult(r jobrunner.Result) (status string, attr color.Attribute, detail string) {
	if r.Err == nil {
		return "restructured", color.FgGreen, ""
	}
	if _, ok := rerrors.AsInternalInvariantError(r.Err); ok {
		return "internal-error", color.FgRed, r.Err.Error()
	}
	if re, ok := rerrors.AsRegionError(r.Err); ok {
		switch re.Kind {
		case rerrors.KindStructure, rerrors.KindBudgetExceeded:
			return "error", color.FgRed, r.Err.Error()
		default:
			return "unrestructured", color.FgYellow, r.Err.Error()
		}
	}
	return "error", color.FgRed, r.Err.Error()
}

func mustFprintln(_ int, err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "status table write failed:", err)
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
