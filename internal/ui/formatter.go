// Package ui prints run progress and results to the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dgnsrekt/contribute_smoke/internal/registry"
	"github.com/dgnsrekt/contribute_smoke/internal/scenario"
	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

// PrintSummary writes the per-scenario outcome table and every failure line.
func PrintSummary(w io.Writer, sum scenario.Summary) {
	_, _ = fmt.Fprintln(w)
	_, _ = cyan.Fprintln(w, "Contribute smoke results")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 64))
	for _, res := range sum.Results {
		dur := (time.Duration(res.DurationMS) * time.Millisecond).Round(time.Millisecond)
		switch res.Status {
		case scenario.StatusPassed:
			_, _ = green.Fprintf(w, "✓ %-36s", res.Scenario)
		case scenario.StatusFailed:
			_, _ = red.Fprintf(w, "✗ %-36s", res.Scenario)
		default:
			_, _ = yellow.Fprintf(w, "! %-36s", res.Scenario)
		}
		_, _ = fmt.Fprintf(w, " %-7s %s\n", res.Status, dur)
	}
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 64))

	for _, res := range sum.Results {
		if res.Status == scenario.StatusPassed {
			continue
		}
		_, _ = fmt.Fprintln(w)
		_, _ = red.Fprintf(w, "%s\n", res.Scenario)
		if res.Error != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", res.Error)
		}
		for _, f := range res.Failures {
			_, _ = fmt.Fprintf(w, "  - %s\n", f)
		}
		if res.SnapshotID != "" {
			_, _ = fmt.Fprintf(w, "  screenshot: %s\n", res.SnapshotID)
		}
	}

	_, _ = fmt.Fprintln(w)
	switch {
	case sum.Cancelled:
		_, _ = yellow.Fprintf(w, "Run cancelled after %d scenario(s)\n", len(sum.Results))
	case sum.OK():
		_, _ = green.Fprintf(w, "All %d scenario(s) passed\n", len(sum.Results))
	default:
		_, _ = red.Fprintf(w, "%d failed, %d errored, %d passed\n", sum.Failed, sum.Errored, sum.Passed)
	}
}

// PrintScenarios lists scenarios with their tags.
func PrintScenarios(w io.Writer, scenarios []scenario.Scenario) {
	for _, sc := range scenarios {
		_, _ = cyan.Fprintf(w, "%-28s", sc.Name)
		_, _ = fmt.Fprintf(w, " [%s] %s\n", strings.Join(sc.Tags, ","), sc.Description)
	}
}

// PrintRegistry lists every locator and expected destination.
func PrintRegistry(w io.Writer, reg *registry.Registry) {
	printLinks := func(title string, links []registry.LinkSpec) {
		_, _ = cyan.Fprintf(w, "%s (%d)\n", title, len(links))
		for _, l := range links {
			_, _ = fmt.Fprintf(w, "  %-60s %s\n", l.Locator, l.Suffix)
		}
	}
	printLinks("header links", reg.Contribute.Header.Links)
	printLinks("footer links", reg.Contribute.Footer)
	printLinks("major links", reg.Contribute.MajorLinks)

	_, _ = cyan.Fprintf(w, "signup fields (%d)\n", len(reg.Signup.Fields))
	for _, f := range reg.Signup.Fields {
		_, _ = fmt.Fprintf(w, "  %s\n", f.Locator)
	}
}

// PrintHistory lists stored results, newest last.
func PrintHistory(w io.Writer, results []scenario.Result) {
	if len(results) == 0 {
		_, _ = yellow.Fprintln(w, "No results recorded")
		return
	}
	for _, res := range results {
		c := green
		switch res.Status {
		case scenario.StatusFailed:
			c = red
		case scenario.StatusError:
			c = yellow
		}
		_, _ = fmt.Fprintf(w, "%s  ", res.StartedAt.Local().Format("2006-01-02 15:04:05"))
		_, _ = c.Fprintf(w, "%-7s", res.Status)
		_, _ = fmt.Fprintf(w, " %-28s %s\n", res.Scenario, res.RunID)
	}
}
