package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/dgnsrekt/contribute_smoke/internal/scenario"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Progress renders a progress bar for a run and implements scenario.Observer.
type Progress struct {
	bar    *progressbar.ProgressBar
	w      io.Writer
	passed int
	failed int
}

// NewProgress creates a progress bar for count scenarios. A nil writer means stderr.
func NewProgress(count int, w io.Writer) *Progress {
	if w == nil {
		w = os.Stderr
	}
	p := &Progress{w: w}
	p.bar = progressbar.NewOptions(count,
		progressbar.OptionSetDescription(p.describe("")),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return p
}

func (p *Progress) describe(current string) string {
	desc := color.CyanString("Smoke: ") +
		color.GreenString("[passed: %d", p.passed) +
		" | " +
		color.RedString("failed: %d]", p.failed)
	if current != "" {
		desc += " " + current
	}
	return desc
}

func (p *Progress) ScenarioStarted(_ string, sc scenario.Scenario) {
	p.bar.Describe(p.describe(sc.Name))
}

func (p *Progress) ScenarioFinished(res scenario.Result) {
	if res.Status == scenario.StatusPassed {
		p.passed++
	} else {
		p.failed++
	}
	p.bar.Describe(p.describe(""))
	_ = p.bar.Add(1)
}

func (p *Progress) RunFinished(scenario.Summary) {
	_ = p.bar.Finish()
}
