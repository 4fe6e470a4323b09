package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/contribute_smoke/internal/registry"
	"github.com/dgnsrekt/contribute_smoke/internal/scenario"
	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func TestPrintSummaryListsFailures(t *testing.T) {
	sum := scenario.Summary{
		Results: []scenario.Result{
			{Scenario: "footer-section", Status: scenario.StatusPassed, DurationMS: 1200},
			{Scenario: "signup-form-fields-visible", Status: scenario.StatusFailed, Failures: []string{"The field at id_comments is not visible"}, SnapshotID: "abc"},
			{Scenario: "major-link-urls-valid", Status: scenario.StatusError, Error: "NETWORK_ERROR: request failed"},
		},
		Passed: 1, Failed: 1, Errored: 1,
	}
	var buf bytes.Buffer
	PrintSummary(&buf, sum)
	out := buf.String()

	for _, want := range []string{
		"✓ footer-section",
		"✗ signup-form-fields-visible",
		"  - The field at id_comments is not visible",
		"screenshot: abc",
		"NETWORK_ERROR: request failed",
		"1 failed, 1 errored, 1 passed",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("PrintSummary() output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummaryAllPassed(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, scenario.Summary{
		Results: []scenario.Result{{Scenario: "footer-section", Status: scenario.StatusPassed}},
		Passed:  1,
	})
	if !strings.Contains(buf.String(), "All 1 scenario(s) passed") {
		t.Fatalf("PrintSummary() = %q", buf.String())
	}
}

func TestPrintScenariosAndRegistry(t *testing.T) {
	var buf bytes.Buffer
	PrintScenarios(&buf, scenario.All())
	if !strings.Contains(buf.String(), "major-link-urls-valid") || !strings.Contains(buf.String(), "link_check") {
		t.Fatalf("PrintScenarios() = %q", buf.String())
	}

	buf.Reset()
	PrintRegistry(&buf, registry.Default())
	for _, want := range []string{"header links (12)", "footer links (9)", "major links (5)", "signup fields (5)", "id=id_email"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("PrintRegistry() missing %q:\n%s", want, buf.String())
		}
	}
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	PrintHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No results recorded") {
		t.Fatalf("PrintHistory(nil) = %q", buf.String())
	}

	buf.Reset()
	PrintHistory(&buf, []scenario.Result{{RunID: "run-1", Scenario: "tabzilla-links", Status: scenario.StatusFailed, StartedAt: time.Now()}})
	if !strings.Contains(buf.String(), "tabzilla-links") || !strings.Contains(buf.String(), "run-1") {
		t.Fatalf("PrintHistory() = %q", buf.String())
	}
}

func TestProgressCountsOutcomes(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(2, &buf)
	p.ScenarioStarted("run", scenario.Scenario{Name: "footer-section"})
	p.ScenarioFinished(scenario.Result{Scenario: "footer-section", Status: scenario.StatusPassed})
	p.ScenarioStarted("run", scenario.Scenario{Name: "tabzilla-links"})
	p.ScenarioFinished(scenario.Result{Scenario: "tabzilla-links", Status: scenario.StatusFailed})
	p.RunFinished(scenario.Summary{})

	if p.passed != 1 || p.failed != 1 {
		t.Fatalf("passed, failed = %d, %d; want 1, 1", p.passed, p.failed)
	}
	if !strings.Contains(buf.String(), "failed: 1]") {
		t.Fatalf("progress output = %q", buf.String())
	}
}
