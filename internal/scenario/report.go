package scenario

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgnsrekt/contribute_smoke/internal/notify"
)

// WriteReport writes a markdown summary of sum into dir and returns its path.
func WriteReport(dir string, sum Summary) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("contribute-smoke-%s.md", sum.StartedAt.UTC().Format("20060102T150405Z"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	_, _ = fmt.Fprintln(w, "# Contribute Smoke Test Report")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "- Run ID: `%s`\n", sum.RunID)
	_, _ = fmt.Fprintf(w, "- Run timestamp (UTC): `%s`\n", sum.StartedAt.UTC().Format(time.RFC3339))
	if sum.Mode != "" {
		_, _ = fmt.Fprintf(w, "- Session mode: `%s`\n", sum.Mode)
	}
	_, _ = fmt.Fprintf(w, "- Duration: `%s`\n", sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "- Passed: `%d`, failed: `%d`, errored: `%d`\n", sum.Passed, sum.Failed, sum.Errored)
	if sum.Cancelled {
		_, _ = fmt.Fprintln(w, "- Run was cancelled before every scenario ran")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "## Scenarios")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "| Scenario | Status | Duration (ms) | Detail |")
	_, _ = fmt.Fprintln(w, "| --- | --- | --- | --- |")
	for _, res := range sum.Results {
		detail := ""
		switch res.Status {
		case StatusFailed:
			detail = fmt.Sprintf("%d failure(s)", len(res.Failures))
		case StatusError:
			detail = "`" + res.ErrorCode + "`"
		}
		_, _ = fmt.Fprintf(w, "| `%s` | %s | %d | %s |\n", res.Scenario, res.Status, res.DurationMS, detail)
	}

	for _, res := range sum.Results {
		if res.Status == StatusPassed {
			continue
		}
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "### %s\n\n", res.Scenario)
		if len(res.Failures) > 0 {
			for _, failure := range res.Failures {
				_, _ = fmt.Fprintf(w, "- %s\n", failure)
			}
		} else {
			_, _ = fmt.Fprintf(w, "- %s\n", res.Error)
		}
		if res.SnapshotID != "" {
			_, _ = fmt.Fprintf(w, "- Screenshot: `%s`\n", res.SnapshotID)
		}
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return path, nil
}

// FailureMessage renders a plain-text notification body for sum.
func FailureMessage(sum Summary) notify.Message {
	bad := sum.Failed + sum.Errored
	msg := notify.Message{
		Title: fmt.Sprintf("contribute smoke: %d of %d scenarios failed", bad, len(sum.Results)),
		Tags:  []string{"warning"},
	}
	var b strings.Builder
	for _, res := range sum.Results {
		if res.Status == StatusPassed {
			continue
		}
		fmt.Fprintf(&b, "%s (%s): %s\n", res.Scenario, res.Status, res.Error)
	}
	if sum.Cancelled {
		b.WriteString("run cancelled\n")
	}
	msg.Body = strings.TrimRight(b.String(), "\n")
	return msg
}

// NotifyObserver posts a notification when a run does not pass.
type NotifyObserver struct {
	Endpoint string
	Client   *http.Client
	Timeout  time.Duration
}

func (n *NotifyObserver) ScenarioStarted(string, Scenario) {}

func (n *NotifyObserver) ScenarioFinished(Result) {}

func (n *NotifyObserver) RunFinished(sum Summary) {
	if sum.OK() || n.Endpoint == "" {
		return
	}
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := notify.Send(ctx, n.Client, n.Endpoint, FailureMessage(sum)); err != nil {
		slog.Warn("failure notification not sent", "endpoint", n.Endpoint, "error", err)
		return
	}
	slog.Info("failure notification sent", "endpoint", n.Endpoint, "run_id", sum.RunID)
}

// ReportObserver writes a markdown report into Dir when a run finishes.
type ReportObserver struct {
	Dir string
	// LastPath is the most recently written report.
	LastPath string
}

func (r *ReportObserver) ScenarioStarted(string, Scenario) {}

func (r *ReportObserver) ScenarioFinished(Result) {}

func (r *ReportObserver) RunFinished(sum Summary) {
	if r.Dir == "" {
		return
	}
	path, err := WriteReport(r.Dir, sum)
	if err != nil {
		slog.Warn("run report not written", "dir", r.Dir, "error", err)
		return
	}
	r.LastPath = path
	slog.Info("run report written", "path", path)
}
