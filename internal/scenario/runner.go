package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/dgnsrekt/contribute_smoke/internal/linkcheck"
	"github.com/dgnsrekt/contribute_smoke/internal/page"
	"github.com/dgnsrekt/contribute_smoke/internal/registry"
	"github.com/dgnsrekt/contribute_smoke/internal/snapshot"
	"github.com/dgnsrekt/contribute_smoke/internal/verify"
	"github.com/google/uuid"
)

const screenshotTimeout = 10 * time.Second

// Status is the outcome of one scenario.
type Status string

const (
	StatusPassed Status = "passed"
	// StatusFailed means the scenario ran to completion and its assertion failed.
	StatusFailed Status = "failed"
	// StatusError means the scenario could not complete.
	StatusError Status = "error"
)

// Result records one scenario execution.
type Result struct {
	RunID      string    `json:"run_id"`
	Scenario   string    `json:"scenario"`
	Status     Status    `json:"status"`
	Failures   []string  `json:"failures,omitempty"`
	Error      string    `json:"error,omitempty"`
	ErrorCode  string    `json:"error_code,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
}

// Summary aggregates a run.
type Summary struct {
	RunID      string    `json:"run_id"`
	Mode       string    `json:"mode,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Results    []Result  `json:"results"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	Errored    int       `json:"errored"`
	Cancelled  bool      `json:"cancelled,omitempty"`
}

// OK reports whether every executed scenario passed and the run finished.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Errored == 0 && !s.Cancelled
}

// ExitCode is 0 for a clean run and 1 otherwise.
func (s Summary) ExitCode() int {
	if s.OK() {
		return 0
	}
	return 1
}

// SessionFactory opens one session per scenario.
type SessionFactory interface {
	NewSession(ctx context.Context) (page.Session, error)
}

// SessionFactoryFunc adapts a function to SessionFactory.
type SessionFactoryFunc func(ctx context.Context) (page.Session, error)

func (f SessionFactoryFunc) NewSession(ctx context.Context) (page.Session, error) { return f(ctx) }

// Observer is told about scenario progress. Calls are made synchronously from
// the goroutine running the scenarios.
type Observer interface {
	ScenarioStarted(runID string, sc Scenario)
	ScenarioFinished(res Result)
	RunFinished(sum Summary)
}

// RecordWriter persists results, typically a storage.JSONLWriter.
type RecordWriter interface {
	Write(record any) error
}

// RunnerOptions wires a Runner.
type RunnerOptions struct {
	Sessions    SessionFactory
	Registry    *registry.Registry
	PageOptions page.Options
	Fetcher     linkcheck.Fetcher
	Mode        string

	// Optional collaborators.
	Screenshots *snapshot.Store
	Results     RecordWriter
	Observers   []Observer
}

// Runner executes scenarios sequentially, each in a fresh session.
type Runner struct {
	opts RunnerOptions
	now  func() time.Time
}

func NewRunner(opts RunnerOptions) *Runner {
	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}
	return &Runner{opts: opts, now: time.Now}
}

// Run executes scenarios in order. A cancelled ctx stops the run before the
// next scenario starts.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) Summary {
	return r.RunWithID(ctx, uuid.NewString(), scenarios)
}

// RunWithID is Run with a caller-chosen run id.
func (r *Runner) RunWithID(ctx context.Context, runID string, scenarios []Scenario) Summary {
	sum := Summary{
		RunID:     runID,
		Mode:      r.opts.Mode,
		StartedAt: r.now().UTC(),
	}
	slog.Info("smoke run start", "run_id", sum.RunID, "scenarios", len(scenarios), "mode", r.opts.Mode)

	for _, sc := range scenarios {
		if ctx.Err() != nil {
			sum.Cancelled = true
			slog.Warn("smoke run cancelled", "run_id", sum.RunID, "error", ctx.Err())
			break
		}
		res := r.RunOne(ctx, sum.RunID, sc)
		sum.Results = append(sum.Results, res)
		switch res.Status {
		case StatusPassed:
			sum.Passed++
		case StatusFailed:
			sum.Failed++
		default:
			sum.Errored++
		}
	}

	sum.FinishedAt = r.now().UTC()
	for _, o := range r.opts.Observers {
		o.RunFinished(sum)
	}
	slog.Info("smoke run finished", "run_id", sum.RunID,
		"passed", sum.Passed, "failed", sum.Failed, "errored", sum.Errored,
		"duration", sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond))
	return sum
}

// RunOne executes a single scenario in its own session. The session is
// closed before RunOne returns, whatever the outcome.
func (r *Runner) RunOne(ctx context.Context, runID string, sc Scenario) Result {
	for _, o := range r.opts.Observers {
		o.ScenarioStarted(runID, sc)
	}
	started := r.now()
	res := Result{RunID: runID, Scenario: sc.Name, StartedAt: started.UTC()}
	logger := slog.With("run_id", runID, "scenario", sc.Name)
	logger.Info("scenario start")

	err := r.execute(ctx, runID, sc, &res)
	classify(&res, err)
	res.DurationMS = r.now().Sub(started).Milliseconds()

	switch res.Status {
	case StatusPassed:
		logger.Info("scenario passed", "duration_ms", res.DurationMS)
	case StatusFailed:
		logger.Warn("scenario failed", "failures", len(res.Failures), "error", res.Error)
	default:
		logger.Error("scenario error", "code", res.ErrorCode, "error", res.Error)
	}

	if r.opts.Results != nil {
		if err := r.opts.Results.Write(res); err != nil {
			logger.Warn("result write failed", "error", err)
		}
	}
	for _, o := range r.opts.Observers {
		o.ScenarioFinished(res)
	}
	return res
}

func (r *Runner) execute(ctx context.Context, runID string, sc Scenario, res *Result) (err error) {
	if r.opts.Sessions == nil {
		return page.NewError(page.CodeSessionUnavailable, "no session factory configured", nil)
	}
	session, err := r.opts.Sessions.NewSession(ctx)
	if err != nil {
		if !page.HasCode(err, page.CodeSessionUnavailable) && ctx.Err() == nil {
			err = page.NewError(page.CodeSessionUnavailable, "open session", err)
		}
		return err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			slog.Warn("session close failed", "scenario", sc.Name, "error", cerr)
		}
	}()
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("scenario panic", "scenario", sc.Name, "panic", rec, "stack", string(debug.Stack()))
			err = fmt.Errorf("scenario panicked: %v", rec)
		}
		if err != nil && ctx.Err() == nil {
			res.SnapshotID = r.captureFailure(ctx, runID, sc, session, err)
		}
	}()

	env := &Env{
		Session:     session,
		Registry:    r.opts.Registry,
		PageOptions: r.opts.PageOptions,
		Fetcher:     r.opts.Fetcher,
	}
	return sc.Run(ctx, env)
}

// captureFailure stores a screenshot of the failing page when both a store
// and a capable session are available.
func (r *Runner) captureFailure(ctx context.Context, runID string, sc Scenario, session page.Session, cause error) string {
	if r.opts.Screenshots == nil {
		return ""
	}
	shooter, ok := session.(page.Screenshotter)
	if !ok {
		return ""
	}
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), screenshotTimeout)
	defer cancel()

	image, err := shooter.Screenshot(shotCtx)
	if err != nil {
		slog.Warn("failure screenshot failed", "scenario", sc.Name, "error", err)
		return ""
	}
	current, _ := session.CurrentURL(shotCtx)

	meta := snapshot.ScreenshotMeta{Scenario: sc.Name, RunID: runID, URL: current, Format: "png"}
	var assertErr *verify.AssertionError
	if errors.As(cause, &assertErr) {
		meta.Failures = assertErr.Failures
	} else {
		meta.Failures = []string{cause.Error()}
	}
	saved, err := r.opts.Screenshots.Save(meta, image)
	if err != nil {
		slog.Warn("failure screenshot save failed", "scenario", sc.Name, "error", err)
		return ""
	}
	slog.Info("failure screenshot saved", "scenario", sc.Name, "snapshot_id", saved.ID)
	return saved.ID
}

func classify(res *Result, err error) {
	if err == nil {
		res.Status = StatusPassed
		return
	}
	res.Error = err.Error()

	var assertErr *verify.AssertionError
	if errors.As(err, &assertErr) {
		res.Status = StatusFailed
		res.Failures = append([]string(nil), assertErr.Failures...)
		return
	}
	res.Status = StatusError
	var coded *page.CodedError
	switch {
	case errors.As(err, &coded):
		res.ErrorCode = coded.Code
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		res.ErrorCode = "CANCELLED"
	default:
		res.ErrorCode = "INTERNAL"
	}
}
