package controller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/contribute_smoke/internal/page"
	"github.com/dgnsrekt/contribute_smoke/internal/registry"
	"github.com/dgnsrekt/contribute_smoke/internal/scenario"
	"github.com/dgnsrekt/contribute_smoke/internal/snapshot"
	"github.com/google/uuid"
)

const (
	RunStateRunning  = "running"
	RunStateFinished = "finished"
)

// Runner executes a selection of scenarios under a given run id.
type Runner interface {
	RunWithID(ctx context.Context, runID string, scenarios []scenario.Scenario) scenario.Summary
}

// RunState describes the current or most recent run.
type RunState struct {
	RunID     string            `json:"run_id"`
	State     string            `json:"state" enum:"running,finished"`
	Scenarios []string          `json:"scenarios"`
	StartedAt time.Time         `json:"started_at"`
	Summary   *scenario.Summary `json:"summary,omitempty"`
}

// Options wires a Service.
type Options struct {
	Runner    Runner
	Scenarios []scenario.Scenario
	Registry  *registry.Registry
	Snapshots *snapshot.Store
	// SnapshotRetention prunes the snapshot store after each run. Zero keeps everything.
	SnapshotRetention int
}

// Service runs smoke scenarios in the background, one run at a time.
type Service struct {
	opts Options

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu     sync.Mutex
	latest *RunState
}

func NewService(opts Options) *Service {
	if opts.Scenarios == nil {
		opts.Scenarios = scenario.All()
	}
	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{opts: opts, baseCtx: ctx, cancel: cancel}
}

func (s *Service) requireNonEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return &page.CodedError{Code: page.CodeValidation, Message: fieldName + " is required"}
	}
	return nil
}

func (s *Service) ListScenarios(ctx context.Context) []scenario.Scenario {
	return s.opts.Scenarios
}

func (s *Service) Registry(ctx context.Context) *registry.Registry {
	return s.opts.Registry
}

// StartRun selects scenarios and runs them in the background. A second
// request while a run is in progress fails with RUN_IN_PROGRESS.
func (s *Service) StartRun(ctx context.Context, f scenario.Filter) (RunState, error) {
	selected, err := scenario.Select(s.opts.Scenarios, f)
	if err != nil {
		return RunState{}, err
	}
	if len(selected) == 0 {
		return RunState{}, &page.CodedError{Code: page.CodeValidation, Message: "filter matches no scenarios"}
	}
	if s.opts.Runner == nil {
		return RunState{}, &page.CodedError{Code: page.CodeSessionUnavailable, Message: "no runner configured"}
	}

	s.mu.Lock()
	if s.latest != nil && s.latest.State == RunStateRunning {
		running := s.latest.RunID
		s.mu.Unlock()
		return RunState{}, &page.CodedError{Code: page.CodeBusy, Message: "run " + running + " is still in progress"}
	}
	if s.baseCtx.Err() != nil {
		s.mu.Unlock()
		return RunState{}, &page.CodedError{Code: page.CodeSessionUnavailable, Message: "controller is shutting down"}
	}
	state := &RunState{
		RunID:     uuid.NewString(),
		State:     RunStateRunning,
		Scenarios: scenario.Names(selected),
		StartedAt: time.Now().UTC(),
	}
	s.latest = state
	snapshotOut := *state
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(state.RunID, selected)
	return snapshotOut, nil
}

func (s *Service) run(runID string, selected []scenario.Scenario) {
	defer s.wg.Done()
	sum := s.opts.Runner.RunWithID(s.baseCtx, runID, selected)

	s.mu.Lock()
	if s.latest != nil && s.latest.RunID == runID {
		s.latest.State = RunStateFinished
		s.latest.Summary = &sum
	}
	s.mu.Unlock()

	if s.opts.Snapshots != nil && s.opts.SnapshotRetention > 0 {
		if removed, err := s.opts.Snapshots.Prune(s.opts.SnapshotRetention); err != nil {
			slog.Warn("snapshot prune failed", "error", err)
		} else if removed > 0 {
			slog.Info("snapshots pruned", "removed", removed, "keep", s.opts.SnapshotRetention)
		}
	}
}

// LatestRun returns the current run, or the last finished one.
func (s *Service) LatestRun(ctx context.Context) (RunState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return RunState{}, &page.CodedError{Code: page.CodeNotFound, Message: "no run has been started"}
	}
	out := *s.latest
	out.Scenarios = append([]string(nil), s.latest.Scenarios...)
	return out, nil
}

// Wait blocks until the background run, if any, has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close cancels any in-progress run and waits for it to stop.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

// --- Snapshot methods ---

func (s *Service) snapshotErr(err error) error {
	switch {
	case errors.Is(err, snapshot.ErrInvalidID):
		return &page.CodedError{Code: page.CodeValidation, Message: err.Error()}
	case errors.Is(err, snapshot.ErrNotFound):
		return &page.CodedError{Code: page.CodeNotFound, Message: err.Error()}
	default:
		return err
	}
}

func (s *Service) requireSnapshots() error {
	if s.opts.Snapshots == nil {
		return &page.CodedError{Code: page.CodeNotFound, Message: "snapshot store not configured"}
	}
	return nil
}

func (s *Service) ListSnapshots(ctx context.Context, scenarioName string) ([]snapshot.ScreenshotMeta, error) {
	if err := s.requireSnapshots(); err != nil {
		return nil, err
	}
	return s.opts.Snapshots.List(strings.TrimSpace(scenarioName))
}

func (s *Service) GetSnapshot(ctx context.Context, id string) (snapshot.ScreenshotMeta, error) {
	if err := s.requireNonEmpty(id, "snapshot_id"); err != nil {
		return snapshot.ScreenshotMeta{}, err
	}
	if err := s.requireSnapshots(); err != nil {
		return snapshot.ScreenshotMeta{}, err
	}
	meta, err := s.opts.Snapshots.Get(strings.TrimSpace(id))
	if err != nil {
		return snapshot.ScreenshotMeta{}, s.snapshotErr(err)
	}
	return meta, nil
}

func (s *Service) ReadSnapshotImage(ctx context.Context, id string) ([]byte, string, error) {
	if err := s.requireNonEmpty(id, "snapshot_id"); err != nil {
		return nil, "", err
	}
	if err := s.requireSnapshots(); err != nil {
		return nil, "", err
	}
	data, format, err := s.opts.Snapshots.ReadImage(strings.TrimSpace(id))
	if err != nil {
		return nil, "", s.snapshotErr(err)
	}
	return data, format, nil
}

func (s *Service) DeleteSnapshot(ctx context.Context, id string) error {
	if err := s.requireNonEmpty(id, "snapshot_id"); err != nil {
		return err
	}
	if err := s.requireSnapshots(); err != nil {
		return err
	}
	if err := s.opts.Snapshots.Delete(strings.TrimSpace(id)); err != nil {
		return s.snapshotErr(err)
	}
	return nil
}
