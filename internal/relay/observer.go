package relay

import (
	"time"

	"github.com/dgnsrekt/contribute_smoke/internal/scenario"
)

const (
	FeedScenario = "scenario"
	FeedRun      = "run"
)

type scenarioEvent struct {
	RunID    string           `json:"run_id"`
	Scenario string           `json:"scenario"`
	Phase    string           `json:"phase"`
	Result   *scenario.Result `json:"result,omitempty"`
	At       time.Time        `json:"at"`
}

// Observer publishes scenario progress to a Broker.
type Observer struct {
	broker *Broker
}

func NewObserver(b *Broker) *Observer { return &Observer{broker: b} }

func (o *Observer) ScenarioStarted(runID string, sc scenario.Scenario) {
	o.broker.PublishJSON(FeedScenario, scenarioEvent{RunID: runID, Scenario: sc.Name, Phase: "started", At: time.Now().UTC()})
}

func (o *Observer) ScenarioFinished(res scenario.Result) {
	o.broker.PublishJSON(FeedScenario, scenarioEvent{RunID: res.RunID, Scenario: res.Scenario, Phase: "finished", Result: &res, At: time.Now().UTC()})
}

func (o *Observer) RunFinished(sum scenario.Summary) {
	o.broker.PublishJSON(FeedRun, sum)
}
