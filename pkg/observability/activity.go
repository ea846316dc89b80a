// Package observability aggregates lifecycle hook traffic into an in-memory
// activity view, for debug endpoints and terminal sessions. For time-series
// metrics use internal/metrics; this package answers "what are runs doing
// right now".
package observability

import (
	"context"
	"sync"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
	"github.com/wayfarerhq/wayfarer/pkg/ports"
)

// trailCap bounds the per-run screen trail kept in memory.
const trailCap = 50

// Activity is a concurrency-safe aggregator over lifecycle hooks and answer
// records. All callbacks are cheap and non-blocking.
type Activity struct {
	mu   sync.RWMutex
	runs map[string]*RunActivity

	dispatched uint64
	matched    uint64
	services   uint64
	warnings   uint64
	answers    uint64
}

// RunActivity is the aggregated view of one run.
type RunActivity struct {
	RunID    string   `json:"run_id"`
	AgentID  string   `json:"agent_id"`
	ScreenID string   `json:"screen_id"`
	Seq      uint64   `json:"seq"`
	Trail    []string `json:"trail"`
	Answers  int      `json:"answers"`
}

// Snapshot is a point-in-time copy of the aggregate counters and per-run
// activity.
type Snapshot struct {
	Dispatched uint64        `json:"dispatched"`
	Matched    uint64        `json:"matched"`
	Services   uint64        `json:"services"`
	Warnings   uint64        `json:"warnings"`
	Answers    uint64        `json:"answers"`
	Runs       []RunActivity `json:"runs"`
}

// NewActivity creates an empty aggregator.
func NewActivity() *Activity {
	return &Activity{runs: make(map[string]*RunActivity)}
}

// Hooks returns lifecycle hooks that feed this aggregator. Pass the result
// to the interpreter's hook option, or merge with your own hooks.
func (a *Activity) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnScreenEnter: func(_ context.Context, ev *domain.ScreenEvent) {
			a.mu.Lock()
			defer a.mu.Unlock()
			run := a.run(ev.RunID)
			run.AgentID = ev.AgentID
			run.ScreenID = ev.ScreenID
			run.Trail = append(run.Trail, ev.ScreenID)
			if len(run.Trail) > trailCap {
				run.Trail = run.Trail[len(run.Trail)-trailCap:]
			}
		},
		OnEventDispatched: func(_ context.Context, ev *domain.EventDispatched) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.dispatched++
			if ev.Matched {
				a.matched++
			}
			run := a.run(ev.RunID)
			run.Seq = ev.Seq
			run.ScreenID = ev.ScreenID
		},
		OnServiceCall: func(_ context.Context, _ *domain.ServiceEvent) {
			a.mu.Lock()
			a.services++
			a.mu.Unlock()
		},
		OnWarning: func(_ context.Context, _ *domain.Warning) {
			a.mu.Lock()
			a.warnings++
			a.mu.Unlock()
		},
	}
}

// RecordAnswer implements ports.AnswerRecorder. It never fails; chain it
// before a real recorder if answers also need to leave the process.
func (a *Activity) RecordAnswer(_ context.Context, rec ports.AnswerRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.answers++
	a.run(rec.RunID).Answers++
	return nil
}

// Forget drops a finished run from the aggregate view.
func (a *Activity) Forget(runID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.runs, runID)
}

// Run returns the activity of one run, or false if unseen.
func (a *Activity) Run(runID string) (RunActivity, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	run, ok := a.runs[runID]
	if !ok {
		return RunActivity{}, false
	}
	return cloneRun(run), true
}

// Snapshot copies the current aggregate state.
func (a *Activity) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	snap := Snapshot{
		Dispatched: a.dispatched,
		Matched:    a.matched,
		Services:   a.services,
		Warnings:   a.warnings,
		Answers:    a.answers,
		Runs:       make([]RunActivity, 0, len(a.runs)),
	}
	for _, run := range a.runs {
		snap.Runs = append(snap.Runs, cloneRun(run))
	}
	return snap
}

func (a *Activity) run(runID string) *RunActivity {
	run, ok := a.runs[runID]
	if !ok {
		run = &RunActivity{RunID: runID}
		a.runs[runID] = run
	}
	return run
}

func cloneRun(run *RunActivity) RunActivity {
	out := *run
	out.Trail = append([]string(nil), run.Trail...)
	return out
}
