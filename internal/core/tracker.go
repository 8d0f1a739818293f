package core

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// FinishedRunRetention is how long a finished run stays visible to Snapshot.
var FinishedRunRetention = 10 * time.Minute

// Tracker records the progress of pipeline runs for the status server.
// Its Update method is a ProgressCallback.
type Tracker struct {
	mu   sync.RWMutex
	runs map[string]*trackedRun
}

type trackedRun struct {
	Progress   RunProgress
	StartedAt  time.Time
	Listeners  []chan RunProgress
	ListenerMu sync.Mutex
	finished   bool
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{runs: make(map[string]*trackedRun)}
}

// Update stores p as the latest progress of its run and notifies subscribers.
// A terminal phase closes the subscriber channels.
func (t *Tracker) Update(p RunProgress) {
	t.mu.Lock()
	run, ok := t.runs[p.RunID]
	if !ok {
		run = &trackedRun{StartedAt: time.Now()}
		t.runs[p.RunID] = run
	}
	if run.finished {
		t.mu.Unlock()
		return
	}
	run.Progress = p
	terminal := p.Phase.Terminal()
	run.finished = terminal
	t.mu.Unlock()

	run.notifyProgress(p)
	if terminal {
		run.closeListeners()
		t.cleanup(p.RunID, FinishedRunRetention)
	}
}

// Subscribe returns a channel that receives progress updates for a run.
// The channel is closed when the run reaches a terminal phase.
func (t *Tracker) Subscribe(runID string) (<-chan RunProgress, error) {
	t.mu.RLock()
	run, ok := t.runs[runID]
	t.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	ch := make(chan RunProgress, 10)

	run.ListenerMu.Lock()
	defer run.ListenerMu.Unlock()

	t.mu.RLock()
	current, finished := run.Progress, run.finished
	t.mu.RUnlock()

	ch <- current
	if finished {
		close(ch)
		return ch, nil
	}
	run.Listeners = append(run.Listeners, ch)
	return ch, nil
}

// Get returns the latest progress of a run.
func (t *Tracker) Get(runID string) (RunProgress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	run, ok := t.runs[runID]
	if !ok {
		return RunProgress{}, false
	}
	return run.Progress, true
}

// Snapshot returns the latest progress of every tracked run, oldest first.
func (t *Tracker) Snapshot() []RunProgress {
	t.mu.RLock()
	defer t.mu.RUnlock()

	runs := make([]*trackedRun, 0, len(t.runs))
	for _, run := range t.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].Progress.RunID < runs[j].Progress.RunID
		}
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})

	result := make([]RunProgress, len(runs))
	for i, run := range runs {
		result[i] = run.Progress
	}
	return result
}

// notifyProgress sends p to all listeners.
func (run *trackedRun) notifyProgress(p RunProgress) {
	run.ListenerMu.Lock()
	defer run.ListenerMu.Unlock()

	for _, ch := range run.Listeners {
		select {
		case ch <- p:
		default:
			// Listener is slow, skip this update
		}
	}
}

// closeListeners closes all listener channels.
func (run *trackedRun) closeListeners() {
	run.ListenerMu.Lock()
	defer run.ListenerMu.Unlock()

	for _, ch := range run.Listeners {
		close(ch)
	}
	run.Listeners = nil
}

// cleanup removes the run from tracking after a delay.
func (t *Tracker) cleanup(runID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		t.mu.Lock()
		delete(t.runs, runID)
		t.mu.Unlock()
	})
}
