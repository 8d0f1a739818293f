package core

import (
	"testing"
	"time"
)

func TestTracker_UpdateAndSnapshot(t *testing.T) {
	tr := NewTracker()

	tr.Update(RunProgress{RunID: "a", Shape: "abstracts", Phase: PhaseReading})
	time.Sleep(time.Millisecond)
	tr.Update(RunProgress{RunID: "b", Shape: "fulltexts", Phase: PhaseStarting})
	tr.Update(RunProgress{RunID: "a", Shape: "abstracts", Phase: PhaseWriting, Chunks: 1})

	snap := tr.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() has %d runs, want 2", len(snap))
	}
	if snap[0].RunID != "a" || snap[1].RunID != "b" {
		t.Errorf("Snapshot() order = [%s %s], want [a b]", snap[0].RunID, snap[1].RunID)
	}
	if snap[0].Phase != PhaseWriting || snap[0].Chunks != 1 {
		t.Errorf("run a = %+v, want latest update", snap[0])
	}

	if _, ok := tr.Get("missing"); ok {
		t.Error("Get(missing) should report not found")
	}
}

func TestTracker_Subscribe(t *testing.T) {
	tr := NewTracker()
	tr.Update(RunProgress{RunID: "r", Phase: PhaseStarting})

	ch, err := tr.Subscribe("r")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	// Current state is delivered immediately.
	if p := <-ch; p.Phase != PhaseStarting {
		t.Errorf("first update = %s, want %s", p.Phase, PhaseStarting)
	}

	tr.Update(RunProgress{RunID: "r", Phase: PhaseReading})
	tr.Update(RunProgress{RunID: "r", Phase: PhaseComplete, RowsWritten: 3})

	var last RunProgress
	timeout := time.After(time.Second)
	for {
		select {
		case p, ok := <-ch:
			if !ok {
				if last.Phase != PhaseComplete || last.RowsWritten != 3 {
					t.Errorf("last update = %+v, want complete with 3 rows", last)
				}
				return
			}
			last = p
		case <-timeout:
			t.Fatal("channel not closed after terminal phase")
		}
	}
}

func TestTracker_SubscribeAfterFinish(t *testing.T) {
	tr := NewTracker()
	tr.Update(RunProgress{RunID: "r", Phase: PhaseFailed, Error: "boom"})

	// Updates after a terminal phase are ignored.
	tr.Update(RunProgress{RunID: "r", Phase: PhaseReading})

	ch, err := tr.Subscribe("r")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	p, ok := <-ch
	if !ok || p.Phase != PhaseFailed || p.Error != "boom" {
		t.Errorf("first update = (%+v, %v), want failed", p, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed for a finished run")
	}

	if _, err := tr.Subscribe("unknown"); err == nil {
		t.Error("Subscribe(unknown) expected error")
	}
}

func TestRunProgress_Percent(t *testing.T) {
	tests := []struct {
		read, total int64
		want        int
	}{
		{0, 0, 0},
		{50, 0, 0},
		{0, 200, 0},
		{50, 200, 25},
		{200, 200, 100},
		{300, 200, 100},
	}
	for _, tt := range tests {
		p := RunProgress{BytesRead: tt.read, BytesTotal: tt.total}
		if got := p.Percent(); got != tt.want {
			t.Errorf("Percent(%d/%d) = %d, want %d", tt.read, tt.total, got, tt.want)
		}
	}
}
