package scheduler

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestEngineConcurrentScheduleDeliversEverything(t *testing.T) {
	engine := NewEngine(4096)
	engine.Start()
	defer engine.Stop()

	const producers = 8
	const perProducer = 200
	want := producers * perProducer

	base := time.Now().UTC()
	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				ev := DueEvent{
					TaskID: fmt.Sprintf("p%d-t%d", p, i),
					Title:  "load",
					Kind:   DueToday,
					At:     base.Add(time.Duration((p*7+i)%40+5) * time.Millisecond),
				}
				if err := engine.Schedule(ev); err != nil {
					t.Errorf("schedule %s: %v", ev.TaskID, err)
					return
				}
				_ = engine.Pending()
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, want)
	deadline := time.After(5 * time.Second)
	for len(seen) < want {
		select {
		case ev := <-engine.C():
			if seen[ev.TaskID] {
				t.Fatalf("event %s delivered twice", ev.TaskID)
			}
			seen[ev.TaskID] = true
		case <-deadline:
			t.Fatalf("timed out: got %d of %d, dropped %d", len(seen), want, engine.Dropped())
		}
	}
	if engine.Dropped() != 0 {
		t.Fatalf("expected no drops with an active reader, got %d", engine.Dropped())
	}
}

func TestEngineReplaceRacesWithSchedule(t *testing.T) {
	engine := NewEngine(64)
	engine.Start()
	defer engine.Stop()

	far := time.Now().Add(time.Hour)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 500 {
			_ = engine.Schedule(DueEvent{TaskID: fmt.Sprintf("s%d", i), At: far})
		}
	}()
	go func() {
		defer wg.Done()
		for range 100 {
			_ = engine.Replace([]DueEvent{{TaskID: "keep", At: far}})
		}
	}()
	wg.Wait()

	if err := engine.Replace([]DueEvent{{TaskID: "keep", At: far}}); err != nil {
		t.Fatalf("final replace: %v", err)
	}
	if got := engine.Pending(); got != 1 {
		t.Fatalf("expected only the replacement queued, got %d", got)
	}
}
