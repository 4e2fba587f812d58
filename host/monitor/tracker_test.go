package monitor

import (
	"sync"
	"testing"
	"time"
)

func TestTrackerAccumulates(t *testing.T) {
	tr := NewTracker()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tr.Publish(Message{Type: TypeWarning, Axis: "x", Kind: KindUnderEstimate, Target: 1000, Position: 995, Time: at})
	tr.Publish(Message{Type: TypeStop, Axis: "x", Target: 1000, Position: 1000, Time: at})
	tr.Publish(Message{Type: TypeWarning, Axis: "x", Kind: KindOvershoot, Target: 2, Position: 3, Time: at})
	tr.Publish(Message{Type: TypeStop, Axis: "x", Target: 2, Position: 2, Time: at})
	tr.Publish(Message{Type: TypeStop, Axis: "a", Target: 7, Position: 7, Time: at})

	x, ok := tr.Axis("x")
	if !ok {
		t.Fatal("Expected axis x")
	}
	if x.Position != 2 || x.Stops != 2 || x.Overshoots != 1 || x.UnderEstimates != 1 {
		t.Errorf("Unexpected state %+v", x)
	}
	if x.LastWarning == nil || x.LastWarning.Kind != KindOvershoot {
		t.Errorf("Expected last warning overshoot, got %+v", x.LastWarning)
	}
	if !x.Updated.Equal(at) {
		t.Errorf("Expected updated %v, got %v", at, x.Updated)
	}

	axes := tr.Axes()
	if len(axes) != 2 || axes[0].Name != "a" || axes[1].Name != "x" {
		t.Errorf("Expected axes [a x], got %+v", axes)
	}

	if _, ok := tr.Axis("q"); ok {
		t.Error("Unexpected axis q")
	}
}

func TestTrackerConcurrent(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Publish(Message{Type: TypeStop, Axis: "x", Position: int32(j)})
				tr.Axes()
			}
		}()
	}
	wg.Wait()

	x, _ := tr.Axis("x")
	if x.Stops != 400 {
		t.Errorf("Expected 400 stops, got %d", x.Stops)
	}
}
