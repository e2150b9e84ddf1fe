package fanout

import (
	"testing"

	"snowviz/internal/adapter/metrics/inmemory"
)

func TestRecorder_ForwardsToAll(t *testing.T) {
	a, b := inmemory.NewRecorder(), inmemory.NewRecorder()
	f := Recorder{a, b}

	f.RecordLoad("snowman_basic", 5)
	f.RecordActionErrors(1)
	f.RecordFailure("empty_plan")

	for i, r := range []*inmemory.Recorder{a, b} {
		s := r.Snapshot()
		if s.LoadTotal != 2 || s.FramesTotal != 5 || s.ActionErrors != 1 {
			t.Fatalf("recorder %d got %+v", i, s)
		}
	}
}
