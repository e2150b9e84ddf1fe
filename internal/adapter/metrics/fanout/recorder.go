package fanout

import "snowviz/internal/app/ports"

// Recorder forwards every event to all of its recorders.
type Recorder []ports.LoadMetrics

func (f Recorder) RecordLoad(domain string, frameCount int) {
	for _, r := range f {
		r.RecordLoad(domain, frameCount)
	}
}

func (f Recorder) RecordActionErrors(n int) {
	for _, r := range f {
		r.RecordActionErrors(n)
	}
}

func (f Recorder) RecordFailure(code string) {
	for _, r := range f {
		r.RecordFailure(code)
	}
}
