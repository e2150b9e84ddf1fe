package inmemory

import "sync"

type Snapshot struct {
	LoadTotal     uint64            `json:"load_total"`
	LoadSuccess   uint64            `json:"load_success"`
	LoadFailure   uint64            `json:"load_failure"`
	FramesTotal   uint64            `json:"frames_total"`
	ActionErrors  uint64            `json:"action_errors"`
	ByDomain      map[string]uint64 `json:"by_domain"`
	ByFailureCode map[string]uint64 `json:"by_failure_code"`
}

type Recorder struct {
	mu           sync.Mutex
	success      uint64
	failure      uint64
	frames       uint64
	actionErrors uint64
	byDomain     map[string]uint64
	byFailure    map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byDomain:  map[string]uint64{},
		byFailure: map[string]uint64{},
	}
}

func (r *Recorder) RecordLoad(domain string, frameCount int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
	r.frames += uint64(frameCount)
	r.byDomain[domain]++
}

func (r *Recorder) RecordActionErrors(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actionErrors += uint64(n)
}

func (r *Recorder) RecordFailure(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
	r.byFailure[code]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		LoadSuccess:   r.success,
		LoadFailure:   r.failure,
		LoadTotal:     r.success + r.failure,
		FramesTotal:   r.frames,
		ActionErrors:  r.actionErrors,
		ByDomain:      make(map[string]uint64, len(r.byDomain)),
		ByFailureCode: make(map[string]uint64, len(r.byFailure)),
	}
	for k, v := range r.byDomain {
		out.ByDomain[k] = v
	}
	for k, v := range r.byFailure {
		out.ByFailureCode[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
