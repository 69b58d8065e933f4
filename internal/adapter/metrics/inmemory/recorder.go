package inmemory

import (
	"sync"

	"questline/internal/domain/quest"
)

type Snapshot struct {
	ProgressTotal    uint64            `json:"progress_total"`
	CompletionTotal  uint64            `json:"completion_total"`
	RejectionTotal   uint64            `json:"rejection_total"`
	ProgressByKind   map[string]uint64 `json:"progress_by_kind"`
	CompletionByKind map[string]uint64 `json:"completion_by_kind"`
	ByRejectReason   map[string]uint64 `json:"by_reject_reason"`
}

type Recorder struct {
	mu          sync.Mutex
	progress    map[string]uint64
	completions map[string]uint64
	rejections  map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		progress:    map[string]uint64{},
		completions: map[string]uint64{},
		rejections:  map[string]uint64{},
	}
}

func (r *Recorder) RecordProgress(kind quest.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress[string(kind)]++
}

func (r *Recorder) RecordCompletion(kind quest.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions[string(kind)]++
}

func (r *Recorder) RecordRejection(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejections[reason]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		ProgressByKind:   make(map[string]uint64, len(r.progress)),
		CompletionByKind: make(map[string]uint64, len(r.completions)),
		ByRejectReason:   make(map[string]uint64, len(r.rejections)),
	}
	for k, v := range r.progress {
		out.ProgressByKind[k] = v
		out.ProgressTotal += v
	}
	for k, v := range r.completions {
		out.CompletionByKind[k] = v
		out.CompletionTotal += v
	}
	for k, v := range r.rejections {
		out.ByRejectReason[k] = v
		out.RejectionTotal += v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
