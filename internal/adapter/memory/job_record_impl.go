package memory

import (
	"sync"

	"github.com/user/job-insights/internal/entity"
)

// JobRecordRepoImpl is a map-backed JobRecordRepository. It grows for the lifetime of the
// session and is emptied only by Clear.
type JobRecordRepoImpl struct {
	mu      sync.RWMutex
	records map[string]*entity.JobRecord
}

// NewJobRecordRepo creates an empty store.
func NewJobRecordRepo() *JobRecordRepoImpl {
	return &JobRecordRepoImpl{records: make(map[string]*entity.JobRecord)}
}

func (r *JobRecordRepoImpl) Set(id string, rec *entity.JobRecord) {
	if id == "" || rec == nil {
		return
	}
	cp := *rec
	r.mu.Lock()
	r.records[id] = &cp
	r.mu.Unlock()
}

// Get returns a copy, so callers cannot mutate stored records.
func (r *JobRecordRepoImpl) Get(id string) (*entity.JobRecord, bool) {
	r.mu.RLock()
	rec, ok := r.records[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	cp := *rec
	return &cp, true
}

func (r *JobRecordRepoImpl) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *JobRecordRepoImpl) Clear() {
	r.mu.Lock()
	r.records = make(map[string]*entity.JobRecord)
	r.mu.Unlock()
}
