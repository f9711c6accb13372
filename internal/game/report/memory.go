package report

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps reports in process.
type MemoryRepository struct {
	mu      sync.Mutex
	reports []Report
	nextID  int64
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

func (r *MemoryRepository) Create(_ context.Context, rep *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep.ID = r.nextID
	rep.CreatedAt = time.Now().UTC()
	r.nextID++
	r.reports = append(r.reports, *rep)
	return nil
}

func (r *MemoryRepository) ListRecent(_ context.Context, userID int64, limit int) ([]Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	limit = NormalizeLimit(limit)
	out := []Report{}
	for i := len(r.reports) - 1; i >= 0 && len(out) < limit; i-- {
		if r.reports[i].UserID == userID {
			out = append(out, r.reports[i])
		}
	}
	return out, nil
}
