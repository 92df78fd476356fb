// internal/repository/memory_repository.go
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"serial-discovery/internal/model"
)

// memoryScanRunRepository keeps a bounded history in process memory.
// It is used when the database is disabled.
type memoryScanRunRepository struct {
	mu       sync.RWMutex
	runs     []*model.ScanRun
	capacity int
}

// NewMemoryScanRunRepository creates an in-memory repository holding at
// most capacity runs. Older runs are evicted first.
func NewMemoryScanRunRepository(capacity int) ScanRunRepository {
	if capacity <= 0 {
		capacity = 50
	}
	return &memoryScanRunRepository{capacity: capacity}
}

func (r *memoryScanRunRepository) Create(ctx context.Context, run *model.ScanRun) error {
	if run == nil {
		return fmt.Errorf("scan run is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs = append(r.runs, run)
	if len(r.runs) > r.capacity {
		r.runs = r.runs[len(r.runs)-r.capacity:]
	}
	return nil
}

func (r *memoryScanRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ScanRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, run := range r.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrScanRunNotFound, id)
}

func (r *memoryScanRunRepository) List(ctx context.Context, filter *ScanRunFilter) ([]*model.ScanRun, error) {
	if filter == nil {
		filter = &ScanRunFilter{}
	}

	r.mu.RLock()
	matched := []*model.ScanRun{}
	for _, run := range r.runs {
		if filter.ScanType != nil && run.ScanType != *filter.ScanType {
			continue
		}
		if filter.PortPath != nil && !containsPath(portPaths(run), *filter.PortPath) {
			continue
		}
		matched = append(matched, run)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].StartedAt.After(matched[j].StartedAt)
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *memoryScanRunRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.runs[:0]
	var deleted int64
	for _, run := range r.runs {
		if run.StartedAt.Before(olderThan) {
			deleted++
			continue
		}
		kept = append(kept, run)
	}
	r.runs = kept
	return deleted, nil
}

func containsPath(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}
