package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"tourguide/internal/models"
)

// Memory keeps records in process memory. It is meant for local development
// and tests; records are gone on restart.
type Memory struct {
	mu      sync.RWMutex
	records map[string]models.Record
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]models.Record), now: time.Now}
}

func (m *Memory) Put(_ context.Context, rec models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now()
	}
	rec.Types = append([]string(nil), rec.Types...)
	m.records[rec.BlobName] = rec
	return nil
}

func (m *Memory) List(_ context.Context) ([]models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].BlobName < out[j].BlobName
	})
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() {}
