package cache

import (
	"context"
	"time"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/shared"
)

// InMemorySubmissionGuard implements SubmissionGuard using an in-memory map.
// State is per process, so it only protects single-instance deployments.
type InMemorySubmissionGuard struct {
	m *ttlMap
}

// NewInMemorySubmissionGuard creates a new in-memory guard
func NewInMemorySubmissionGuard() *InMemorySubmissionGuard {
	return &InMemorySubmissionGuard{m: newTTLMap(defaultCleanupInterval)}
}

// MarkSubmitted returns true if the key was newly marked
func (g *InMemorySubmissionGuard) MarkSubmitted(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return g.m.setIfAbsent(key, nil, ttl), nil
}

// Release removes the key
func (g *InMemorySubmissionGuard) Release(_ context.Context, key string) error {
	g.m.delete(key)
	return nil
}

// Close stops the cleanup goroutine
func (g *InMemorySubmissionGuard) Close() error {
	g.m.close()
	return nil
}

// Size returns the number of entries (for testing/monitoring)
func (g *InMemorySubmissionGuard) Size() int {
	return g.m.size()
}

var _ shared.SubmissionGuard = (*InMemorySubmissionGuard)(nil)
