package session

import (
	"sync"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// CleanupInterval is how often expired sessions are swept
const CleanupInterval = time.Minute

// MemoryOverrideRepository keeps override snapshots in process memory.
// Suitable for a single API instance.
type MemoryOverrideRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[domain.OverrideSession]*memoryEntry
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

type memoryEntry struct {
	snapshot  domain.OverrideSnapshot
	expiresAt time.Time
}

// NewMemoryOverrideRepository creates a repository whose sessions expire
// ttl after their last write
func NewMemoryOverrideRepository(ttl time.Duration) *MemoryOverrideRepository {
	r := &MemoryOverrideRepository{
		ttl:      ttl,
		sessions: make(map[domain.OverrideSession]*memoryEntry),
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}

	go r.cleanup()

	return r
}

// Load returns a copy of the session's snapshot, empty when absent or expired
func (r *MemoryOverrideRepository) Load(s domain.OverrideSession) (domain.OverrideSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[s]
	if !ok || r.now().After(entry.expiresAt) {
		return domain.OverrideSnapshot{}, nil
	}
	return copySnapshot(entry.snapshot), nil
}

// Save replaces the session's snapshot and refreshes its expiry
func (r *MemoryOverrideRepository) Save(s domain.OverrideSession, snapshot domain.OverrideSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(snapshot) == 0 {
		delete(r.sessions, s)
		return nil
	}
	r.sessions[s] = &memoryEntry{
		snapshot:  copySnapshot(snapshot),
		expiresAt: r.now().Add(r.ttl),
	}
	return nil
}

// Delete drops the session
func (r *MemoryOverrideRepository) Delete(s domain.OverrideSession) error {
	r.mu.Lock()
	delete(r.sessions, s)
	r.mu.Unlock()
	return nil
}

// Len returns the number of live sessions
func (r *MemoryOverrideRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// cleanup periodically removes expired sessions to prevent memory leaks
func (r *MemoryOverrideRepository) cleanup() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				log.Debug().Int("sessions", n).Msg("Expired override sessions removed")
			}
		case <-r.stopCh:
			return
		}
	}
}

func (r *MemoryOverrideRepository) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for s, entry := range r.sessions {
		if now.After(entry.expiresAt) {
			delete(r.sessions, s)
			removed++
		}
	}
	return removed
}

// Stop stops the cleanup goroutine
func (r *MemoryOverrideRepository) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

func copySnapshot(in domain.OverrideSnapshot) domain.OverrideSnapshot {
	out := make(domain.OverrideSnapshot, len(in))
	for n, o := range in {
		if o.Date != nil {
			d := *o.Date
			o.Date = &d
		}
		out[n] = o
	}
	return out
}
