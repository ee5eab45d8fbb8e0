package tracking

import (
	"sync"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/google/uuid"
)

// liveCache keeps the hot per-driver aggregates in memory so the ingest
// path does not need a database read per sample. Entries expire after
// evictAfter; expired entries are dropped lazily on access and by an
// opportunistic sweep, never by a background goroutine.
type liveCache struct {
	mu        sync.RWMutex
	states    map[uuid.UUID]*models.TrackingState
	lastSweep time.Time

	evictAfter    time.Duration
	sweepInterval time.Duration
}

func newLiveCache(evictAfter time.Duration) *liveCache {
	return &liveCache{
		states:        make(map[uuid.UUID]*models.TrackingState),
		lastSweep:     time.Now(),
		evictAfter:    evictAfter,
		sweepInterval: evictAfter / 6,
	}
}

// Get returns the cached state for a driver, or nil. An expired entry is
// removed and reported as absent.
func (c *liveCache) Get(driverID uuid.UUID, now time.Time) *models.TrackingState {
	c.mu.RLock()
	state, ok := c.states[driverID]
	c.mu.RUnlock()
	if !ok {
		return nil
	}

	if now.Sub(state.UpdatedAt) > c.evictAfter {
		c.mu.Lock()
		if cur, ok := c.states[driverID]; ok && cur == state {
			delete(c.states, driverID)
		}
		c.mu.Unlock()
		return nil
	}
	return state
}

// Put stores the state and occasionally sweeps out other expired entries.
func (c *liveCache) Put(state *models.TrackingState, now time.Time) {
	c.mu.Lock()
	c.states[state.DriverID] = state
	if now.Sub(c.lastSweep) > c.sweepInterval {
		for id, s := range c.states {
			if now.Sub(s.UpdatedAt) > c.evictAfter {
				delete(c.states, id)
			}
		}
		c.lastSweep = now
	}
	c.mu.Unlock()
}

func (c *liveCache) Delete(driverID uuid.UUID) {
	c.mu.Lock()
	delete(c.states, driverID)
	c.mu.Unlock()
}

func (c *liveCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.states)
}
