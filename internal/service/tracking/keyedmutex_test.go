package tracking

import (
	"sync"
	"testing"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/google/uuid"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	km := newKeyedMutex()
	key := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(key)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("counter = %d, want 100", counter)
	}

	km.mu.Lock()
	remaining := len(km.locks)
	km.mu.Unlock()
	if remaining != 0 {
		t.Errorf("lock map must drain after use, %d entries left", remaining)
	}
}

func TestKeyedMutex_IndependentKeysDoNotBlock(t *testing.T) {
	km := newKeyedMutex()

	held := km.Lock(uuid.New())
	defer held()

	done := make(chan struct{})
	go func() {
		unlock := km.Lock(uuid.New())
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a different key must not block")
	}
}

func TestLiveCache_ExpiryAndSweep(t *testing.T) {
	cache := newLiveCache(30 * time.Minute)
	now := time.Now().UTC()

	fresh := &models.TrackingState{DriverID: uuid.New(), UpdatedAt: now}
	old := &models.TrackingState{DriverID: uuid.New(), UpdatedAt: now.Add(-time.Hour)}
	cache.Put(fresh, now)
	cache.Put(old, now)

	if got := cache.Get(fresh.DriverID, now); got == nil {
		t.Error("fresh entry must be served")
	}
	if got := cache.Get(old.DriverID, now); got != nil {
		t.Error("expired entry must be dropped on access")
	}
	if cache.Len() != 1 {
		t.Errorf("cache size = %d, want 1 after lazy eviction", cache.Len())
	}
}
