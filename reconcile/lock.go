package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/worktrack/earnings-engine/engine"
)

// DefaultCooldown is the duplicate-suppression window. It also bounds how
// long a crashed bulk attempt can block an identical retry: a claim never
// released still expires on its own.
const DefaultCooldown = 30 * time.Second

// Guard is a process-local, time-boxed mutual-exclusion marker for bulk
// submissions. It is not a distributed lock: it only stops the same client
// session from running two identical-parameter batches within the
// cooldown window. Suppression is purely time-based, so a batch that
// finishes quickly still shields against an immediate duplicate
// resubmission of the same parameters.
type Guard struct {
	mu       sync.Mutex
	claims   map[string]time.Time
	cooldown time.Duration

	// now is swappable in tests.
	now func() time.Time
}

func NewGuard(cooldown time.Duration) *Guard {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Guard{
		claims:   make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// LockKey derives the guard key for a bulk submission. Two submissions
// collide exactly when they target the same month and the same day set,
// so the days are sorted before joining.
func LockKey(month string, days []int) string {
	sorted := make([]int, len(days))
	copy(sorted, days)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, d := range sorted {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return fmt.Sprintf("bulk_submission_%s_%s", month, strings.Join(parts, ","))
}

// Acquire claims the key, failing with a BulkInProgressError when an
// unexpired claim is outstanding.
func (g *Guard) Acquire(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if since, ok := g.claims[key]; ok && now.Sub(since) < g.cooldown {
		return &engine.BulkInProgressError{Key: key, Since: since}
	}
	g.claims[key] = now
	return nil
}

// Release marks the batch complete. The claim itself stays until the
// cooldown expires so an immediate identical resubmission is still
// suppressed; expired claims are pruned here to bound the map.
func (g *Guard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, since := range g.claims {
		if k != key && now.Sub(since) >= g.cooldown {
			delete(g.claims, k)
		}
	}
}
