package reconcile_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrack/earnings-engine/engine"
	"github.com/worktrack/earnings-engine/reconcile"
	"github.com/worktrack/earnings-engine/store"
	"github.com/worktrack/earnings-engine/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// flakyStore fails AddEntry for configured call indexes, simulating
// per-item remote failures inside a bulk loop.
type flakyStore struct {
	store.EntryStore

	mu       sync.Mutex
	addCalls int
	failAdds map[int]bool
}

func (f *flakyStore) AddEntry(ctx context.Context, e engine.TimeEntry) (string, error) {
	f.mu.Lock()
	idx := f.addCalls
	f.addCalls++
	fail := f.failAdds[idx]
	f.mu.Unlock()

	if fail {
		return "", errors.New("simulated remote failure")
	}
	return f.EntryStore.AddEntry(ctx, e)
}

func stdTemplate() reconcile.Template {
	return reconcile.Template{
		StartTime:     "09:00",
		StandardHours: decimal.NewFromInt(8),
		BreakMinutes:  30,
	}
}

func newTestSubmitter(entries store.EntryStore) (*reconcile.Submitter, *reconcile.Guard) {
	rec := reconcile.New(entries, decimal.NewFromInt(25))
	guard := reconcile.NewGuard(reconcile.DefaultCooldown)
	return reconcile.NewSubmitter(rec, guard, 0, nil), guard
}

// =============================================================================
// LOCK KEY
// =============================================================================

func TestLockKey_SortsDayList(t *testing.T) {
	a := reconcile.LockKey("2024-03", []int{5, 1, 12})
	b := reconcile.LockKey("2024-03", []int{12, 5, 1})
	assert.Equal(t, a, b, "day order must not change the key")
	assert.Equal(t, "bulk_submission_2024-03_1,5,12", a)
}

func TestGuard_ExpiredClaimCanBeReacquired(t *testing.T) {
	g := reconcile.NewGuard(time.Nanosecond)
	key := reconcile.LockKey("2024-03", []int{1})

	require.NoError(t, g.Acquire(key))
	time.Sleep(time.Millisecond)
	assert.NoError(t, g.Acquire(key), "an expired claim must not wedge future submissions")
}

// =============================================================================
// SCHEDULE EXPANSION
// =============================================================================

func TestExpandSchedule_March2024ExcludingWeekends(t *testing.T) {
	// GIVEN: Every day of March 2024 with weekends excluded
	// THEN: Exactly 21 drafts, none on Saturday or Sunday

	days := make([]int, 31)
	for i := range days {
		days[i] = i + 1
	}

	drafts, err := reconcile.ExpandSchedule("2024-03", days, true, stdTemplate())
	require.NoError(t, err)
	assert.Len(t, drafts, 21)

	for _, d := range drafts {
		day, err := time.Parse("2006-01-02", d.Date)
		require.NoError(t, err)
		wd := day.Weekday()
		assert.NotEqual(t, time.Saturday, wd, "weekend draft leaked: %s", d.Date)
		assert.NotEqual(t, time.Sunday, wd, "weekend draft leaked: %s", d.Date)
	}
}

func TestExpandSchedule_DerivesTemplateFields(t *testing.T) {
	drafts, err := reconcile.ExpandSchedule("2024-03", []int{4}, false, stdTemplate())
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	d := drafts[0]
	assert.Equal(t, "2024-03-04", d.Date)
	assert.Equal(t, "09:00", d.StartTime)
	assert.Equal(t, "17:30", d.EndTime) // 8h + 30m break past 09:00
	assert.Equal(t, "8.00", d.TotalHours.StringFixed(2))
	assert.Equal(t, "Bulk Entry", d.Project)
	assert.Equal(t, "Standard Work", d.Task)
	assert.Equal(t, "Work", d.Description)
}

func TestExpandSchedule_DeduplicatesAndDropsOffCalendarDays(t *testing.T) {
	drafts, err := reconcile.ExpandSchedule("2024-02", []int{10, 10, 0, 30, 31}, false, stdTemplate())
	require.NoError(t, err)
	// 2024 is a leap year: day 30 and 31 don't exist in February, the
	// repeated 10th collapses to one draft, 29 would have been valid.
	assert.Len(t, drafts, 1)
	assert.Equal(t, "2024-02-10", drafts[0].Date)
}

func TestExpandSchedule_EmptyAfterFilteringIsNotAnError(t *testing.T) {
	// March 2 and 3, 2024 are a weekend.
	drafts, err := reconcile.ExpandSchedule("2024-03", []int{2, 3}, true, stdTemplate())
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestExpandSchedule_InvalidMonthRejected(t *testing.T) {
	_, err := reconcile.ExpandSchedule("March 2024", []int{1}, false, stdTemplate())
	var vErr *engine.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

// =============================================================================
// BULK SUBMISSION
// =============================================================================

func TestSubmitBulk_PersistsAllDrafts(t *testing.T) {
	mem := memory.New()
	sub, _ := newTestSubmitter(mem)

	result, err := sub.SubmitBulk(context.Background(), "2024-03", []int{4, 5, 6}, true, stdTemplate())
	require.NoError(t, err)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Zero(t, result.ErrorCount)

	entries, err := mem.ListEntries(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// Every persisted entry carries a store-assigned id.
	for _, e := range result.Entries {
		assert.NotEmpty(t, e.ID)
	}
}

func TestSubmitBulk_TallyContinuesPastFailure(t *testing.T) {
	// GIVEN: Five drafts where the third add fails remotely
	// WHEN: Submitting the batch
	// THEN: The loop keeps going: 4 persisted, 1 failed

	mem := memory.New()
	flaky := &flakyStore{EntryStore: mem, failAdds: map[int]bool{2: true}}
	sub, _ := newTestSubmitter(flaky)

	result, err := sub.SubmitBulk(context.Background(), "2024-03", []int{4, 5, 6, 7, 8}, true, stdTemplate())
	require.NoError(t, err)
	assert.Equal(t, 4, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	require.Len(t, result.Errors, 1)

	var remoteErr *engine.RemoteError
	assert.ErrorAs(t, result.Errors[0], &remoteErr)

	entries, err := mem.ListEntries(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 4, "items after the failure were still attempted")
}

func TestSubmitBulk_DuplicateWithinCooldownRejected(t *testing.T) {
	// GIVEN: A completed batch for a given (month, day set)
	// WHEN: Resubmitting identical parameters within the cooldown
	// THEN: The second attempt is rejected before persisting anything

	mem := memory.New()
	sub, _ := newTestSubmitter(mem)
	ctx := context.Background()

	first, err := sub.SubmitBulk(ctx, "2024-03", []int{4, 5}, true, stdTemplate())
	require.NoError(t, err)
	assert.Equal(t, 2, first.SuccessCount)

	_, err = sub.SubmitBulk(ctx, "2024-03", []int{5, 4}, true, stdTemplate())
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrBulkInProgress)

	var inProgress *engine.BulkInProgressError
	assert.ErrorAs(t, err, &inProgress)

	entries, err := mem.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no additional records beyond the first attempt")
}

func TestSubmitBulk_DifferentDaySetsDoNotCollide(t *testing.T) {
	mem := memory.New()
	sub, _ := newTestSubmitter(mem)
	ctx := context.Background()

	_, err := sub.SubmitBulk(ctx, "2024-03", []int{4}, true, stdTemplate())
	require.NoError(t, err)

	_, err = sub.SubmitBulk(ctx, "2024-03", []int{5}, true, stdTemplate())
	assert.NoError(t, err)
}

func TestSubmitBulk_EmptySelectionRejectedBeforeLocking(t *testing.T) {
	mem := memory.New()
	sub, guard := newTestSubmitter(mem)

	_, err := sub.SubmitBulk(context.Background(), "2024-03", []int{2, 3}, true, stdTemplate())
	var vErr *engine.ValidationError
	require.ErrorAs(t, err, &vErr)

	// The key was never claimed, so the same parameters stay available.
	assert.NoError(t, guard.Acquire(reconcile.LockKey("2024-03", []int{2, 3})))
}

func TestSubmitBulk_CancellationPreventsFurtherItems(t *testing.T) {
	mem := memory.New()
	sub, _ := newTestSubmitter(mem)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sub.SubmitBulk(ctx, "2024-03", []int{4, 5, 6}, true, stdTemplate())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.SuccessCount, "no item starts after cancellation")
}
