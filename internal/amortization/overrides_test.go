package amortization

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverrideStore_Bounds(t *testing.T) {
	store := NewOverrideStore(d("200"))

	lower, upper := store.Bounds()
	assert.True(t, lower.Equal(d("100")))
	assert.True(t, upper.Equal(d("600")))
}

func TestOverrideStore_StageWithinBounds(t *testing.T) {
	store := NewOverrideStore(d("200"))

	tests := []string{"100", "100.00", "250", "600"}
	for i, amount := range tests {
		require.NoError(t, store.Stage(i+1, d(amount), nil), amount)
	}
	assert.Equal(t, len(tests), store.Len())
}

func TestOverrideStore_RejectsOutOfRange(t *testing.T) {
	store := NewOverrideStore(d("200"))
	require.NoError(t, store.Stage(2, d("250"), nil))

	for _, amount := range []string{"99.99", "0", "600.01", "-5"} {
		err := store.Stage(2, d(amount), nil)
		require.Error(t, err, amount)
		assert.True(t, errors.Is(err, domain.ErrOverrideRejected))
	}

	// Prior state retained
	o, ok := store.Snapshot().Lookup(2)
	require.True(t, ok)
	assert.True(t, o.Amount.Equal(d("250")))
}

func TestOverrideStore_RejectedStageLeavesDisplayUnchanged(t *testing.T) {
	store := NewOverrideStore(d("225"))

	err := store.Stage(1, d("100"), nil)
	require.Error(t, err)

	rows := Reconcile(rawSchedule(false, false), store.Snapshot())
	assert.True(t, rows[0].Payment.Equal(d("225")))
	assert.False(t, rows[0].IsModified)
}

func TestOverrideStore_InvalidNumber(t *testing.T) {
	store := NewOverrideStore(d("200"))

	err := store.Stage(0, d("200"), nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestOverrideStore_ClearAndReset(t *testing.T) {
	store := NewOverrideStore(d("200"))
	require.NoError(t, store.Stage(1, d("200"), nil))
	require.NoError(t, store.Stage(2, d("300"), nil))

	store.Clear(1)
	store.Clear(9) // no-op
	_, ok := store.Snapshot().Lookup(1)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())

	store.Reset()
	assert.Zero(t, store.Len())
}

func TestOverrideStore_SnapshotIsIsolated(t *testing.T) {
	store := NewOverrideStore(d("200"))
	when := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Stage(1, d("200"), &when))

	snap := store.Snapshot()
	when = when.AddDate(1, 0, 0)
	require.NoError(t, store.Stage(1, d("300"), nil))

	o, ok := snap.Lookup(1)
	require.True(t, ok)
	assert.True(t, o.Amount.Equal(d("200")))
	assert.Equal(t, 2026, o.Date.Year())
}

func TestOverrideStore_Restore(t *testing.T) {
	store := RestoreOverrideStore(d("200"), domain.OverrideSnapshot{3: {Amount: d("250")}})

	assert.Equal(t, 1, store.Len())
	o, ok := store.Snapshot().Lookup(3)
	require.True(t, ok)
	assert.True(t, o.Amount.Equal(d("250")))
}

func TestOverrideStore_ConcurrentStage(t *testing.T) {
	store := NewOverrideStore(d("200"))

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Stage(n, d("200"), nil)
			_ = store.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}
