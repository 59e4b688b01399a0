package keylock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyLock_MutualExclusion(t *testing.T) {
	kl := New()

	const workers = 50
	var wg sync.WaitGroup
	counter := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := kl.Acquire(context.Background(), "p1")
			if err != nil {
				t.Error(err)
				return
			}
			defer release()
			// Read-modify-write without any other synchronization: only the
			// per-key lock keeps this race-free.
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyLock_DifferentKeysDoNotContend(t *testing.T) {
	kl := New()

	releaseA, err := kl.Acquire(context.Background(), "a")
	require.NoError(t, err)
	defer releaseA()

	// Acquiring an unrelated key while "a" is held must not block.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	releaseB, err := kl.Acquire(ctx, "b")
	require.NoError(t, err)
	releaseB()
}

func TestKeyLock_AcquireRespectsContext(t *testing.T) {
	kl := New()

	release, err := kl.Acquire(context.Background(), "p1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = kl.Acquire(ctx, "p1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()

	// Lock is usable again after the failed acquire.
	release2, err := kl.Acquire(context.Background(), "p1")
	require.NoError(t, err)
	release2()
}

func TestKeyLock_EntryEvictedWhenIdle(t *testing.T) {
	kl := New()

	release, err := kl.Acquire(context.Background(), "p1")
	require.NoError(t, err)
	release()

	kl.mu.Lock()
	defer kl.mu.Unlock()
	assert.Empty(t, kl.locks)
}
