package xfer

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemaphoreMutualExclusion(t *testing.T) {
	sem, err := NewAdmissionSemaphore()
	require.NoError(t, err)
	defer sem.Unlink()

	const workers = 50
	var inside, maxInside, done int32
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := sem.Do(context.Background(), func() error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(200 * time.Microsecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
			atomic.AddInt32(&done, 1)
		}()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(10 * time.Second):
		t.Fatal("workers did not all acquire the token")
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInside))
	assert.Equal(t, int32(workers), atomic.LoadInt32(&done))
}

func TestSemaphoreNamespace(t *testing.T) {
	name := "/sem-test-namespace"
	sem, err := CreateSemaphore(name)
	require.NoError(t, err)

	_, err = CreateSemaphore(name)
	assert.ErrorIs(t, err, ErrSemaphoreExists)

	opened, err := OpenSemaphore(name)
	require.NoError(t, err)
	assert.Same(t, sem, opened)

	sem.Unlink()
	_, err = OpenSemaphore(name)
	assert.ErrorIs(t, err, ErrSemaphoreNotFound)

	// the handle outlives the name
	require.True(t, opened.TryAcquire())
	assert.False(t, sem.TryAcquire())
	opened.Release()
	assert.True(t, sem.TryAcquire())
	sem.Release()
}

func TestAdmissionSemaphoreNamesAreUnique(t *testing.T) {
	a, err := NewAdmissionSemaphore()
	require.NoError(t, err)
	defer a.Unlink()
	b, err := NewAdmissionSemaphore()
	require.NoError(t, err)
	defer b.Unlink()

	assert.NotEqual(t, a.Name(), b.Name())
	assert.Regexp(t, `^/sem-`, a.Name())
}

func TestSemaphoreAcquireHonorsContext(t *testing.T) {
	sem, err := NewAdmissionSemaphore()
	require.NoError(t, err)
	defer sem.Unlink()

	require.NoError(t, sem.Acquire(context.Background()))
	defer sem.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sem.Acquire(ctx), context.DeadlineExceeded)
}

func TestSemaphoreDoReleasesOnPanic(t *testing.T) {
	sem, err := NewAdmissionSemaphore()
	require.NoError(t, err)
	defer sem.Unlink()

	assert.Panics(t, func() {
		_ = sem.Do(context.Background(), func() error {
			panic("boom")
		})
	})
	require.True(t, sem.TryAcquire())
	sem.Release()
}

func TestSemaphoreReleaseWithoutAcquirePanics(t *testing.T) {
	sem, err := NewAdmissionSemaphore()
	require.NoError(t, err)
	defer sem.Unlink()

	assert.Panics(t, sem.Release)
}

func TestSemaphoreWakesWaiter(t *testing.T) {
	sem, err := NewAdmissionSemaphore()
	require.NoError(t, err)
	defer sem.Unlink()

	require.NoError(t, sem.Acquire(context.Background()))

	acquired := make(chan struct{})
	go func() {
		if err := sem.Acquire(context.Background()); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("waiter acquired a held token")
	case <-time.After(30 * time.Millisecond):
	}

	sem.Release()
	select {
	case <-acquired:
		sem.Release()
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken")
	}
}
