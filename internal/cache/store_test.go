package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetOrLoadUsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, 0)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", time.Minute, loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errors.New("unexpected loaded value")
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), calls.Load())
}

func TestStoreGetOrLoadUsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, 0)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	_, err := store.GetOrLoad(context.Background(), "k", time.Minute, loader)
	require.NoError(t, err)
	_, err = store.GetOrLoad(context.Background(), "k", time.Minute, loader)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
}

func TestStoreLoadErrorIsNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, 0)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, errors.New("boom")
	}

	_, err := store.GetOrLoad(context.Background(), "k", time.Minute, loader)
	require.Error(t, err)
	_, err = store.GetOrLoad(context.Background(), "k", time.Minute, loader)
	require.Error(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestStoreEntriesExpire(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, 0)
	store.Set(context.Background(), "k", "v", 10*time.Millisecond)

	_, ok := store.Get(context.Background(), "k")
	assert.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = store.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, 0)
	store.Set(context.Background(), "k", "v", time.Minute)
	store.Delete(context.Background(), "k")

	_, ok := store.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestStoreCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, time.Millisecond)
	store.Close()
	store.Close()
}
