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

type item struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestGetOrLoadJSON_CachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemory(time.Minute))
	var loads int32
	load := func(context.Context) (*item, error) {
		atomic.AddInt32(&loads, 1)
		return &item{ID: 1, Name: "shirts"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrLoadJSON(c, ctx, "category:1", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, "shirts", got.Name)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&loads))

	require.NoError(t, c.Invalidate(ctx, "category:1"))
	_, err := GetOrLoadJSON(c, ctx, "category:1", time.Minute, load)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&loads))
}

func TestGetOrLoadJSON_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemory(time.Minute))
	boom := errors.New("boom")

	_, err := GetOrLoadJSON(c, ctx, "k", time.Minute, func(context.Context) (*item, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	got, err := GetOrLoadJSON(c, ctx, "k", time.Minute, func(context.Context) (*item, error) { return &item{ID: 2}, nil })
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.ID)
}

func TestGetOrLoadJSON_NilCache(t *testing.T) {
	got, err := GetOrLoadJSON[item](nil, context.Background(), "k", time.Minute, func(context.Context) (*item, error) {
		return &item{ID: 3}, nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.ID)
}

func TestGetOrLoad_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemory(time.Minute))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := c.GetOrLoad(ctx, "shared", time.Minute, func(context.Context) ([]byte, error) {
				time.Sleep(5 * time.Millisecond)
				return []byte("v"), nil
			})
			assert.NoError(t, err)
			assert.Equal(t, "v", string(b))
		}()
	}
	wg.Wait()
}

func TestMemoryStore_Miss(t *testing.T) {
	s := NewMemory(time.Minute)
	_, err := s.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestGetOrLoadJSON_NilNotStored(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemory(time.Minute))

	got, err := GetOrLoadJSON(c, ctx, "k", time.Minute, func(context.Context) (*item, error) { return nil, nil })
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = GetOrLoadJSON(c, ctx, "k", time.Minute, func(context.Context) (*item, error) { return &item{ID: 4}, nil })
	require.NoError(t, err)
	assert.EqualValues(t, 4, got.ID)
}

func TestGetOrLoadJSON_CorruptEntryReloads(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(time.Minute)
	require.NoError(t, s.Set(ctx, "k", []byte("{not json"), time.Minute))
	c := New(s)

	got, err := GetOrLoadJSON(c, ctx, "k", time.Minute, func(context.Context) (*item, error) { return &item{ID: 5}, nil })
	require.NoError(t, err)
	assert.EqualValues(t, 5, got.ID)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}
