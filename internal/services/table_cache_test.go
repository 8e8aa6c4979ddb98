package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callpulse/pkg/contracts/domain"
)

func TestTableCacheMemoizes(t *testing.T) {
	loads := 0
	cache := NewTableCache(time.Hour, func(ctx context.Context) (*LoadedTable, error) {
		loads++
		return &LoadedTable{Records: []domain.CallRecord{{SourceID: "Dana"}}}, nil
	})

	first, err := cache.GetOrRefresh(context.Background())
	require.NoError(t, err)
	second, err := cache.GetOrRefresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Same(t, first, second)

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestTableCacheInvalidate(t *testing.T) {
	loads := 0
	cache := NewTableCache(time.Hour, func(ctx context.Context) (*LoadedTable, error) {
		loads++
		return &LoadedTable{}, nil
	})

	_, err := cache.GetOrRefresh(context.Background())
	require.NoError(t, err)

	cache.Invalidate()

	_, err = cache.GetOrRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestTableCacheTTLExpiry(t *testing.T) {
	loads := 0
	cache := NewTableCache(10*time.Millisecond, func(ctx context.Context) (*LoadedTable, error) {
		loads++
		return &LoadedTable{}, nil
	})

	_, err := cache.GetOrRefresh(context.Background())
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = cache.GetOrRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestTableCacheLoadFailureKeepsNothing(t *testing.T) {
	failing := errors.New("scan failed")
	calls := 0
	cache := NewTableCache(time.Hour, func(ctx context.Context) (*LoadedTable, error) {
		calls++
		if calls == 1 {
			return nil, failing
		}
		return &LoadedTable{}, nil
	})

	_, err := cache.GetOrRefresh(context.Background())
	assert.ErrorIs(t, err, failing)

	// The failure is not cached; the next call retries the load.
	table, err := cache.GetOrRefresh(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, table)
}
