package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"go-contacts-api/internal/core/cache"
)

type payload struct {
	Name string `json:"name"`
}

func newCache(t *testing.T) *cache.Cache {
	mr := miniredis.RunT(t)
	return cache.New(mr.Addr(), "", 0)
}

func TestGetOrLoadJSONCachesLoad(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	loads := 0
	load := func(ctx context.Context) (*payload, error) {
		loads++
		return &payload{Name: "alice"}, nil
	}

	v, err := cache.GetOrLoadJSON[payload](c, ctx, "k1", time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, "alice", v.Name)

	// 第二次命中缓存，不再回源
	v, err = cache.GetOrLoadJSON[payload](c, ctx, "k1", time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, "alice", v.Name)
	require.Equal(t, 1, loads)
}

func TestInvalidateForcesReload(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	loads := 0
	load := func(ctx context.Context) (*payload, error) {
		loads++
		return &payload{Name: "bob"}, nil
	}

	_, err := cache.GetOrLoadJSON[payload](c, ctx, "k2", time.Minute, load)
	require.NoError(t, err)

	c.Invalidate(ctx, "k2")

	_, err = cache.GetOrLoadJSON[payload](c, ctx, "k2", time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, 2, loads)
}
