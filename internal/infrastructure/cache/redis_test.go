package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRedis_Success(t *testing.T) {
	s := miniredis.RunT(t)

	c, err := OpenRedis(context.Background(), Options{Addr: s.Addr(), DB: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	opts := c.Options()
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 2*time.Second, opts.ReadTimeout)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Set(ctx, "k", "v", 0).Err())
	v, err := c.Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestOpenRedis_Failure(t *testing.T) {
	// unresolvable host: ping fails without waiting for the full timeout
	_, err := OpenRedis(context.Background(), Options{Addr: "not-a-real-host:6379"})
	assert.Error(t, err)
}
