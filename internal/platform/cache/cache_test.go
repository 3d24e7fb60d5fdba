package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_FillsOnceUntilDeleted(t *testing.T) {
	c := New(time.Minute)
	calls := 0
	fill := func() (any, error) {
		calls++
		return "value", nil
	}

	first, err := c.Fetch("key", fill)
	require.NoError(t, err)
	second, err := c.Fetch("key", fill)
	require.NoError(t, err)

	assert.Equal(t, "value", first)
	assert.Equal(t, "value", second)
	assert.Equal(t, 1, calls)

	c.Delete("key")
	_, err = c.Fetch("key", fill)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetch_ErrorIsNotCached(t *testing.T) {
	c := New(time.Minute)
	boom := errors.New("boom")
	_, err := c.Fetch("key", func() (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestGet_ExpiresAfterTTL(t *testing.T) {
	c := New(time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("key", 42)
	_, ok := c.Get("key")
	require.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = c.Get("key")
	assert.False(t, ok)
}
