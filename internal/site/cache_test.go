package site

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetSetInvalidate(t *testing.T) {
	c := NewCache(0)
	defer c.Close()

	a := &Site{ID: 1, Domain: "a.example", Name: "A"}
	b := &Site{ID: 2, Domain: "b.example", Name: "B"}
	c.Set(a)
	c.Set(b)
	assert.Equal(t, 2, c.Len())

	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Same(t, a, got)

	assert.True(t, c.Invalidate(1))
	_, ok = c.Get(1)
	assert.False(t, ok)
	_, ok = c.Get(2)
	assert.True(t, ok)

	// 不存在的 ID 无操作
	assert.False(t, c.Invalidate(42))
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestCacheTTL(t *testing.T) {
	c := NewCache(20 * time.Millisecond)
	defer c.Close()

	c.Set(&Site{ID: 1, Domain: "a.example", Name: "A"})
	_, ok := c.Get(1)
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.Get(1)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestCacheConnectSignals(t *testing.T) {
	sg := NewSignals()
	c := NewCache(0)
	defer c.Close()
	c.Connect(sg)

	a := &Site{ID: 1, Domain: "a.example", Name: "A"}
	b := &Site{ID: 2, Domain: "b.example", Name: "B"}
	c.Set(a)
	c.Set(b)

	sg.SendPreSave(context.Background(), a)
	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	sg.SendPreDelete(context.Background(), b)
	assert.Zero(t, c.Len())

	// 写入后的回调同样失效
	c.Set(a)
	sg.SendPostSave(context.Background(), a)
	assert.Zero(t, c.Len())
	c.Set(b)
	sg.SendPostDelete(context.Background(), b)
	assert.Zero(t, c.Len())

	// 未缓存的站点
	sg.SendPreSave(context.Background(), &Site{ID: 9})
	sg.SendPreSave(context.Background(), nil)
	assert.Zero(t, c.Len())
}

func TestSignalsPostMigrate(t *testing.T) {
	sg := NewSignals()
	var calls []string
	sg.ConnectPostMigrate(func(_ context.Context, e MigrateEvent) error {
		calls = append(calls, "first:"+e.Provider)
		return nil
	})
	sg.ConnectPostMigrate(func(_ context.Context, e MigrateEvent) error {
		calls = append(calls, "second:"+e.Provider)
		return assert.AnError
	})
	sg.ConnectPostMigrate(func(_ context.Context, e MigrateEvent) error {
		calls = append(calls, "third")
		return nil
	})

	err := sg.SendPostMigrate(context.Background(), MigrateEvent{Provider: "sqlite"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"first:sqlite", "second:sqlite"}, calls)

	var nilSignals *Signals
	assert.NoError(t, nilSignals.SendPostMigrate(context.Background(), MigrateEvent{}))
	nilSignals.SendPreSave(context.Background(), &Site{})
}
