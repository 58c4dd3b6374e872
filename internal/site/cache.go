package site

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache 当前站点缓存，按站点 ID 索引
type Cache struct {
	items   *ttlcache.Cache[int64, *Site]
	started bool
	once    sync.Once
}

// NewCache 创建缓存，ttl <= 0 时条目不过期
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{}
	if ttl > 0 {
		c.items = ttlcache.New(
			ttlcache.WithTTL[int64, *Site](ttl),
			ttlcache.WithDisableTouchOnHit[int64, *Site](),
		)
		c.started = true
		go c.items.Start()
	} else {
		c.items = ttlcache.New[int64, *Site]()
	}
	return c
}

// Get 读取缓存
func (c *Cache) Get(id int64) (*Site, bool) {
	item := c.items.Get(id)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set 写入缓存
func (c *Cache) Set(s *Site) {
	c.items.Set(s.ID, s, ttlcache.DefaultTTL)
}

// Invalidate 移除单个站点，返回条目是否存在
func (c *Cache) Invalidate(id int64) bool {
	_, ok := c.items.GetAndDelete(id)
	return ok
}

// Clear 清空缓存
func (c *Cache) Clear() {
	c.items.DeleteAll()
}

// Len 缓存条目数
func (c *Cache) Len() int {
	return c.items.Len()
}

// Connect 订阅保存/删除回调，写入前后各失效一次对应缓存。
// 写入期间并发的 GetCurrent 可能回填旧值，写入后的失效将其清除
func (c *Cache) Connect(sg *Signals) {
	invalidate := func(_ context.Context, s *Site) {
		if s == nil {
			return
		}
		if c.Invalidate(s.ID) {
			slog.Debug("站点缓存已失效", "site_id", s.ID)
		}
	}
	sg.ConnectPreSave(invalidate)
	sg.ConnectPostSave(invalidate)
	sg.ConnectPreDelete(invalidate)
	sg.ConnectPostDelete(invalidate)
}

// Close 停止过期清理协程
func (c *Cache) Close() {
	c.once.Do(func() {
		if c.started {
			c.items.Stop()
		}
	})
}
