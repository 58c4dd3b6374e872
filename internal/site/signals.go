package site

import (
	"context"
	"sync"
)

// SiteHook 站点写入回调
type SiteHook func(ctx context.Context, s *Site)

// MigrateHook 迁移完成后回调
type MigrateHook func(ctx context.Context, event MigrateEvent) error

// MigrateEvent 一次迁移的结果
type MigrateEvent struct {
	Provider      string   // sqlite / postgres / mysql / file
	CreatedTables []string // 本次迁移新建的表
	AllowMigrate  bool     // 是否允许在该数据库上写入初始数据
}

// Created 表是否在本次迁移中新建
func (e MigrateEvent) Created(table string) bool {
	for _, t := range e.CreatedTables {
		if t == table {
			return true
		}
	}
	return false
}

// Signals 站点写入与迁移的回调注册表，由存储层在写入前后触发
type Signals struct {
	mu          sync.RWMutex
	preSave     []SiteHook
	postSave    []SiteHook
	preDelete   []SiteHook
	postDelete  []SiteHook
	postMigrate []MigrateHook
}

// NewSignals 创建回调注册表
func NewSignals() *Signals {
	return &Signals{}
}

// ConnectPreSave 注册保存前回调
func (sg *Signals) ConnectPreSave(h SiteHook) {
	sg.mu.Lock()
	sg.preSave = append(sg.preSave, h)
	sg.mu.Unlock()
}

// ConnectPostSave 注册保存成功后回调
func (sg *Signals) ConnectPostSave(h SiteHook) {
	sg.mu.Lock()
	sg.postSave = append(sg.postSave, h)
	sg.mu.Unlock()
}

// ConnectPreDelete 注册删除前回调
func (sg *Signals) ConnectPreDelete(h SiteHook) {
	sg.mu.Lock()
	sg.preDelete = append(sg.preDelete, h)
	sg.mu.Unlock()
}

// ConnectPostDelete 注册删除成功后回调
func (sg *Signals) ConnectPostDelete(h SiteHook) {
	sg.mu.Lock()
	sg.postDelete = append(sg.postDelete, h)
	sg.mu.Unlock()
}

// ConnectPostMigrate 注册迁移后回调
func (sg *Signals) ConnectPostMigrate(h MigrateHook) {
	sg.mu.Lock()
	sg.postMigrate = append(sg.postMigrate, h)
	sg.mu.Unlock()
}

// SendPreSave 触发保存前回调，nil 注册表安全
func (sg *Signals) SendPreSave(ctx context.Context, s *Site) {
	sg.send(ctx, s, func() []SiteHook { return sg.preSave })
}

// SendPostSave 触发保存成功后回调
func (sg *Signals) SendPostSave(ctx context.Context, s *Site) {
	sg.send(ctx, s, func() []SiteHook { return sg.postSave })
}

// SendPreDelete 触发删除前回调
func (sg *Signals) SendPreDelete(ctx context.Context, s *Site) {
	sg.send(ctx, s, func() []SiteHook { return sg.preDelete })
}

// SendPostDelete 触发删除成功后回调
func (sg *Signals) SendPostDelete(ctx context.Context, s *Site) {
	sg.send(ctx, s, func() []SiteHook { return sg.postDelete })
}

// send 复制回调列表后在锁外执行，回调中可再注册或读写存储
func (sg *Signals) send(ctx context.Context, s *Site, list func() []SiteHook) {
	if sg == nil {
		return
	}
	sg.mu.RLock()
	hooks := append([]SiteHook(nil), list()...)
	sg.mu.RUnlock()

	for _, h := range hooks {
		h(ctx, s)
	}
}

// SendPostMigrate 触发迁移后回调，遇到错误立即返回
func (sg *Signals) SendPostMigrate(ctx context.Context, event MigrateEvent) error {
	if sg == nil {
		return nil
	}
	sg.mu.RLock()
	hooks := append([]MigrateHook(nil), sg.postMigrate...)
	sg.mu.RUnlock()

	for _, h := range hooks {
		if err := h(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
