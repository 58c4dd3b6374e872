package site

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// BunStore 基于 bun 的数据库存储
type BunStore struct {
	db      *bun.DB
	signals *Signals
}

var _ Store = (*BunStore)(nil)

// NewBunStore 创建数据库存储
func NewBunStore(db *bun.DB, signals *Signals) *BunStore {
	return &BunStore{db: db, signals: signals}
}

// Get 按主键读取
func (s *BunStore) Get(ctx context.Context, id int64) (*Site, error) {
	site := new(Site)
	err := s.db.NewSelect().
		Model(site).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("站点 %d: %w", id, ErrSiteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("查询站点 %d 失败: %w", id, err)
	}
	return site, nil
}

// List 按 ID 顺序列出所有站点
func (s *BunStore) List(ctx context.Context) ([]*Site, error) {
	var sites []*Site
	err := s.db.NewSelect().
		Model(&sites).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询站点列表失败: %w", err)
	}
	return sites, nil
}

// Save 保存站点，已有记录则更新
func (s *BunStore) Save(ctx context.Context, site *Site) error {
	s.signals.SendPreSave(ctx, site)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if site.ID != 0 {
			exists, err := tx.NewSelect().
				Model((*Site)(nil)).
				Where("id = ?", site.ID).
				Exists(ctx)
			if err != nil {
				return fmt.Errorf("查询站点 %d 失败: %w", site.ID, err)
			}
			if exists {
				if _, err := tx.NewUpdate().Model(site).WherePK().Exec(ctx); err != nil {
					return fmt.Errorf("更新站点 %d 失败: %w", site.ID, err)
				}
				return nil
			}
		}

		if _, err := tx.NewInsert().Model(site).Exec(ctx); err != nil {
			return fmt.Errorf("插入站点失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 事务提交后再次失效，清除写入期间被回填的旧值
	s.signals.SendPostSave(ctx, site)
	return nil
}

// Delete 删除站点
func (s *BunStore) Delete(ctx context.Context, site *Site) error {
	s.signals.SendPreDelete(ctx, site)

	res, err := s.db.NewDelete().
		Model(site).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("删除站点 %d 失败: %w", site.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("站点 %d: %w", site.ID, ErrSiteNotFound)
	}
	s.signals.SendPostDelete(ctx, site)
	return nil
}

// ResetSequence 同步自增序列
func (s *BunStore) ResetSequence(ctx context.Context) error {
	stmts := sequenceResetSQL(s.db.Dialect().Name())
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("重置序列失败: %w", err)
		}
	}
	return nil
}

// sequenceResetSQL sqlite 和 mysql 在显式插入主键时会自动推进计数器
func sequenceResetSQL(name dialect.Name) []string {
	switch name {
	case dialect.PG:
		return []string{
			"SELECT setval(pg_get_serial_sequence('" + TableName + "', 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL) FROM " + TableName,
		}
	default:
		return nil
	}
}
