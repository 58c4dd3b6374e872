package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Store 站点存储接口
type Store interface {
	// Get 按主键读取，不存在时返回 ErrSiteNotFound
	Get(ctx context.Context, id int64) (*Site, error)
	List(ctx context.Context) ([]*Site, error)
	// Save ID 为 0 或记录不存在时插入，否则更新
	Save(ctx context.Context, s *Site) error
	Delete(ctx context.Context, s *Site) error
	// ResetSequence 显式指定主键插入后，同步自增序列
	ResetSequence(ctx context.Context) error
}

// fileData 站点文件结构
type fileData struct {
	NextID int64   `json:"next_id"`
	Sites  []*Site `json:"sites"`
}

// FileStore 基于文件的站点存储
type FileStore struct {
	path    string
	signals *Signals
	mu      sync.RWMutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore 创建文件存储
func NewFileStore(dataDir string, signals *Signals) *FileStore {
	return &FileStore{
		path:    filepath.Join(dataDir, "sites.json"),
		signals: signals,
	}
}

// Init 确保站点文件存在，返回是否为新建
func (s *FileStore) Init(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("读取站点文件失败: %w", err)
	}

	if err := s.saveInternal(&fileData{NextID: 1, Sites: []*Site{}}); err != nil {
		return false, err
	}
	return true, nil
}

// Drop 删除站点文件，文件不存在时无操作
func (s *FileStore) Drop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除站点文件失败: %w", err)
	}
	return nil
}

// Get 根据 ID 获取站点
func (s *FileStore) Get(_ context.Context, id int64) (*Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.loadInternal()
	if err != nil {
		return nil, err
	}
	for _, site := range data.Sites {
		if site.ID == id {
			return site, nil
		}
	}
	return nil, fmt.Errorf("站点 %d: %w", id, ErrSiteNotFound)
}

// List 按 ID 顺序列出所有站点
func (s *FileStore) List(_ context.Context) ([]*Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.loadInternal()
	if err != nil {
		return nil, err
	}
	sort.Slice(data.Sites, func(i, j int) bool { return data.Sites[i].ID < data.Sites[j].ID })
	return data.Sites, nil
}

// Save 保存站点
func (s *FileStore) Save(ctx context.Context, site *Site) error {
	s.signals.SendPreSave(ctx, site)
	if err := s.save(site); err != nil {
		return err
	}
	s.signals.SendPostSave(ctx, site)
	return nil
}

func (s *FileStore) save(site *Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadInternal()
	if err != nil {
		return err
	}

	if site.ID != 0 {
		for i, existing := range data.Sites {
			if existing.ID == site.ID {
				data.Sites[i] = site
				return s.saveInternal(data)
			}
		}
		// 显式主键推进序列，与 sqlite/mysql 自增行为一致
		data.NextID = max(data.NextID, site.ID+1)
	} else {
		for _, existing := range data.Sites {
			if existing.ID == data.NextID {
				return fmt.Errorf("站点 ID %d 已存在，需要重置序列", data.NextID)
			}
		}
		site.ID = data.NextID
		data.NextID++
	}

	data.Sites = append(data.Sites, site)
	return s.saveInternal(data)
}

// Delete 删除站点
func (s *FileStore) Delete(ctx context.Context, site *Site) error {
	s.signals.SendPreDelete(ctx, site)
	if err := s.delete(site); err != nil {
		return err
	}
	s.signals.SendPostDelete(ctx, site)
	return nil
}

func (s *FileStore) delete(site *Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadInternal()
	if err != nil {
		return err
	}

	found := false
	sites := make([]*Site, 0, len(data.Sites))
	for _, existing := range data.Sites {
		if existing.ID != site.ID {
			sites = append(sites, existing)
		} else {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("站点 %d: %w", site.ID, ErrSiteNotFound)
	}

	data.Sites = sites
	return s.saveInternal(data)
}

// ResetSequence 将下一个 ID 设置为当前最大 ID + 1
func (s *FileStore) ResetSequence(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadInternal()
	if err != nil {
		return err
	}
	var maxID int64
	for _, site := range data.Sites {
		if site.ID > maxID {
			maxID = site.ID
		}
	}
	data.NextID = maxID + 1
	return s.saveInternal(data)
}

// GetPath 返回存储文件路径
func (s *FileStore) GetPath() string {
	return s.path
}

// loadInternal 内部加载方法（不加锁）
func (s *FileStore) loadInternal() (*fileData, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &fileData{NextID: 1, Sites: []*Site{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取站点文件失败: %w", err)
	}

	data := &fileData{}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("解析站点文件失败: %w", err)
	}
	if data.NextID < 1 {
		data.NextID = 1
	}
	return data, nil
}

// saveInternal 内部保存方法（不加锁）
func (s *FileStore) saveInternal(data *fileData) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化站点失败: %w", err)
	}

	// 先写临时文件再替换，避免写一半的文件
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("写入站点文件失败: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("写入站点文件失败: %w", err)
	}
	return nil
}
