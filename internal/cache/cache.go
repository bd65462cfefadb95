package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ErrNotDir는 캐시 경로가 존재하지만 디렉토리가 아닐 때의 sentinel error다.
var ErrNotDir = errors.New("캐시 경로가 디렉토리가 아님")

// Cache는 QACACHEDIR 디렉토리 핸들이다.
type Cache struct {
	Dir string
}

// Entry는 캐시 디렉토리 최상위 항목 하나다.
type Entry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	IsDir   bool      `json:"is_dir"`
	ModTime time.Time `json:"mod_time"`
}

// Open은 dir에 대한 Cache를 반환한다. 디렉토리 존재 여부는 확인하지 않는다.
func Open(dir string) *Cache {
	return &Cache{Dir: dir}
}

// Entries는 최상위 항목을 이름순으로 반환한다. 디렉토리가 없으면 빈 목록 (graceful).
// 하위 디렉토리의 Size는 포함된 파일 크기의 합이다.
// 경로가 일반 파일이면 ErrNotDir를 반환한다.
func (c *Cache) Entries() ([]Entry, error) {
	items, err := c.readDir()
	if err != nil {
		return nil, fmt.Errorf("cache.Entries: %w", err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		info, err := item.Info()
		if err != nil {
			continue // 조회 중 삭제된 항목
		}
		e := Entry{Name: item.Name(), IsDir: item.IsDir(), ModTime: info.ModTime()}
		if item.IsDir() {
			e.Size = dirSize(filepath.Join(c.Dir, item.Name()))
		} else {
			e.Size = info.Size()
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Size는 캐시 전체 크기(바이트)다.
func (c *Cache) Size() (int64, error) {
	entries, err := c.Entries()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total, nil
}

// Purge는 디렉토리 자체는 남기고 내용만 삭제한다. 삭제한 항목 수를 반환한다.
// 경로가 디렉토리가 아니면 아무것도 지우지 않고 ErrNotDir를 반환한다.
func (c *Cache) Purge() (int, error) {
	items, err := c.readDir()
	if err != nil {
		return 0, fmt.Errorf("cache.Purge: %w", err)
	}
	removed := 0
	for _, item := range items {
		if err := os.RemoveAll(filepath.Join(c.Dir, item.Name())); err != nil {
			return removed, fmt.Errorf("cache.Purge: %w", err)
		}
		removed++
	}
	return removed, nil
}

// readDir는 디렉토리가 없으면 빈 목록을 반환한다.
func (c *Cache) readDir() ([]os.DirEntry, error) {
	info, err := os.Stat(c.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, c.Dir)
	}
	return os.ReadDir(c.Dir)
}

func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // 읽을 수 없는 항목은 건너뛴다
		}
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}
