package devtools

import (
	"slices"
	"sync"

	"tabpulse/pkg/model"
)

// Set 打开了开发者工具的标签页集合，保持加入顺序
type Set struct {
	mu  sync.RWMutex
	ids []model.TabID
}

func NewSet(ids ...model.TabID) *Set {
	s := &Set{}
	s.Replace(ids)
	return s
}

// Replace 整体替换集合
func (s *Set) Replace(ids []model.TabID) {
	out := make([]model.TabID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	s.mu.Lock()
	s.ids = out
	s.mu.Unlock()
}

func (s *Set) Contains(id model.TabID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.ids, id)
}

// List 当前集合的副本
func (s *Set) List() []model.TabID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}
