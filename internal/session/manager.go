package session

import (
	"sort"
	"sync"
	"time"

	"tabpulse/internal/logger"
	"tabpulse/pkg/model"

	"github.com/google/uuid"
)

// Cycle 一个进行中的决策周期
type Cycle struct {
	ID        model.CycleID
	StartedAt time.Time
}

// Manager 跟踪进行中的决策周期并汇总结果
type Manager struct {
	mu       sync.RWMutex
	inflight map[model.CycleID]*Cycle
	stats    model.Stats
	log      logger.Logger
}

// NewManager 创建周期管理器
func NewManager(l logger.Logger) *Manager {
	if l == nil {
		l = logger.NewNop()
	}
	return &Manager{
		inflight: make(map[model.CycleID]*Cycle),
		stats:    model.Stats{ByResult: make(map[model.CycleResult]int64)},
		log:      l,
	}
}

// Begin 登记新周期
func (m *Manager) Begin() *Cycle {
	c := &Cycle{ID: model.CycleID(uuid.NewString()), StartedAt: time.Now()}
	m.mu.Lock()
	m.inflight[c.ID] = c
	n := len(m.inflight)
	m.mu.Unlock()
	if n > 1 {
		m.log.Debug("存在重叠的决策周期", "cycle", string(c.ID), "inflight", n)
	}
	return c
}

// End 结束周期并计入统计
func (m *Manager) End(id model.CycleID, result model.CycleResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.inflight[id]
	if !ok {
		return
	}
	delete(m.inflight, id)
	m.stats.Total++
	m.stats.ByResult[result]++
	m.log.Debug("决策周期结束", "cycle", string(id), "result", string(result), "duration", time.Since(c.StartedAt))
}

// List 返回进行中的周期，按开始时间排序
func (m *Manager) List() []*Cycle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*Cycle, 0, len(m.inflight))
	for _, c := range m.inflight {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartedAt.Before(list[j].StartedAt) })
	return list
}

// Stats 返回统计快照
func (m *Manager) Stats() model.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := model.Stats{Total: m.stats.Total, ByResult: make(map[model.CycleResult]int64, len(m.stats.ByResult))}
	for k, v := range m.stats.ByResult {
		out.ByResult[k] = v
	}
	return out
}
