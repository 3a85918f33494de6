package idle

import (
	"context"
	"sync"
	"time"

	"tabpulse/pkg/model"
)

// ActivityDetector 根据最近一次活动时间判断是否空闲
type ActivityDetector struct {
	mu     sync.Mutex
	last   time.Time
	locked bool
	now    func() time.Time
}

// NewActivityDetector 创建检测器，now 为 nil 时使用系统时钟。创建时刻视为一次活动
func NewActivityDetector(now func() time.Time) *ActivityDetector {
	if now == nil {
		now = time.Now
	}
	return &ActivityDetector{last: now(), now: now}
}

// Touch 记录一次用户活动
func (d *ActivityDetector) Touch() {
	d.mu.Lock()
	d.last = d.now()
	d.mu.Unlock()
}

// SetLocked 标记屏幕锁定状态，锁定期间始终报告 locked
func (d *ActivityDetector) SetLocked(locked bool) {
	d.mu.Lock()
	d.locked = locked
	d.mu.Unlock()
}

// QueryState 超过阈值秒数没有活动即为 idle
func (d *ActivityDetector) QueryState(_ context.Context, thresholdSeconds int) (model.IdleState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.locked {
		return model.IdleLocked, nil
	}
	if d.now().Sub(d.last) >= time.Duration(thresholdSeconds)*time.Second {
		return model.IdleIdle, nil
	}
	return model.IdleActive, nil
}
