package cdp

import (
	"context"
	"time"

	"tabpulse/internal/logger"
	"tabpulse/pkg/model"
)

// TargetSource 目标列表快照来源，*Manager 实现该接口
type TargetSource interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// DevtoolsTracker 接收打开开发者工具的标签页集合
type DevtoolsTracker interface {
	Replace(ids []model.TabID)
}

// ActivityRecorder 记录用户活动
type ActivityRecorder interface {
	Touch()
}

// Watcher 定期轮询目标列表：同步开发者工具集合；只要存在活动标签页就记录一次活动，
// 浏览器不可达或没有页面时不记录，由空闲检测器按阈值转为 idle
type Watcher struct {
	src      TargetSource
	devtools DevtoolsTracker
	activity ActivityRecorder
	log      logger.Logger

	last model.Tab
}

func NewWatcher(src TargetSource, devtools DevtoolsTracker, activity ActivityRecorder, l logger.Logger) *Watcher {
	if l == nil {
		l = logger.NewNop()
	}
	return &Watcher{src: src, devtools: devtools, activity: activity, log: l}
}

// Poll 执行一次轮询
func (w *Watcher) Poll(ctx context.Context) error {
	snap, err := w.src.Snapshot(ctx)
	if err != nil {
		return err
	}
	if w.devtools != nil {
		w.devtools.Replace(snap.Devtools)
	}
	var cur model.Tab
	if snap.Active != nil {
		cur = *snap.Active
	}
	if cur != w.last {
		w.log.Debug("活动标签页变化", "tab", string(cur.ID), "url", cur.URL)
		w.last = cur
	}
	if w.activity != nil && cur.ID != "" {
		w.activity.Touch()
	}
	return nil
}

// Run 按间隔轮询直到 ctx 取消，错误只记录
func (w *Watcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := w.Poll(ctx); err != nil {
			w.log.Warn("轮询浏览器目标失败", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
