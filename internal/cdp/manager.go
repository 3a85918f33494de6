package cdp

import (
	"context"
	"errors"
	"fmt"

	adapter "tabpulse/internal/adapter/cdp"
	"tabpulse/internal/logger"
	"tabpulse/pkg/model"

	"github.com/mafredri/cdp/devtool"
)

var ErrNoBrowser = errors.New("browser devtools endpoint unavailable")

// Snapshot 一次目标列表的快照
type Snapshot struct {
	Active   *model.Tab
	Devtools []model.TabID
}

// Manager 通过 DevTools HTTP 接口读取浏览器标签页
type Manager struct {
	devtoolsURL string
	dt          *devtool.DevTools
	log         logger.Logger
}

func New(devtoolsURL string, l logger.Logger) *Manager {
	if l == nil {
		l = logger.NewNop()
	}
	return &Manager{devtoolsURL: devtoolsURL, dt: devtool.New(devtoolsURL), log: l}
}

// Snapshot 列出目标。浏览器按最近激活顺序返回页面，第一个普通页面视为活动标签页
func (m *Manager) Snapshot(ctx context.Context) (Snapshot, error) {
	targets, err := m.dt.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrNoBrowser, m.devtoolsURL, err)
	}
	var snap Snapshot
	for _, t := range targets {
		if adapter.IsDevtoolsFrontend(t) {
			if id, ok := adapter.InspectedTabID(t.URL); ok {
				snap.Devtools = append(snap.Devtools, id)
			}
			continue
		}
		if !adapter.IsUserPage(t) {
			continue
		}
		if snap.Active == nil {
			tab := adapter.ToTab(t)
			snap.Active = &tab
		}
	}
	return snap, nil
}

// ActiveTab 返回当前活动标签页，没有时 ok 为 false
func (m *Manager) ActiveTab(ctx context.Context) (model.Tab, bool, error) {
	snap, err := m.Snapshot(ctx)
	if err != nil {
		return model.Tab{}, false, err
	}
	if snap.Active == nil {
		return model.Tab{}, false, nil
	}
	return *snap.Active, true, nil
}
