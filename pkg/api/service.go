package api

import (
	"context"

	"tabpulse/internal/config"
	"tabpulse/internal/handler"
	"tabpulse/internal/logger"
	"tabpulse/internal/service"
	"tabpulse/pkg/model"
)

// Service 服务接口
type Service interface {
	// RecordHeartbeat 执行一次决策周期
	RecordHeartbeat(ctx context.Context) model.CycleResult

	// Run 启动计时器，阻塞直到 ctx 取消
	Run(ctx context.Context) error

	// PollBrowser 立即同步一次浏览器标签页与开发者工具状态
	PollBrowser(ctx context.Context) error

	// CheckAuth 检查登录状态
	CheckAuth(ctx context.Context) (model.User, bool)

	// TotalTimeLoggedToday 当日累计时长
	TotalTimeLoggedToday(ctx context.Context) (model.GrandTotal, bool)

	// SetTabsWithDevtoolsOpen 设置打开开发者工具的标签页
	SetTabsWithDevtoolsOpen(ids []model.TabID)

	// TabsWithDevtoolsOpen 当前打开了开发者工具的标签页
	TabsWithDevtoolsOpen() []model.TabID

	// TouchActivity 记录一次用户活动
	TouchActivity()

	// SetLocked 标记屏幕锁定状态
	SetLocked(locked bool)

	// Settings 读取设置
	Settings(ctx context.Context) (model.Settings, error)

	// UpdateSetting 修改设置
	UpdateSetting(ctx context.Context, key, value string) error

	// ResetSetting 恢复默认设置
	ResetSetting(ctx context.Context, key string) error

	// ApplySeed 写入配置文件中的设置
	ApplySeed(ctx context.Context, seed *config.SettingsSeed) error

	// Stats 周期统计
	Stats() model.Stats

	// Close 释放资源
	Close() error
}

// NewService 创建并返回服务接口实现
func NewService(cfg *config.Config, l logger.Logger, notifier handler.Notifier) (Service, error) {
	return service.New(cfg, l, notifier)
}
