package handler

import (
	"context"
	"sync"
	"time"

	"tabpulse/internal/ctxkeys"
	"tabpulse/internal/logger"
	"tabpulse/internal/rules"
	"tabpulse/internal/session"
	"tabpulse/pkg/model"
)

// SettingsReader 运行时设置
type SettingsReader interface {
	Load(ctx context.Context) (model.Settings, error)
}

// IdleDetector 空闲检测
type IdleDetector interface {
	QueryState(ctx context.Context, thresholdSeconds int) (model.IdleState, error)
}

// TabSource 活动标签页
type TabSource interface {
	ActiveTab(ctx context.Context) (model.Tab, bool, error)
}

// DevtoolsSet 打开了开发者工具的标签页集合，只做成员判断
type DevtoolsSet interface {
	Contains(id model.TabID) bool
}

// Notifier 图标状态通知
type Notifier interface {
	SetState(state model.UIState)
}

// Sender 心跳投递
type Sender interface {
	Send(ctx context.Context, hb *model.Heartbeat, debug bool) model.Outcome
}

// Handler 决策周期处理器，负责协调设置读取、空闲判断、规则匹配和心跳投递
type Handler struct {
	settings          SettingsReader
	idle              IdleDetector
	tabs              TabSource
	devtools          DevtoolsSet
	notifier          Notifier
	sender            Sender
	cycles            *session.Manager
	detectionInterval int
	log               logger.Logger
}

// Config 配置选项
type Config struct {
	Settings          SettingsReader
	Idle              IdleDetector
	Tabs              TabSource
	Devtools          DevtoolsSet
	Notifier          Notifier
	Sender            Sender
	Cycles            *session.Manager
	DetectionInterval int
	Logger            logger.Logger
}

// New 创建决策周期处理器
func New(cfg Config) *Handler {
	h := &Handler{
		settings:          cfg.Settings,
		idle:              cfg.Idle,
		tabs:              cfg.Tabs,
		devtools:          cfg.Devtools,
		notifier:          cfg.Notifier,
		sender:            cfg.Sender,
		cycles:            cfg.Cycles,
		detectionInterval: cfg.DetectionInterval,
		log:               cfg.Logger,
	}
	if h.log == nil {
		h.log = logger.NewNop()
	}
	if h.cycles == nil {
		h.cycles = session.NewManager(h.log)
	}
	if h.detectionInterval <= 0 {
		h.detectionInterval = 60
	}
	return h
}

// Cycles 周期管理器
func (h *Handler) Cycles() *session.Manager { return h.cycles }

// RecordHeartbeat 执行一次决策周期。所有失败都在周期内消化，不向外返回错误
func (h *Handler) RecordHeartbeat(ctx context.Context) model.CycleResult {
	c := h.cycles.Begin()
	ctx = ctxkeys.WithCycleID(ctx, string(c.ID))
	l := h.log.With("cycle", string(c.ID))

	result := h.run(ctx, l)
	h.cycles.End(c.ID, result)
	return result
}

func (h *Handler) run(ctx context.Context, l logger.Logger) model.CycleResult {
	settings, err := h.settings.Load(ctx)
	if err != nil {
		l.Warn("读取设置失败，按未启用处理", "error", err)
		settings = model.Settings{}
	}
	if !settings.LoggingEnabled {
		h.notify(model.StateNotLogging)
		return model.CycleNotLogging
	}
	h.notify(model.StateAllGood)

	state, err := h.idle.QueryState(ctx, h.detectionInterval)
	if err != nil {
		l.Warn("空闲检测失败", "error", err)
		return model.CycleIdle
	}
	if state != model.IdleActive {
		l.Debug("用户未处于活动状态", "state", string(state))
		return model.CycleIdle
	}

	tab, ok, err := h.tabs.ActiveTab(ctx)
	if err != nil {
		l.Warn("获取活动标签页失败", "error", err)
		return model.CycleNoTab
	}
	if !ok {
		return model.CycleNoTab
	}

	debug := h.devtools != nil && h.devtools.Contains(tab.ID)

	var hb model.Heartbeat
	switch settings.LoggingStyle {
	case model.StyleBlacklist:
		if rules.Contains(tab.URL, settings.Blacklist) {
			h.notify(model.StateBlacklisted)
			l.Info("标签页在黑名单中", "url", tab.URL)
			return model.CycleBlacklisted
		}
		hb = model.Heartbeat{URL: tab.URL}
	case model.StyleWhitelist:
		hb = rules.Match(tab.URL, settings.Whitelist)
		if !hb.Found() {
			h.notify(model.StateWhitelisted)
			l.Info("标签页不在白名单中", "url", tab.URL)
			return model.CycleWhitelisted
		}
	default:
		l.Warn("未知的日志模式", "style", string(settings.LoggingStyle))
		return model.CycleNotLogging
	}

	switch h.sender.Send(ctx, &hb, debug) {
	case model.OutcomeSent:
		return model.CycleSent
	case model.OutcomeUnauthorized:
		return model.CycleUnauthorized
	default:
		return model.CycleFailed
	}
}

func (h *Handler) notify(s model.UIState) {
	if h.notifier != nil {
		h.notifier.SetState(s)
	}
}

// Run 按固定间隔触发决策周期，每个周期独立运行，允许与上一个周期重叠。
// ctx 取消后等待进行中的周期结束再返回
func (h *Handler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	h.log.Info("心跳计时器已启动", "interval", interval.String())

	var wg sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			if inflight := h.cycles.List(); len(inflight) > 0 {
				h.log.Info("等待进行中的决策周期", "inflight", len(inflight))
			}
			wg.Wait()
			h.log.Info("心跳计时器已停止")
			return
		case <-ticker.C:
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.RecordHeartbeat(ctx)
			}()
		}
	}
}
