package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tabpulse/internal/apiclient"
	"tabpulse/internal/cdp"
	"tabpulse/internal/config"
	"tabpulse/internal/devtools"
	"tabpulse/internal/executor"
	"tabpulse/internal/handler"
	"tabpulse/internal/idle"
	"tabpulse/internal/logger"
	"tabpulse/internal/session"
	"tabpulse/internal/storage"
	"tabpulse/pkg/model"
)

// Service 组装各组件的服务实现
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	store    *storage.SettingsStore
	browser  *cdp.Manager
	watcher  *cdp.Watcher
	devtools *devtools.Set
	activity *idle.ActivityDetector
	api      *apiclient.Client
	handler  *handler.Handler
}

// New 创建服务。notifier 为 nil 时丢弃状态通知
func New(cfg *config.Config, l logger.Logger, notifier handler.Notifier) (*Service, error) {
	if l == nil {
		l = logger.NewNop()
	}
	store, err := storage.Open(cfg.Sqlite.Dsn, cfg.Sqlite.Prefix, l)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.API.Timeout}
	s := &Service{
		cfg:      cfg,
		log:      l,
		store:    store,
		browser:  cdp.New(cfg.Browser.DevToolsURL, l),
		devtools: devtools.NewSet(),
		activity: idle.NewActivityDetector(time.Now),
		api: apiclient.New(apiclient.Config{
			CurrentUserURL: cfg.API.CurrentUserURL,
			SummariesURL:   cfg.API.SummariesURL,
			APIKey:         cfg.API.APIKey,
			HTTPClient:     httpClient,
			Logger:         l,
		}),
	}
	s.watcher = cdp.NewWatcher(s.browser, s.devtools, s.activity, l)

	sender := executor.New(executor.Config{
		HeartbeatURL: cfg.API.HeartbeatURL,
		APIKey:       cfg.API.APIKey,
		Version:      cfg.Version,
		HTTPClient:   httpClient,
		Notifier:     notifier,
		Logger:       l,
	})
	s.handler = handler.New(handler.Config{
		Settings:          store,
		Idle:              s.activity,
		Tabs:              s.browser,
		Devtools:          s.devtools,
		Notifier:          notifier,
		Sender:            sender,
		Cycles:            session.NewManager(l),
		DetectionInterval: cfg.Tracker.DetectionInterval,
		Logger:            l,
	})

	if err := s.ApplySeed(context.Background(), cfg.Settings); err != nil {
		_ = store.Close()
		return nil, err
	}
	return s, nil
}

// RecordHeartbeat 执行一次决策周期
func (s *Service) RecordHeartbeat(ctx context.Context) model.CycleResult {
	return s.handler.RecordHeartbeat(ctx)
}

// Run 启动浏览器轮询与心跳计时器，阻塞直到 ctx 取消
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Tracker.Interval <= 0 {
		return fmt.Errorf("tracker interval must be positive, got %v", s.cfg.Tracker.Interval)
	}
	if s.cfg.Browser.PollInterval > 0 {
		go s.watcher.Run(ctx, s.cfg.Browser.PollInterval)
	}
	s.handler.Run(ctx, s.cfg.Tracker.Interval)
	return nil
}

// PollBrowser 立即同步一次浏览器状态
func (s *Service) PollBrowser(ctx context.Context) error { return s.watcher.Poll(ctx) }

func (s *Service) CheckAuth(ctx context.Context) (model.User, bool) { return s.api.CheckAuth(ctx) }

func (s *Service) TotalTimeLoggedToday(ctx context.Context) (model.GrandTotal, bool) {
	return s.api.TotalTimeLoggedToday(ctx)
}

// SetTabsWithDevtoolsOpen 整体替换开发者工具集合
func (s *Service) SetTabsWithDevtoolsOpen(ids []model.TabID) { s.devtools.Replace(ids) }

// TabsWithDevtoolsOpen 当前打开了开发者工具的标签页
func (s *Service) TabsWithDevtoolsOpen() []model.TabID { return s.devtools.List() }

// TouchActivity 记录一次用户活动
func (s *Service) TouchActivity() { s.activity.Touch() }

// SetLocked 由外部的锁屏通知调用，锁定期间周期在空闲检测处结束
func (s *Service) SetLocked(locked bool) {
	s.activity.SetLocked(locked)
	s.log.Info("锁屏状态变化", "locked", locked)
}

func (s *Service) Settings(ctx context.Context) (model.Settings, error) { return s.store.Load(ctx) }

func (s *Service) UpdateSetting(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, key, value)
}

func (s *Service) ResetSetting(ctx context.Context, key string) error {
	if !storage.KnownKey(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	return s.store.Delete(ctx, key)
}

// ApplySeed 将配置文件中的设置写入存储
func (s *Service) ApplySeed(ctx context.Context, seed *config.SettingsSeed) error {
	kv := SeedValues(seed)
	if len(kv) == 0 {
		return nil
	}
	if err := s.store.SetMany(ctx, kv); err != nil {
		return fmt.Errorf("apply settings seed: %w", err)
	}
	s.log.Info("已应用配置文件中的设置", "keys", len(kv))
	return nil
}

func (s *Service) Stats() model.Stats { return s.handler.Cycles().Stats() }

func (s *Service) Close() error { return s.store.Close() }

// SeedValues 将设置片段转换为键值，未设置的字段不出现
func SeedValues(seed *config.SettingsSeed) map[string]string {
	kv := map[string]string{}
	if seed == nil {
		return kv
	}
	if seed.LoggingEnabled != nil {
		kv[storage.KeyLoggingEnabled] = strconv.FormatBool(*seed.LoggingEnabled)
	}
	if seed.LoggingStyle != nil {
		kv[storage.KeyLoggingStyle] = *seed.LoggingStyle
	}
	if seed.Blacklist != nil {
		kv[storage.KeyBlacklist] = *seed.Blacklist
	}
	if seed.Whitelist != nil {
		kv[storage.KeyWhitelist] = *seed.Whitelist
	}
	return kv
}
