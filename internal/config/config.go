package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 配置文件结构体
type Config struct {
	Version string `mapstructure:"version"`

	Sqlite struct {
		Dsn    string `mapstructure:"dsn"`
		Prefix string `mapstructure:"prefix"`
	} `mapstructure:"sqlite"`

	Log struct {
		Level  string   `mapstructure:"level"`
		Writer []string `mapstructure:"writer"`
		File   string   `mapstructure:"file"`
	} `mapstructure:"log"`

	API struct {
		HeartbeatURL   string        `mapstructure:"heartbeat_url"`
		CurrentUserURL string        `mapstructure:"current_user_url"`
		SummariesURL   string        `mapstructure:"summaries_url"`
		APIKey         string        `mapstructure:"api_key"`
		Timeout        time.Duration `mapstructure:"timeout"`
	} `mapstructure:"api"`

	Browser struct {
		DevToolsURL  string        `mapstructure:"devtools_url"`
		PollInterval time.Duration `mapstructure:"poll_interval"`
	} `mapstructure:"browser"`

	Tracker struct {
		Interval          time.Duration `mapstructure:"interval"`
		DetectionInterval int           `mapstructure:"detection_interval"`
	} `mapstructure:"tracker"`

	// Settings 可选的初始设置，启动及文件变更时写入设置存储
	Settings *SettingsSeed `mapstructure:"settings"`
}

// SettingsSeed 配置文件中的设置片段，未出现的字段保持存储中的值
type SettingsSeed struct {
	LoggingEnabled *bool   `mapstructure:"logging_enabled"`
	LoggingStyle   *string `mapstructure:"logging_style"`
	Blacklist      *string `mapstructure:"blacklist"`
	Whitelist      *string `mapstructure:"whitelist"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	c := &Config{Version: "1.0.0"}
	c.Sqlite.Dsn = "tabpulse.sqlite3"
	c.Sqlite.Prefix = "tabpulse_"
	c.Log.Level = "info"
	c.Log.Writer = []string{"console"}
	c.Log.File = "logs/tabpulse.log"
	c.API.HeartbeatURL = "https://wakatime.com/api/v1/users/current/heartbeats"
	c.API.CurrentUserURL = "https://wakatime.com/api/v1/users/current"
	c.API.SummariesURL = "https://wakatime.com/api/v1/users/current/summaries"
	c.API.Timeout = 30 * time.Second
	c.Browser.DevToolsURL = "http://127.0.0.1:9222"
	c.Browser.PollInterval = 5 * time.Second
	c.Tracker.Interval = 15 * time.Second
	c.Tracker.DetectionInterval = 60
	return c
}

// New 创建绑定默认值的 viper 实例，path 为空时只读取环境变量
func New(path string) *viper.Viper {
	d := NewConfig()
	v := viper.New()
	v.SetEnvPrefix("TABPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("version", d.Version)
	v.SetDefault("sqlite.dsn", d.Sqlite.Dsn)
	v.SetDefault("sqlite.prefix", d.Sqlite.Prefix)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.writer", d.Log.Writer)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("api.heartbeat_url", d.API.HeartbeatURL)
	v.SetDefault("api.current_user_url", d.API.CurrentUserURL)
	v.SetDefault("api.summaries_url", d.API.SummariesURL)
	v.SetDefault("api.api_key", "")
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("browser.devtools_url", d.Browser.DevToolsURL)
	v.SetDefault("browser.poll_interval", d.Browser.PollInterval)
	v.SetDefault("tracker.interval", d.Tracker.Interval)
	v.SetDefault("tracker.detection_interval", d.Tracker.DetectionInterval)

	if path != "" {
		v.SetConfigFile(path)
	}
	return v
}

// Load 读取配置文件；文件不存在时使用默认值
func Load(path string) (*Config, *viper.Viper, error) {
	v := New(path)
	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
				return nil, nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}
	cfg, err := Decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Decode 将 viper 中的值解析为 Config
func Decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Tracker.DetectionInterval <= 0 {
		cfg.Tracker.DetectionInterval = NewConfig().Tracker.DetectionInterval
	}
	return cfg, nil
}

// Watch 监听配置文件变化，重新解析后回调
func Watch(v *viper.Viper, onChange func(*Config, error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(Decode(v))
	})
	v.WatchConfig()
}
