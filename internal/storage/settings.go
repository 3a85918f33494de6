package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"tabpulse/internal/logger"
	"tabpulse/pkg/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// 设置键，与浏览器扩展的 storage.sync 键名保持一致
const (
	KeyLoggingEnabled = "loggingEnabled"
	KeyLoggingStyle   = "loggingStyle"
	KeyBlacklist      = "blacklist"
	KeyWhitelist      = "whitelist"
)

var ErrNotFound = errors.New("setting not found")

// Setting 键值设置表
type Setting struct {
	Key       string `gorm:"primaryKey;column:setting_key;size:64"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// SettingsStore 基于 SQLite 的设置存储
type SettingsStore struct {
	db  *gorm.DB
	log logger.Logger
}

// Open 打开数据库并迁移设置表
func Open(dsn, prefix string, l logger.Logger) (*SettingsStore, error) {
	if l == nil {
		l = logger.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         NewGormLogger(l),
		NamingStrategy: schema.NamingStrategy{TablePrefix: prefix},
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&Setting{}); err != nil {
		return nil, fmt.Errorf("migrate settings: %w", err)
	}
	l.Debug("设置存储已打开", "dsn", dsn)
	return &SettingsStore{db: db, log: l}, nil
}

// Close 关闭底层连接
func (s *SettingsStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Load 读取全部设置，缺失的键使用默认值
func (s *SettingsStore) Load(ctx context.Context) (model.Settings, error) {
	var rows []Setting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return model.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	out := model.DefaultSettings()
	for _, r := range rows {
		switch r.Key {
		case KeyLoggingEnabled:
			b, err := strconv.ParseBool(r.Value)
			if err != nil {
				return model.Settings{}, fmt.Errorf("setting %s: %w", r.Key, err)
			}
			out.LoggingEnabled = b
		case KeyLoggingStyle:
			style := model.LoggingStyle(r.Value)
			if !style.Valid() {
				return model.Settings{}, fmt.Errorf("setting %s: unknown style %q", r.Key, r.Value)
			}
			out.LoggingStyle = style
		case KeyBlacklist:
			out.Blacklist = r.Value
		case KeyWhitelist:
			out.Whitelist = r.Value
		}
	}
	return out, nil
}

// Get 读取单个设置
func (s *SettingsStore) Get(ctx context.Context, key string) (string, error) {
	var row Setting
	err := s.db.WithContext(ctx).Where("setting_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return row.Value, nil
}

// Set 写入单个设置
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany 在一个事务中写入多个设置，任一值非法时全部不写
func (s *SettingsStore) SetMany(ctx context.Context, kv map[string]string) error {
	keys := make([]string, 0, len(kv))
	for k, v := range kv {
		if err := Validate(k, v); err != nil {
			return err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range keys {
			row := Setting{Key: k, Value: kv[k]}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "setting_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("save setting %s: %w", k, err)
			}
			s.log.Info("设置已更新", "key", k)
		}
		return nil
	})
}

// Delete 删除设置，恢复默认值
func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("setting_key = ?", key).Delete(&Setting{}).Error
}

// KnownKey 是否为受支持的设置键
func KnownKey(key string) bool {
	switch key {
	case KeyLoggingEnabled, KeyLoggingStyle, KeyBlacklist, KeyWhitelist:
		return true
	}
	return false
}

// Validate 校验键与取值
func Validate(key, value string) error {
	switch key {
	case KeyLoggingEnabled:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	case KeyLoggingStyle:
		if !model.LoggingStyle(value).Valid() {
			return fmt.Errorf("setting %s: unknown style %q", key, value)
		}
	case KeyBlacklist, KeyWhitelist:
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
