package executor

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"tabpulse/internal/ctxkeys"
	"tabpulse/internal/logger"
	"tabpulse/internal/rules"
	"tabpulse/pkg/model"

	"github.com/tidwall/sjson"
)

const (
	// ClientID 上报时 plugin 字段的客户端标识
	ClientID = "tabpulse"
	// HeartbeatType 只上报域名粒度
	HeartbeatType = "domain"
	// LastProject 让服务端沿用最近一次的项目
	LastProject = "<<LAST_PROJECT>>"
)

// Notifier 图标状态通知
type Notifier interface {
	SetState(state model.UIState)
}

// Config 配置选项
type Config struct {
	HeartbeatURL string
	APIKey       string
	Version      string
	HTTPClient   *http.Client
	Notifier     Notifier
	Logger       logger.Logger
	Now          func() time.Time
}

// Executor 负责构建请求体并投递心跳，不重试、不排队
type Executor struct {
	url      string
	apiKey   string
	plugin   string
	client   *http.Client
	notifier Notifier
	log      logger.Logger
	now      func() time.Time
}

// New 创建投递器
func New(cfg Config) *Executor {
	e := &Executor{
		url:      cfg.HeartbeatURL,
		apiKey:   cfg.APIKey,
		plugin:   ClientID + "/" + cfg.Version,
		client:   cfg.HTTPClient,
		notifier: cfg.Notifier,
		log:      cfg.Logger,
		now:      cfg.Now,
	}
	if e.client == nil {
		e.client = &http.Client{Timeout: 30 * time.Second}
	}
	if e.log == nil {
		e.log = logger.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Send 将心跳URL原地改写为域名形式，构建请求体并投递
func (e *Executor) Send(ctx context.Context, hb *model.Heartbeat, debug bool) model.Outcome {
	hb.URL = rules.DomainOf(hb.URL)
	p := BuildPayload(*hb, debug, e.now(), e.plugin)
	return e.Deliver(ctx, p)
}

// BuildPayload 构建请求体；项目为空时使用 LastProject
func BuildPayload(hb model.Heartbeat, debug bool, now time.Time, plugin string) model.Payload {
	project := hb.ProjectName()
	if project == "" {
		project = LastProject
	}
	return model.Payload{
		Entity:      hb.URL,
		Type:        HeartbeatType,
		Time:        now.Unix(),
		Project:     project,
		IsDebugging: debug,
		Plugin:      plugin,
	}
}

// Encode 按固定字段顺序序列化请求体
func Encode(p model.Payload) ([]byte, error) {
	body := []byte(`{}`)
	fields := []struct {
		path  string
		value any
	}{
		{"entity", p.Entity},
		{"type", p.Type},
		{"time", p.Time},
		{"project", p.Project},
		{"is_debugging", p.IsDebugging},
		{"plugin", p.Plugin},
	}
	for _, f := range fields {
		var err error
		body, err = sjson.SetBytes(body, f.path, f.value)
		if err != nil {
			return nil, fmt.Errorf("encode payload field %s: %w", f.path, err)
		}
	}
	return body, nil
}

// Deliver POST 请求体到心跳接口：401 提示未登录，201 为成功，其余状态记录错误后丢弃
func (e *Executor) Deliver(ctx context.Context, p model.Payload) model.Outcome {
	l := e.log.With("cycle", ctxkeys.CycleID(ctx), "entity", p.Entity)

	body, err := Encode(p)
	if err != nil {
		l.Error("构建心跳请求体失败", "error", err)
		return model.OutcomeFailed
	}
	l.Debug("发送心跳", "payload", string(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		l.Error("创建心跳请求失败", "url", e.url, "error", err)
		return model.OutcomeFailed
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(e.apiKey)))
	}
	if id := ctxkeys.CycleID(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		l.Error("心跳投递失败", "url", e.url, "error", err)
		return model.OutcomeFailed
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		l.Warn("心跳接口未授权", "status", resp.StatusCode)
		if e.notifier != nil {
			e.notifier.SetState(model.StateNotSignedIn)
		}
		return model.OutcomeUnauthorized
	case resp.StatusCode == http.StatusCreated:
		l.Debug("心跳已发送", "status", resp.StatusCode)
		return model.OutcomeSent
	default:
		l.Error("心跳接口返回异常状态", "url", e.url, "status", resp.StatusCode)
		return model.OutcomeFailed
	}
}
