package apiclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tabpulse/internal/logger"
	"tabpulse/pkg/model"

	"github.com/tidwall/gjson"
)

// Config 配置选项
type Config struct {
	CurrentUserURL string
	SummariesURL   string
	APIKey         string
	HTTPClient     *http.Client
	Logger         logger.Logger
	Now            func() time.Time
}

// Client 只读接口：当前用户与当日累计时长。失败时返回 ok=false
type Client struct {
	cfg    Config
	client *http.Client
	log    logger.Logger
	now    func() time.Time
}

func New(cfg Config) *Client {
	c := &Client{cfg: cfg, client: cfg.HTTPClient, log: cfg.Logger, now: cfg.Now}
	if c.client == nil {
		c.client = &http.Client{Timeout: 30 * time.Second}
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// CheckAuth 检查是否已登录
func (c *Client) CheckAuth(ctx context.Context) (model.User, bool) {
	body, err := c.get(ctx, c.cfg.CurrentUserURL)
	if err != nil {
		c.log.Error("获取当前用户失败", "url", c.cfg.CurrentUserURL, "error", err)
		return model.User{}, false
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		c.log.Error("当前用户响应缺少 data", "url", c.cfg.CurrentUserURL)
		return model.User{}, false
	}
	return model.User{
		ID:          data.Get("id").String(),
		Username:    data.Get("username").String(),
		DisplayName: data.Get("display_name").String(),
		Email:       data.Get("email").String(),
	}, true
}

// TotalTimeLoggedToday 当日累计时长
func (c *Client) TotalTimeLoggedToday(ctx context.Context) (model.GrandTotal, bool) {
	today := c.now().Format(time.DateOnly)
	u, err := url.Parse(c.cfg.SummariesURL)
	if err != nil {
		c.log.Error("汇总接口地址无效", "url", c.cfg.SummariesURL, "error", err)
		return model.GrandTotal{}, false
	}
	q := u.Query()
	q.Set("start", today)
	q.Set("end", today)
	u.RawQuery = q.Encode()

	body, err := c.get(ctx, u.String())
	if err != nil {
		c.log.Error("获取当日汇总失败", "url", c.cfg.SummariesURL, "error", err)
		return model.GrandTotal{}, false
	}
	gt := gjson.GetBytes(body, "data.0.grand_total")
	if !gt.Exists() {
		c.log.Error("汇总响应缺少 grand_total", "url", c.cfg.SummariesURL)
		return model.GrandTotal{}, false
	}
	return model.GrandTotal{
		Text:         gt.Get("text").String(),
		TotalSeconds: gt.Get("total_seconds").Float(),
	}, true
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.cfg.APIKey)))
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid json response")
	}
	return body, nil
}
