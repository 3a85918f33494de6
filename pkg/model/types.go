package model

type TabID string
type CycleID string

// LoggingStyle 日志模式
type LoggingStyle string

const (
	StyleBlacklist LoggingStyle = "blacklist"
	StyleWhitelist LoggingStyle = "whitelist"
)

// Valid 判断模式是否受支持
func (s LoggingStyle) Valid() bool {
	return s == StyleBlacklist || s == StyleWhitelist
}

// Settings 运行时设置，每个周期读取一次，核心逻辑不修改
type Settings struct {
	LoggingEnabled bool         `json:"loggingEnabled"`
	LoggingStyle   LoggingStyle `json:"loggingStyle"`
	Blacklist      string       `json:"blacklist"`
	Whitelist      string       `json:"whitelist"`
}

// DefaultSettings 存储中缺少键时使用的默认值
func DefaultSettings() Settings {
	return Settings{
		LoggingEnabled: true,
		LoggingStyle:   StyleBlacklist,
	}
}

// IdleState 空闲检测结果
type IdleState string

const (
	IdleActive IdleState = "active"
	IdleIdle   IdleState = "idle"
	IdleLocked IdleState = "locked"
)

// UIState 扩展图标状态，单向通知给展示层
type UIState string

const (
	StateAllGood     UIState = "allGood"
	StateNotLogging  UIState = "notLogging"
	StateBlacklisted UIState = "blacklisted"
	StateWhitelisted UIState = "whitelisted"
	StateNotSignedIn UIState = "notSignedIn"
)

// Tab 当前活动标签页
type Tab struct {
	ID    TabID  `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Heartbeat 单次上报单元。Project 为 nil 表示沿用服务端最近的项目
type Heartbeat struct {
	URL     string  `json:"url"`
	Project *string `json:"project"`
}

// Found 规则匹配是否命中
func (h Heartbeat) Found() bool { return h.URL != "" }

// ProjectName 返回项目名，未设置时为空串
func (h Heartbeat) ProjectName() string {
	if h.Project == nil {
		return ""
	}
	return *h.Project
}

// Payload 发送给心跳接口的请求体，构建后不可变
type Payload struct {
	Entity      string `json:"entity"`
	Type        string `json:"type"`
	Time        int64  `json:"time"`
	Project     string `json:"project"`
	IsDebugging bool   `json:"is_debugging"`
	Plugin      string `json:"plugin"`
}

// Outcome 投递结果
type Outcome string

const (
	OutcomeSent         Outcome = "sent"
	OutcomeUnauthorized Outcome = "unauthorized"
	OutcomeFailed       Outcome = "failed"
)

// CycleResult 一次决策周期到达的终止状态
type CycleResult string

const (
	CycleNotLogging   CycleResult = "not_logging"
	CycleIdle         CycleResult = "idle"
	CycleNoTab        CycleResult = "no_tab"
	CycleBlacklisted  CycleResult = "blacklisted"
	CycleWhitelisted  CycleResult = "whitelisted"
	CycleSent         CycleResult = "sent"
	CycleUnauthorized CycleResult = "unauthorized"
	CycleFailed       CycleResult = "failed"
)

// Stats 周期统计
type Stats struct {
	Total    int64                 `json:"total"`
	ByResult map[CycleResult]int64 `json:"byResult"`
}

// GrandTotal 当天累计时长
type GrandTotal struct {
	Text         string  `json:"text"`
	TotalSeconds float64 `json:"total_seconds"`
}

// User 当前登录用户
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}
