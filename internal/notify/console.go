package notify

import (
	"fmt"
	"io"
	"sync"

	"tabpulse/internal/logger"
	"tabpulse/pkg/model"

	"github.com/charmbracelet/lipgloss"
)

type badge struct {
	label string
	color lipgloss.Color
}

var badges = map[model.UIState]badge{
	model.StateAllGood:     {"tracking", lipgloss.Color("#2E7D32")},
	model.StateNotLogging:  {"logging disabled", lipgloss.Color("#757575")},
	model.StateBlacklisted: {"blacklisted", lipgloss.Color("#C62828")},
	model.StateWhitelisted: {"not on whitelist", lipgloss.Color("#EF6C00")},
	model.StateNotSignedIn: {"not signed in", lipgloss.Color("#6A1B9A")},
}

// Label 状态的可读文本
func Label(s model.UIState) string {
	if b, ok := badges[s]; ok {
		return b.label
	}
	return string(s)
}

// Badge 渲染带颜色的状态标签
func Badge(s model.UIState) string {
	b, ok := badges[s]
	if !ok {
		return string(s)
	}
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(b.color).
		Render(b.label)
}

// Console 在终端展示图标状态，仅在状态变化时输出
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	current model.UIState
	log     logger.Logger
}

func NewConsole(w io.Writer, l logger.Logger) *Console {
	if l == nil {
		l = logger.NewNop()
	}
	return &Console{out: w, log: l}
}

func (c *Console) SetState(s model.UIState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s == c.current {
		return
	}
	prev := c.current
	c.current = s
	c.log.Info("图标状态变更", "from", string(prev), "to", string(s))
	if c.out != nil {
		fmt.Fprintln(c.out, Badge(s))
	}
}

// State 当前状态，尚未设置时为空
func (c *Console) State() model.UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Func 函数适配器
type Func func(model.UIState)

func (f Func) SetState(s model.UIState) { f(s) }
