package rules

import (
	"strings"

	"tabpulse/pkg/model"
)

// ProjectDelimiter 分隔规则模式与项目名
const ProjectDelimiter = "@@"

// Rule 规则列表中的一行
type Rule struct {
	Pattern string
	Project string
}

// Parse 按行拆分规则列表，保留原有顺序，跳过空行和缺少模式的行
func Parse(list string) []Rule {
	lines := strings.Split(list, "\n")
	out := make([]Rule, 0, len(lines))
	for _, line := range lines {
		r, ok := parseLine(line)
		if !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

func parseLine(line string) (Rule, bool) {
	clean := strings.TrimSpace(line)
	if clean == "" {
		return Rule{}, false
	}
	pattern, project, _ := strings.Cut(clean, ProjectDelimiter)
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return Rule{}, false
	}
	return Rule{Pattern: pattern, Project: strings.TrimSpace(project)}, true
}

type Engine struct {
	rs []Rule
}

func New(rs []Rule) *Engine { return &Engine{rs: rs} }

// Compile 解析规则列表并创建引擎
func Compile(list string) *Engine { return New(Parse(list)) }

// Eval 按文档顺序首个命中即返回
func (e *Engine) Eval(url string) model.Heartbeat {
	for i := range e.rs {
		r := &e.rs[i]
		if !MatchURL(url, r.Pattern) {
			continue
		}
		if r.Project != "" {
			project := r.Project
			return model.Heartbeat{URL: url, Project: &project}
		}
		return model.Heartbeat{URL: r.Pattern}
	}
	return model.Heartbeat{}
}

// Contains 只判断是否有规则命中，忽略项目标记
func (e *Engine) Contains(url string) bool {
	for i := range e.rs {
		if MatchURL(url, e.rs[i].Pattern) {
			return true
		}
	}
	return false
}

// Match 白名单匹配：命中且带项目时保留原始URL，否则上报规则模式本身
func Match(url, list string) model.Heartbeat { return Compile(list).Eval(url) }

// Contains 黑名单匹配
func Contains(url, list string) bool { return Compile(list).Contains(url) }
