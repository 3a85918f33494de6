package cdp

import (
	"net/url"
	"strings"

	"tabpulse/pkg/model"

	"github.com/mafredri/cdp/devtool"
)

const devtoolsScheme = "devtools://"

// ToTab 将 CDP 目标转换为标签页模型
func ToTab(t *devtool.Target) model.Tab {
	return model.Tab{
		ID:    model.TabID(string(t.ID)),
		URL:   t.URL,
		Title: t.Title,
	}
}

// IsDevtoolsFrontend 目标是否为开发者工具窗口本身
func IsDevtoolsFrontend(t *devtool.Target) bool {
	return strings.HasPrefix(t.URL, devtoolsScheme)
}

// IsUserPage 普通网页标签
func IsUserPage(t *devtool.Target) bool {
	return t.Type == devtool.Page && !IsDevtoolsFrontend(t)
}

// InspectedTabID 从开发者工具前端URL中解析被调试的标签页ID，
// 形如 devtools://devtools/bundled/inspector.html?ws=127.0.0.1:9222/devtools/page/<id>
func InspectedTabID(frontendURL string) (model.TabID, bool) {
	u, err := url.Parse(frontendURL)
	if err != nil {
		return "", false
	}
	q := u.Query()
	ws := q.Get("ws")
	if ws == "" {
		ws = q.Get("wss")
	}
	const marker = "/devtools/page/"
	i := strings.LastIndex(ws, marker)
	if i < 0 {
		return "", false
	}
	id := ws[i+len(marker):]
	if id == "" {
		return "", false
	}
	return model.TabID(id), true
}
