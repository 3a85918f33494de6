package rules

import (
	"strings"

	"github.com/tidwall/match"
)

type urlParts struct {
	scheme  string
	host    string
	path    string
	hasPath bool
}

// MatchURL 按组件（协议、主机、路径）进行通配符匹配。
// 模式不带协议时匹配任意协议；不带路径时匹配任意路径；
// "*.example.com" 同时匹配 example.com 本身。
func MatchURL(rawURL, pattern string) bool {
	if pattern == "" {
		return false
	}
	p := splitPattern(pattern)
	u := splitURL(rawURL)

	if p.scheme != "" && !match.Match(strings.ToLower(u.scheme), strings.ToLower(p.scheme)) {
		return false
	}
	if !matchHost(u.host, p.host) {
		return false
	}
	if !p.hasPath {
		return true
	}
	path := u.path
	if path == "" {
		path = "/"
	}
	return match.Match(path, p.path)
}

func matchHost(host, pattern string) bool {
	host = strings.ToLower(host)
	pattern = strings.ToLower(pattern)
	if match.Match(host, pattern) {
		return true
	}
	if bare, ok := strings.CutPrefix(pattern, "*."); ok {
		return match.Match(host, bare)
	}
	return false
}

func splitURL(s string) urlParts {
	var p urlParts
	if scheme, rest, ok := strings.Cut(s, "://"); ok {
		p.scheme = scheme
		s = rest
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		p.host = s[:i]
		p.path = s[i:]
		p.hasPath = true
	} else {
		p.host = s
	}
	if i := strings.LastIndexByte(p.host, '@'); i >= 0 {
		p.host = p.host[i+1:]
	}
	return p
}

// splitPattern 与 splitURL 的区别：模式中的 '?' 是通配符，不作为分隔
func splitPattern(s string) urlParts {
	var p urlParts
	if scheme, rest, ok := strings.Cut(s, "://"); ok {
		p.scheme = scheme
		s = rest
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		p.host = s[:i]
		p.path = s[i:]
		p.hasPath = true
	} else {
		p.host = s
	}
	return p
}

// DomainOf 返回URL的域名形式：有协议时为 scheme://host，否则为主机部分
func DomainOf(rawURL string) string {
	if strings.Contains(rawURL, "://") {
		u := splitURL(rawURL)
		return u.scheme + "://" + u.host
	}
	return splitPattern(rawURL).host
}
