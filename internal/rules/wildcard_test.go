package rules

import "testing"

func TestMatchURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url     string
		pattern string
		want    bool
	}{
		{"https://www.facebook.com/feed", "*.facebook.com/*", true},
		{"https://facebook.com/feed", "*.facebook.com/*", true},
		{"https://notfacebook.com/feed", "*.facebook.com/*", false},
		{"https://github.com/foo/bar", "github.com/*", true},
		{"https://github.com", "github.com/*", true},
		{"https://github.com/foo", "github.com", true},
		{"https://gist.github.com/foo", "github.com", false},
		{"https://GitHub.com/foo", "github.com/*", true},
		{"https://github.com/foo/bar", "github.com/foo/*", true},
		{"https://github.com/baz/bar", "github.com/foo/*", false},
		{"http://example.com/", "https://example.com/*", false},
		{"https://example.com/", "https://example.com/*", true},
		{"https://example.com/", "http*://example.com", true},
		{"http://localhost:8080/app", "localhost:*", true},
		{"http://localhost:8080/app", "localhost", false},
		{"https://user:pw@example.com/x", "example.com", true},
		{"https://example.com/search?q=go", "example.com/search*", true},
		{"https://example.com/", "", false},
	}
	for _, c := range cases {
		if got := MatchURL(c.url, c.pattern); got != c.want {
			t.Errorf("MatchURL(%q, %q) = %v, want %v", c.url, c.pattern, got, c.want)
		}
	}
}

func TestDomainOf(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://github.com/foo/bar":   "https://github.com",
		"http://localhost:8080/x?y=1":  "http://localhost:8080",
		"https://example.com":          "https://example.com",
		"https://example.com?q=1":      "https://example.com",
		"github.com/*":                 "github.com",
		"*.facebook.com/*":             "*.facebook.com",
		"https://user:pw@example.com/": "https://example.com",
	}
	for in, want := range cases {
		if got := DomainOf(in); got != want {
			t.Errorf("DomainOf(%q) = %q, want %q", in, got, want)
		}
	}
}
