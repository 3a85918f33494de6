package rules

import "testing"

func TestMatchWithoutProjectCollapsesToPattern(t *testing.T) {
	t.Parallel()

	hb := Match("https://github.com/foo/bar", "github.com/*")
	if hb.URL != "github.com/*" {
		t.Fatalf("URL = %q, want %q", hb.URL, "github.com/*")
	}
	if hb.Project != nil {
		t.Fatalf("Project = %q, want nil", *hb.Project)
	}
}

func TestMatchWithProjectKeepsOriginalURL(t *testing.T) {
	t.Parallel()

	url := "https://github.com/foo/bar"
	hb := Match(url, "github.com/*@@OpenSource")
	if hb.URL != url {
		t.Fatalf("URL = %q, want %q", hb.URL, url)
	}
	if hb.Project == nil || *hb.Project != "OpenSource" {
		t.Fatalf("Project = %v, want OpenSource", hb.Project)
	}
}

func TestMatchEmptyListNeverMatches(t *testing.T) {
	t.Parallel()

	for _, list := range []string{"", "   ", "\n\n", " \t\n  \r\n"} {
		hb := Match("https://example.com/", list)
		if hb.Found() || hb.Project != nil {
			t.Errorf("Match(%q) = %+v, want zero heartbeat", list, hb)
		}
	}
}

func TestMatchFirstRuleWins(t *testing.T) {
	t.Parallel()

	list := "*.example.com/*@@First\nwww.example.com/*@@Second"
	hb := Match("https://www.example.com/a", list)
	if hb.ProjectName() != "First" {
		t.Fatalf("project = %q, want First", hb.ProjectName())
	}

	list = "www.example.com/*@@Second\n*.example.com/*@@First"
	hb = Match("https://www.example.com/a", list)
	if hb.ProjectName() != "Second" {
		t.Fatalf("project = %q, want Second", hb.ProjectName())
	}
}

func TestMatchSkipsBlankAndMalformedLines(t *testing.T) {
	t.Parallel()

	list := "\n   \n@@orphan\nnomatch.org\n\n\t\nexample.com@@Work\n"
	hb := Match("https://example.com/x", list)
	if hb.ProjectName() != "Work" {
		t.Fatalf("project = %q, want Work", hb.ProjectName())
	}
}

func TestMatchSplitsOnFirstDelimiter(t *testing.T) {
	t.Parallel()

	hb := Match("https://example.com/", "example.com@@a@@b")
	if hb.ProjectName() != "a@@b" {
		t.Fatalf("project = %q, want a@@b", hb.ProjectName())
	}
}

func TestMatchEmptyProjectIsAbsent(t *testing.T) {
	t.Parallel()

	hb := Match("https://example.com/", "example.com@@")
	if hb.URL != "example.com" || hb.Project != nil {
		t.Fatalf("got %+v, want pattern without project", hb)
	}
}

func TestMatchIsIdempotent(t *testing.T) {
	t.Parallel()

	list := "*.example.com/*@@P\nfoo.org"
	for _, url := range []string{"https://a.example.com/x", "http://foo.org/", "https://bar.net"} {
		a := Match(url, list)
		b := Match(url, list)
		if a.URL != b.URL || a.ProjectName() != b.ProjectName() || (a.Project == nil) != (b.Project == nil) {
			t.Errorf("Match(%q) not idempotent: %+v vs %+v", url, a, b)
		}
	}
}

func TestContainsIgnoresProjectTags(t *testing.T) {
	t.Parallel()

	if !Contains("https://www.facebook.com/feed", "*.facebook.com/*") {
		t.Fatal("expected facebook to be contained")
	}
	if !Contains("https://www.facebook.com/feed", "x.org\n*.facebook.com/*@@Social") {
		t.Fatal("expected tagged rule to match")
	}
	if Contains("https://github.com/", "*.facebook.com/*") {
		t.Fatal("github should not be contained")
	}
	if Contains("https://github.com/", "") {
		t.Fatal("empty list should not contain anything")
	}
}

func TestParsePreservesOrder(t *testing.T) {
	t.Parallel()

	rs := Parse("b.com\n\n a.com @@ P \nc.com")
	want := []Rule{{Pattern: "b.com"}, {Pattern: "a.com", Project: "P"}, {Pattern: "c.com"}}
	if len(rs) != len(want) {
		t.Fatalf("len = %d, want %d", len(rs), len(want))
	}
	for i := range want {
		if rs[i] != want[i] {
			t.Errorf("rule %d = %+v, want %+v", i, rs[i], want[i])
		}
	}
}
