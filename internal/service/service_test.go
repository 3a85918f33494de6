package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"tabpulse/internal/config"
	"tabpulse/internal/notify"
	"tabpulse/internal/storage"
	"tabpulse/pkg/model"
)

type heartbeatSink struct {
	mu       sync.Mutex
	status   int
	payloads []map[string]any
}

func (s *heartbeatSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	var p map[string]any
	_ = json.Unmarshal(b, &p)
	s.mu.Lock()
	s.payloads = append(s.payloads, p)
	status := s.status
	s.mu.Unlock()
	w.WriteHeader(status)
}

func (s *heartbeatSink) all() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.payloads...)
}

func newTestService(t *testing.T, targets string, status int) (*Service, *heartbeatSink, *[]model.UIState) {
	t.Helper()

	browser := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(targets))
	}))
	t.Cleanup(browser.Close)

	sink := &heartbeatSink{status: status}
	api := httptest.NewServer(sink)
	t.Cleanup(api.Close)

	cfg := config.NewConfig()
	cfg.Sqlite.Dsn = filepath.Join(t.TempDir(), "tabpulse.sqlite3")
	cfg.Browser.DevToolsURL = browser.URL
	cfg.API.HeartbeatURL = api.URL
	cfg.Version = "0.9.0"

	var (
		mu     sync.Mutex
		states []model.UIState
	)
	n := notify.Func(func(s model.UIState) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	svc, err := New(cfg, nil, n)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc, sink, &states
}

const githubTab = `[{"id":"T1","type":"page","title":"repo","url":"https://github.com/foo/bar"}]`

func TestWhitelistProjectEndToEnd(t *testing.T) {
	svc, sink, _ := newTestService(t, githubTab, http.StatusCreated)
	ctx := context.Background()

	if err := svc.UpdateSetting(ctx, storage.KeyLoggingStyle, "whitelist"); err != nil {
		t.Fatal(err)
	}
	if err := svc.UpdateSetting(ctx, storage.KeyWhitelist, "github.com/*@@OpenSource"); err != nil {
		t.Fatal(err)
	}

	if res := svc.RecordHeartbeat(ctx); res != model.CycleSent {
		t.Fatalf("result = %q, want sent", res)
	}
	got := sink.all()
	if len(got) != 1 {
		t.Fatalf("payloads = %d, want 1", len(got))
	}
	p := got[0]
	if p["entity"] != "https://github.com" || p["project"] != "OpenSource" || p["type"] != "domain" {
		t.Fatalf("payload = %v", p)
	}
	if p["plugin"] != "tabpulse/0.9.0" || p["is_debugging"] != false {
		t.Fatalf("payload = %v", p)
	}
}

func TestDevtoolsAndUnauthorizedEndToEnd(t *testing.T) {
	svc, sink, states := newTestService(t, githubTab, http.StatusUnauthorized)
	ctx := context.Background()

	svc.SetTabsWithDevtoolsOpen([]model.TabID{"T1"})
	if res := svc.RecordHeartbeat(ctx); res != model.CycleUnauthorized {
		t.Fatalf("result = %q, want unauthorized", res)
	}
	got := sink.all()
	if len(got) != 1 || got[0]["is_debugging"] != true || got[0]["project"] != "<<LAST_PROJECT>>" {
		t.Fatalf("payloads = %v", got)
	}
	last := (*states)[len(*states)-1]
	if last != model.StateNotSignedIn {
		t.Fatalf("last state = %q, want notSignedIn", last)
	}
	if st := svc.Stats(); st.ByResult[model.CycleUnauthorized] != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestSeedDisablesLogging(t *testing.T) {
	svc, sink, states := newTestService(t, githubTab, http.StatusCreated)
	ctx := context.Background()

	off := false
	if err := svc.ApplySeed(ctx, &config.SettingsSeed{LoggingEnabled: &off}); err != nil {
		t.Fatal(err)
	}
	if res := svc.RecordHeartbeat(ctx); res != model.CycleNotLogging {
		t.Fatalf("result = %q", res)
	}
	if len(sink.all()) != 0 {
		t.Fatal("no heartbeat expected")
	}
	if len(*states) != 1 || (*states)[0] != model.StateNotLogging {
		t.Fatalf("states = %v", *states)
	}

	if err := svc.ResetSetting(ctx, storage.KeyLoggingEnabled); err != nil {
		t.Fatal(err)
	}
	if res := svc.RecordHeartbeat(ctx); res != model.CycleSent {
		t.Fatalf("after reset result = %q", res)
	}
	if err := svc.ResetSetting(ctx, "nope"); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestPollBrowserSyncsDevtools(t *testing.T) {
	targets := `[
	  {"id":"F","type":"page","url":"devtools://devtools/bundled/inspector.html?ws=localhost/devtools/page/T1"},
	  {"id":"T1","type":"page","url":"https://github.com/foo/bar"}
	]`
	svc, sink, _ := newTestService(t, targets, http.StatusCreated)
	ctx := context.Background()

	if err := svc.PollBrowser(ctx); err != nil {
		t.Fatal(err)
	}
	if ids := svc.TabsWithDevtoolsOpen(); len(ids) != 1 || ids[0] != "T1" {
		t.Fatalf("devtools = %v", ids)
	}
	svc.RecordHeartbeat(ctx)
	got := sink.all()
	if len(got) != 1 || got[0]["is_debugging"] != true {
		t.Fatalf("payloads = %v", got)
	}
}

func TestSeedValues(t *testing.T) {
	t.Parallel()

	if len(SeedValues(nil)) != 0 {
		t.Fatal("nil seed should be empty")
	}
	style := "whitelist"
	wl := "a.com"
	kv := SeedValues(&config.SettingsSeed{LoggingStyle: &style, Whitelist: &wl})
	if len(kv) != 2 || kv[storage.KeyLoggingStyle] != "whitelist" || kv[storage.KeyWhitelist] != "a.com" {
		t.Fatalf("kv = %v", kv)
	}
}

func TestLockedSkipsCycle(t *testing.T) {
	svc, sink, _ := newTestService(t, githubTab, http.StatusCreated)
	ctx := context.Background()

	svc.SetLocked(true)
	if res := svc.RecordHeartbeat(ctx); res != model.CycleIdle {
		t.Fatalf("locked result = %q, want idle", res)
	}
	if len(sink.all()) != 0 {
		t.Fatal("no heartbeat expected while locked")
	}

	svc.SetLocked(false)
	if res := svc.RecordHeartbeat(ctx); res != model.CycleSent {
		t.Fatalf("unlocked result = %q, want sent", res)
	}
}
