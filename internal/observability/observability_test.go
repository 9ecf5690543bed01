package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/scutta-ladder/internal/config"
	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "scutta-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	shutdown, err := InitUptrace(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestInitUptrace_EnabledWithoutDSNIsNoop(t *testing.T) {
	cfg := config.Config{UptraceEnabled: true, UptraceDSN: "  "}

	shutdown, err := InitUptrace(cfg, nil)
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestNewPprofServer(t *testing.T) {
	if srv := NewPprofServer(config.Config{PprofEnabled: false}); srv != nil {
		t.Fatalf("expected no server when pprof is disabled")
	}

	srv := NewPprofServer(config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:6061"})
	if srv == nil || srv.Addr != "127.0.0.1:6061" {
		t.Fatalf("unexpected pprof server: %+v", srv)
	}
}

func TestPprofMux_ServesIndexAndCmdline(t *testing.T) {
	srv := NewPprofServer(config.Config{PprofEnabled: true, PprofAddr: ":0"})

	for _, path := range []string{"/debug/pprof/", "/debug/pprof/cmdline"} {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: status %d", path, rec.Code)
		}
	}
}

func TestLadderAttributes(t *testing.T) {
	attrs := ladderAttributes(config.Config{DBDriver: config.DBDriverSQLite, LeaderboardSize: 10})
	got := map[string]string{}
	for _, kv := range attrs {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	if got["scutta.db_driver"] != "sqlite3" || got["scutta.cache_driver"] != "off" || got["scutta.leaderboard_size"] != "10" {
		t.Fatalf("unexpected attributes: %v", got)
	}
}

func TestProfilerConfig_DropsEmptyTags(t *testing.T) {
	cfg := config.Config{
		ServiceName:            "scutta-api",
		AppEnv:                 config.EnvDev,
		DBDriver:               config.DBDriverSQLite,
		PyroscopeAppName:       "scutta-api",
		PyroscopeServerAddress: "http://pyroscope:4040",
	}

	got := profilerConfig(cfg, logging.NewNop())

	if got.ApplicationName != "scutta-api" || got.ServerAddress != "http://pyroscope:4040" {
		t.Fatalf("unexpected target: %+v", got)
	}
	if _, ok := got.Tags["version"]; ok {
		t.Fatalf("empty version tag must be dropped: %v", got.Tags)
	}
	if got.Tags["db_driver"] != "sqlite3" || got.Tags["env"] != config.EnvDev {
		t.Fatalf("unexpected tags: %v", got.Tags)
	}
	if got.Logger == nil || len(got.ProfileTypes) == 0 {
		t.Fatalf("expected logger and profile types")
	}
}
