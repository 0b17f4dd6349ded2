package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haeun-dev/manito/internal/config"
	"github.com/haeun-dev/manito/internal/platform/logging"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	return config.Config{
		AppEnv:             config.EnvDev,
		ServiceName:        "manito-api",
		HTTPAddr:           ":0",
		StorageDriver:      config.StorageMemory,
		CacheEnabled:       true,
		CacheTTL:           time.Minute,
		CORSAllowedOrigins: []string{"*"},
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       15 * time.Second,
		Timezone:           loc,
		ServiceStartDate:   time.Date(2024, time.January, 1, 0, 0, 0, 0, loc),
		DasomTimeout:       3 * time.Second,
		DasomCacheTTL:      30 * time.Second,
		InternalJobToken:   "job-secret",
	}
}

func TestNewHTTPServer_MemoryDriverServesHealthz(t *testing.T) {
	srv, cleanup, err := NewHTTPServer(testConfig(t), logging.NewNop())
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	}()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestNewHTTPServer_RejectsEmptyAddr(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTPAddr = ""

	if _, _, err := NewHTTPServer(cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty http addr")
	}
}
