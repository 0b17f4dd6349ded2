package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_StorageDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", "mysql")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported STORAGE_DRIVER")
	}
}

func TestLoad_CycleCalendarDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Timezone.String() != "Asia/Seoul" {
		t.Fatalf("unexpected timezone: %s", cfg.Timezone)
	}
	want := time.Date(2024, time.January, 1, 0, 0, 0, 0, cfg.Timezone)
	if !cfg.ServiceStartDate.Equal(want) {
		t.Fatalf("unexpected service start date: %s", cfg.ServiceStartDate)
	}
}

func TestLoad_ServiceStartDateValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SERVICE_START_DATE", "01/02/2024")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed SERVICE_START_DATE")
	}
}

func TestLoad_PostgresRequiresDasom(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", StoragePostgres)
	t.Setenv("DASOM_ENABLED", "false")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when STORAGE_DRIVER=postgres without DASOM_ENABLED=true")
	}
}

func TestLoad_DasomRequiresAdminKeyWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("DASOM_ENABLED", "true")
	t.Setenv("DASOM_ADMIN_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DASOM_ENABLED=true without DASOM_ADMIN_KEY")
	}
}

func TestLoad_InternalJobTokenRequiredInProd(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("INTERNAL_JOB_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when APP_ENV=prod without INTERNAL_JOB_TOKEN")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://manito-fe.vercel.app, http://localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %d", len(cfg.CORSAllowedOrigins))
	}
	if cfg.CORSAllowedOrigins[1] != "http://localhost:3000" {
		t.Fatalf("unexpected origin: %q", cfg.CORSAllowedOrigins[1])
	}
}
