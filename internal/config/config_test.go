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

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
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

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "esports-pickem-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "esports-pickem-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_StorageDriver(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default postgres", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StorageDriver != StorageDriverPostgres {
			t.Fatalf("expected storage driver=%s, got=%s", StorageDriverPostgres, cfg.StorageDriver)
		}
	})

	t.Run("memory is case insensitive", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", " Memory ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StorageDriver != StorageDriverMemory {
			t.Fatalf("expected storage driver=%s, got=%s", StorageDriverMemory, cfg.StorageDriver)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORAGE_DRIVER")
		}
	})
}

func TestLoad_LoLEsportsDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LoLEsportsBaseURL != "https://esports-api.lolesports.com/persisted/gw" {
		t.Fatalf("unexpected lolesports base url: %s", cfg.LoLEsportsBaseURL)
	}
	if cfg.LoLEsportsLocale != "en-US" {
		t.Fatalf("unexpected lolesports locale: %s", cfg.LoLEsportsLocale)
	}
	if cfg.LoLEsportsMaxPages != 6 {
		t.Fatalf("expected max pages=6, got=%d", cfg.LoLEsportsMaxPages)
	}
	if cfg.LoLEsportsHorizon != 14*24*time.Hour {
		t.Fatalf("unexpected lolesports horizon: %s", cfg.LoLEsportsHorizon)
	}
	if !cfg.LoLEsportsCircuit.Enabled || cfg.LoLEsportsCircuit.FailureThreshold != 5 {
		t.Fatalf("unexpected lolesports circuit config: %+v", cfg.LoLEsportsCircuit)
	}
}

func TestLoad_LoLEsportsValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero pages", key: "LOLESPORTS_MAX_PAGES", value: "0"},
		{name: "negative retries", key: "LOLESPORTS_MAX_RETRIES", value: "-1"},
		{name: "bad horizon", key: "LOLESPORTS_HORIZON", value: "two weeks"},
		{name: "zero timeout", key: "LOLESPORTS_TIMEOUT", value: "0s"},
		{name: "zero circuit threshold", key: "LOLESPORTS_CIRCUIT_FAILURE_COUNT", value: "0"},
		{name: "bad circuit toggle", key: "LOLESPORTS_CIRCUIT_ENABLED", value: "maybe"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_CircuitBreakerOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("ANUBIS_CIRCUIT_ENABLED", "false")
	t.Setenv("LOLESPORTS_CIRCUIT_FAILURE_COUNT", "3")
	t.Setenv("LOLESPORTS_CIRCUIT_OPEN_TIMEOUT", "45s")
	t.Setenv("LOLESPORTS_CIRCUIT_HALF_OPEN_MAX_REQ", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AnubisCircuit.Enabled {
		t.Fatalf("expected anubis circuit disabled")
	}
	got := cfg.LoLEsportsCircuit
	if got.FailureThreshold != 3 || got.OpenTimeout != 45*time.Second || got.HalfOpenMaxReq != 1 {
		t.Fatalf("unexpected lolesports circuit config: %+v", got)
	}
}

func TestLoad_PollerConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.PollerEnabled {
			t.Fatalf("expected poller enabled by default")
		}
		if cfg.PollerScheduleInterval != 2*time.Minute {
			t.Fatalf("unexpected schedule interval: %s", cfg.PollerScheduleInterval)
		}
		if cfg.PollerLeaguesInterval != 6*time.Hour {
			t.Fatalf("unexpected leagues interval: %s", cfg.PollerLeaguesInterval)
		}
		if cfg.PollerCycleTimeout != 90*time.Second {
			t.Fatalf("unexpected cycle timeout: %s", cfg.PollerCycleTimeout)
		}
		if cfg.ScoringWorkers != 4 {
			t.Fatalf("expected scoring workers=4, got=%d", cfg.ScoringWorkers)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("POLLER_ENABLED", "false")
		t.Setenv("POLLER_SCHEDULE_INTERVAL", "30s")
		t.Setenv("SCORING_WORKERS", "8")
		t.Setenv("INTERNAL_JOB_TOKEN", " internal-job-token ")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.PollerEnabled {
			t.Fatalf("expected poller disabled")
		}
		if cfg.PollerScheduleInterval != 30*time.Second {
			t.Fatalf("unexpected schedule interval: %s", cfg.PollerScheduleInterval)
		}
		if cfg.ScoringWorkers != 8 {
			t.Fatalf("expected scoring workers=8, got=%d", cfg.ScoringWorkers)
		}
		if cfg.InternalJobToken != "internal-job-token" {
			t.Fatalf("unexpected internal job token: %q", cfg.InternalJobToken)
		}
	})

	t.Run("zero workers", func(t *testing.T) {
		t.Setenv("SCORING_WORKERS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SCORING_WORKERS=0")
		}
	})

	t.Run("non positive interval", func(t *testing.T) {
		t.Setenv("POLLER_LEAGUES_INTERVAL", "-1m")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for negative POLLER_LEAGUES_INTERVAL")
		}
	})
}

func TestLoad_RatingKFactor(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.RatingKFactor != 32 {
			t.Fatalf("expected K=32, got=%v", cfg.RatingKFactor)
		}
	})

	t.Run("override", func(t *testing.T) {
		t.Setenv("RATING_K_FACTOR", "24.5")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.RatingKFactor != 24.5 {
			t.Fatalf("expected K=24.5, got=%v", cfg.RatingKFactor)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, raw := range []string{"0", "-8", "steep"} {
			t.Setenv("RATING_K_FACTOR", raw)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for RATING_K_FACTOR=%s", raw)
			}
		}
	})
}

func TestParseUptraceDSNFromOTLPHeaders(t *testing.T) {
	got := parseUptraceDSNFromOTLPHeaders(`foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)
	if got != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected dsn: %q", got)
	}
	if parseUptraceDSNFromOTLPHeaders("foo=bar") != "" {
		t.Fatalf("expected empty dsn without uptrace-dsn header")
	}
}
