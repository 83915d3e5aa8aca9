package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
limits:
  submit_per_minute: 3
  review_per_10sec: 1
directory:
  page_size: 12
  approve_visible: false
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Limits.SubmitPerMinute != 3 {
		t.Fatalf("unexpected submit_per_minute: %d", cfg.Limits.SubmitPerMinute)
	}
	if cfg.Limits.ReviewPer10Seconds != 1 {
		t.Fatalf("unexpected review_per_10sec: %d", cfg.Limits.ReviewPer10Seconds)
	}
	if cfg.Directory.PageSize != 12 {
		t.Fatalf("unexpected page size: %d", cfg.Directory.PageSize)
	}
	if cfg.Directory.ApproveVisible {
		t.Fatalf("approve_visible override should be false")
	}

	if cfg.Limits.ReviewPerMinute != 10 {
		t.Fatalf("review_per_minute default should stay 10: %d", cfg.Limits.ReviewPerMinute)
	}
	if cfg.Directory.MaxPhotosPerListing != 6 {
		t.Fatalf("max_photos_per_listing default should stay 6: %d", cfg.Directory.MaxPhotosPerListing)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Limits.SubmitPerMinute != 5 {
		t.Fatalf("unexpected default submit_per_minute: %d", cfg.Limits.SubmitPerMinute)
	}
	if cfg.Limits.EventsMaxBatch != 100 {
		t.Fatalf("unexpected default events_max_batch: %d", cfg.Limits.EventsMaxBatch)
	}
	if !cfg.Directory.ApproveVisible {
		t.Fatalf("approve_visible default should be true")
	}
}

func TestLoadRejectsDefaultJWTSecretInProduction(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error when auth.jwt_secret is left at default in production")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_USE_SSL",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"REFRESH_TTL",
		"SUBMIT_PER_MINUTE",
		"REVIEW_PER_MINUTE",
		"EVENTS_MAX_BATCH",
	} {
		t.Setenv(key, "")
	}
}
