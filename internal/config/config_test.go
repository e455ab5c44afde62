package config

import (
	"os"
	"testing"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	// 环境变量未设置时，应该返回默认值
	_ = os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "9000" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "9000")
	}

	// 环境变量设置后，应优先返回环境变量
	if err := os.Setenv(key, "8080"); err != nil {
		t.Fatalf("Setenv error: %v", err)
	}
	defer os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "8080" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "8080")
	}
}

func TestGetEnvIntRejectsInvalidValues(t *testing.T) {
	const key = "TEST_MAX_ARTICLES"
	defer os.Unsetenv(key)

	_ = os.Unsetenv(key)
	if got := getEnvInt(key, 5); got != 5 {
		t.Fatalf("getEnvInt unset = %d, want 5", got)
	}

	_ = os.Setenv(key, "12")
	if got := getEnvInt(key, 5); got != 12 {
		t.Fatalf("getEnvInt = %d, want 12", got)
	}

	// 非数字与非正数都回落到默认值
	_ = os.Setenv(key, "abc")
	if got := getEnvInt(key, 5); got != 5 {
		t.Fatalf("getEnvInt non-numeric = %d, want 5", got)
	}
	_ = os.Setenv(key, "-3")
	if got := getEnvInt(key, 5); got != 5 {
		t.Fatalf("getEnvInt negative = %d, want 5", got)
	}
}

func TestLoadReadsPortAndLimits(t *testing.T) {
	_ = os.Setenv("APP_PORT", "1234")
	_ = os.Setenv("SCRAPE_MAX_ARTICLES", "7")
	defer func() {
		_ = os.Unsetenv("APP_PORT")
		_ = os.Unsetenv("SCRAPE_MAX_ARTICLES")
	}()

	cfg := Load()
	if cfg.AppPort != "1234" {
		t.Fatalf("AppPort = %q, want %q", cfg.AppPort, "1234")
	}
	if cfg.MaxArticles != 7 {
		t.Fatalf("MaxArticles = %d, want 7", cfg.MaxArticles)
	}
	if cfg.CronSpec == "" || cfg.PostgresDSN == "" || cfg.RedisAddr == "" {
		t.Fatalf("defaults should be filled: %+v", cfg)
	}
}
