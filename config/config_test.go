package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "FOCUSFLOW_DB_PATH", "JWT_SECRET_KEY", "JWT_ISSUER",
		"CORS_ALLOWED_ORIGINS", "CHAT_MAX_MESSAGE_LENGTH", "MAX_GAUGE_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != DefaultPort {
		t.Errorf("Port = %q, want %q", cfg.Port, DefaultPort)
	}
	if cfg.DBPath != DefaultDBPath {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, DefaultDBPath)
	}
	if cfg.MaxChatMessageLen != DefaultMaxChatMessageLen {
		t.Errorf("MaxChatMessageLen = %d, want %d", cfg.MaxChatMessageLen, DefaultMaxChatMessageLen)
	}
	if cfg.MaxGaugeLevel != DefaultMaxGaugeLevel {
		t.Errorf("MaxGaugeLevel = %d, want %d", cfg.MaxGaugeLevel, DefaultMaxGaugeLevel)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CHAT_MAX_MESSAGE_LENGTH", "500")
	t.Setenv("MAX_GAUGE_LEVEL", "10")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.MaxChatMessageLen != 500 {
		t.Errorf("MaxChatMessageLen = %d, want %d", cfg.MaxChatMessageLen, 500)
	}
	if cfg.MaxGaugeLevel != 10 {
		t.Errorf("MaxGaugeLevel = %d, want %d", cfg.MaxGaugeLevel, 10)
	}
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("CHAT_MAX_MESSAGE_LENGTH", "not-a-number")
	t.Setenv("MAX_GAUGE_LEVEL", "-5")

	cfg := Load()

	if cfg.MaxChatMessageLen != DefaultMaxChatMessageLen {
		t.Errorf("MaxChatMessageLen = %d, want default %d", cfg.MaxChatMessageLen, DefaultMaxChatMessageLen)
	}
	if cfg.MaxGaugeLevel != DefaultMaxGaugeLevel {
		t.Errorf("MaxGaugeLevel = %d, want default %d", cfg.MaxGaugeLevel, DefaultMaxGaugeLevel)
	}
}
