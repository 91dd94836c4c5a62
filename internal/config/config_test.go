package config

import (
	"os"
	"testing"
)

// Test environment variable keys.
const (
	testEnvTGAPIID       = "TG_API_ID"
	testEnvTGAPIHash     = "TG_API_HASH"
	testEnvBotToken      = "BOT_TOKEN"
	testEnvChannels      = "CHANNELS"
	testEnvSummaryTarget = "SUMMARY_TARGET"
	testEnvTimezone      = "TIMEZONE"
	testEnvLLMAPIKey     = "LLM_API_KEY"
	testEnvSummaryHour   = "SUMMARY_HOUR"
	testEnvFTSKeywords   = "FTS_KEYWORDS"
	testErrLoad          = "Load() error = %v"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()

	t.Setenv(testEnvTGAPIID, "12345")
	t.Setenv(testEnvTGAPIHash, "abcdef123456")
	t.Setenv(testEnvBotToken, "123456:ABC-DEF")
	t.Setenv(testEnvChannels, "channel_one, @channel_two")
	t.Setenv(testEnvSummaryTarget, "@digest_target")
	t.Setenv(testEnvTimezone, "Europe/Kyiv")
	t.Setenv(testEnvLLMAPIKey, "mock")
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv(testEnvTGAPIID)
	os.Unsetenv(testEnvTGAPIHash)
	os.Unsetenv(testEnvBotToken)
	os.Unsetenv(testEnvChannels)
	os.Unsetenv(testEnvSummaryTarget)
	os.Unsetenv(testEnvTimezone)
	os.Unsetenv(testEnvLLMAPIKey)

	if _, err := Load(); err == nil {
		t.Error("expected error for missing required env vars")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.TGAPIID != 12345 {
		t.Errorf("TGAPIID = %d, want %d", cfg.TGAPIID, 12345)
	}

	if cfg.SummaryHour != 21 {
		t.Errorf("SummaryHour = %d, want default 21", cfg.SummaryHour)
	}

	if cfg.LLMModel != "gpt-4o-mini" {
		t.Errorf("LLMModel = %q, want default gpt-4o-mini", cfg.LLMModel)
	}

	if cfg.DBPath != "./messages_fts.db" {
		t.Errorf("DBPath = %q, want default ./messages_fts.db", cfg.DBPath)
	}

	channels := cfg.TrackedChannels()
	if len(channels) != 2 || channels[0] != "channel_one" || channels[1] != "@channel_two" {
		t.Errorf("TrackedChannels() = %v, want trimmed pair", channels)
	}
}

func TestLoad_HourOutOfRange(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv(testEnvSummaryHour, "24")

	if _, err := Load(); err == nil {
		t.Error("expected error for SUMMARY_HOUR=24")
	}
}

func TestLoad_BadTimezone(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv(testEnvTimezone, "Not/AZone")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid timezone")
	}
}

func TestKeywords_SkipsBlanks(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv(testEnvFTSKeywords, "war*, , sanctions ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	kws := cfg.Keywords()
	if len(kws) != 2 || kws[0] != "war*" || kws[1] != "sanctions" {
		t.Errorf("Keywords() = %v, want [war* sanctions]", kws)
	}
}

func TestParseAllowlist(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		userID   int64
		username string
		want     bool
	}{
		{"empty allows everyone", "", 42, "", true},
		{"id match", "42,@alice", 42, "", true},
		{"handle match case-insensitive", "@Alice", 7, "aLiCe", true},
		{"no match", "42,@alice", 7, "bob", false},
		{"invalid entries ignored", "not-a-number", 7, "", true},
		{"no username and no id match", "@alice", 7, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			al := ParseAllowlist(tt.raw)

			if got := al.Allows(tt.userID, tt.username); got != tt.want {
				t.Errorf("Allows(%d, %q) = %v, want %v", tt.userID, tt.username, got, tt.want)
			}
		})
	}
}
