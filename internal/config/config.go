package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	maxHour        = 23
	minutesPerHour = 60
)

// Static errors for config validation.
var (
	ErrNoChannels      = errors.New("CHANNELS is empty - add at least one channel")
	ErrHourOutOfRange  = errors.New("SUMMARY_HOUR out of range (0-23)")
	ErrMinOutOfRange   = errors.New("SUMMARY_MINUTE out of range (0-59)")
	ErrInvalidTimezone = errors.New("invalid TIMEZONE")
)

type Config struct {
	AppEnv        string `env:"APP_ENV" envDefault:"local"`
	TGAPIID       int    `env:"TG_API_ID,required"`
	TGAPIHash     string `env:"TG_API_HASH,required"`
	TGPhone       string `env:"TG_PHONE"`
	TG2FAPassword string `env:"TG_2FA_PASSWORD"`
	TGSessionPath string `env:"TG_SESSION_PATH" envDefault:"./tg.session"`
	BotToken      string `env:"BOT_TOKEN,required"`

	// Comma-separated numeric user IDs and @handles. Empty means unrestricted.
	AllowedUsersRaw string `env:"TG_ALLOWED_USERS"`

	Channels      []string `env:"CHANNELS,required" envSeparator:","`
	SummaryTarget string   `env:"SUMMARY_TARGET,required"`
	SummaryHour   int      `env:"SUMMARY_HOUR" envDefault:"21"`
	SummaryMinute int      `env:"SUMMARY_MINUTE" envDefault:"0"`
	Timezone      string   `env:"TIMEZONE,required"`

	DBPath      string   `env:"DB_PATH" envDefault:"./messages_fts.db"`
	FTSKeywords []string `env:"FTS_KEYWORDS" envSeparator:","`

	LLMAPIKey    string `env:"LLM_API_KEY,required"`
	LLMModel     string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMBaseURL   string `env:"LLM_BASE_URL"`
	SystemPrompt string `env:"SYSTEM_PROMPT"`
	UserPrompt   string `env:"USER_PROMPT"`

	MaxDigestDocs int    `env:"MAX_DIGEST_DOCS" envDefault:"200"`
	HealthPort    int    `env:"HEALTH_PORT" envDefault:"8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the ranges env tags cannot express.
func (c *Config) Validate() error {
	if len(c.TrackedChannels()) == 0 {
		return ErrNoChannels
	}

	if c.SummaryHour < 0 || c.SummaryHour > maxHour {
		return fmt.Errorf("%w: %d", ErrHourOutOfRange, c.SummaryHour)
	}

	if c.SummaryMinute < 0 || c.SummaryMinute >= minutesPerHour {
		return fmt.Errorf("%w: %d", ErrMinOutOfRange, c.SummaryMinute)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimezone, err)
	}

	return nil
}

// Location resolves the configured reference timezone.
// Validate has already guaranteed it parses.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

// TrackedChannels returns the configured channel references with blanks removed.
func (c *Config) TrackedChannels() []string {
	out := make([]string, 0, len(c.Channels))

	for _, ch := range c.Channels {
		ch = strings.TrimSpace(ch)
		if ch != "" {
			out = append(out, ch)
		}
	}

	return out
}

// Keywords returns the configured full-text terms with blanks removed.
func (c *Config) Keywords() []string {
	out := make([]string, 0, len(c.FTSKeywords))

	for _, kw := range c.FTSKeywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			out = append(out, kw)
		}
	}

	return out
}

// Allowlist holds the parsed command allowlist. An empty allowlist
// permits everyone.
type Allowlist struct {
	UserIDs   map[int64]struct{}
	Usernames map[string]struct{}
}

// ParseAllowlist splits the raw allowed-users value into numeric IDs and
// lowercased handles. Entries that are neither are skipped.
func ParseAllowlist(raw string) Allowlist {
	al := Allowlist{
		UserIDs:   make(map[int64]struct{}),
		Usernames: make(map[string]struct{}),
	}

	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		if strings.HasPrefix(item, "@") {
			al.Usernames[strings.ToLower(strings.TrimPrefix(item, "@"))] = struct{}{}

			continue
		}

		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			continue
		}

		al.UserIDs[id] = struct{}{}
	}

	return al
}

// IsEmpty reports whether no restriction is configured.
func (a Allowlist) IsEmpty() bool {
	return len(a.UserIDs) == 0 && len(a.Usernames) == 0
}

// Allows reports whether the sender may invoke commands.
func (a Allowlist) Allows(userID int64, username string) bool {
	if a.IsEmpty() {
		return true
	}

	if _, ok := a.UserIDs[userID]; ok {
		return true
	}

	if username == "" {
		return false
	}

	_, ok := a.Usernames[strings.ToLower(username)]

	return ok
}
