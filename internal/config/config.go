package config

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultPanelRefreshIntervalSec is the seconds between full panel refreshes.
	DefaultPanelRefreshIntervalSec = 300
	// DefaultWizardStepTimeoutSec is how long the wizard waits for each answer.
	DefaultWizardStepTimeoutSec = 120
	// DefaultDowntimeRole is the role allowed to schedule downtime on Discord.
	DefaultDowntimeRole = "downtime"
)

type Config struct {
	Env      string
	LogLevel string `validate:"omitempty,oneof=debug info warn error"`

	DiscordToken        string `validate:"required_without=TelegramToken"`
	TelegramToken       string
	GuildID             int64   // DISCORD_GUILD_ID, also a sync guild
	SyncGuildIDs        []int64 // guilds that get commands registered directly
	AllowedGuildIDs     []int64 // empty allows every guild
	AllowedChatIDs      []int64 // Telegram chats; empty allows every chat
	ClearGlobalCommands bool
	DowntimeRoleName    string `validate:"required"`

	StorageBackend string `validate:"oneof=file postgres redis s3"`
	DataFile       string
	DatabaseURL    string `validate:"required_if=StorageBackend postgres"`
	RedisURL       string `validate:"required_if=StorageBackend redis"`
	RedisKey       string
	S3Bucket       string `validate:"required_if=StorageBackend s3"`
	S3Key          string
	S3Region       string

	RabbitMQURL string // empty disables change notifications and refresh requests
	Port        string // empty disables the HTTP API
	EventsFile  string

	PanelRefreshInterval int `validate:"gte=0"` // seconds, 0 disables
	WizardStepTimeout    int `validate:"gt=0"`  // seconds
	DebugTimeParse       bool
}

func Load() *Config {
	guildID := firstID(getEnv("DISCORD_GUILD_ID", ""))
	sync := ParseIDList(getEnv("DISCORD_GUILD_IDS", ""))
	if guildID != 0 {
		sync = append(sync, guildID)
	}
	slices.Sort(sync)
	sync = slices.Compact(sync)

	return &Config{
		Env:                  getEnv("APP_ENV", "production"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DiscordToken:         getEnv("DISCORD_BOT_TOKEN", ""),
		TelegramToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
		GuildID:              guildID,
		SyncGuildIDs:         sync,
		AllowedGuildIDs:      ParseIDList(getEnv("ALLOWED_GUILD_IDS", "")),
		AllowedChatIDs:       ParseIDList(getEnv("ALLOWED_TELEGRAM_CHAT_IDS", "")),
		ClearGlobalCommands:  getEnvBool("DISCORD_CLEAR_GLOBAL_COMMANDS", false),
		DowntimeRoleName:     getEnv("DOWNTIME_ROLE_NAME", DefaultDowntimeRole),
		StorageBackend:       getEnv("STORAGE_BACKEND", "file"),
		DataFile:             getEnv("DATA_FILE", "bot_data.json"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisKey:             getEnv("REDIS_STATE_KEY", "downtimebot:state"),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		S3Key:                getEnv("S3_STATE_KEY", "downtimebot/state.json"),
		S3Region:             getEnv("AWS_REGION", ""),
		RabbitMQURL:          getEnv("RABBITMQ_URL", ""),
		Port:                 getEnv("PORT", "8080"),
		EventsFile:           getEnv("EVENTS_FILE", ""),
		PanelRefreshInterval: getEnvInt("PANEL_REFRESH_INTERVAL_SEC", DefaultPanelRefreshIntervalSec),
		WizardStepTimeout:    getEnvInt("WIZARD_STEP_TIMEOUT_SEC", DefaultWizardStepTimeoutSec),
		DebugTimeParse:       getEnvBool("DEBUG_TIME_PARSE", false),
	}
}

// Validate checks required settings for the chosen backends.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LegacyGuildID is the guild that receives single-guild state from old data
// files: the only allowed guild, else the only sync guild, else
// DISCORD_GUILD_ID. Zero when none applies.
func (c *Config) LegacyGuildID() int64 {
	switch {
	case len(c.AllowedGuildIDs) == 1:
		return c.AllowedGuildIDs[0]
	case len(c.SyncGuildIDs) == 1:
		return c.SyncGuildIDs[0]
	default:
		return c.GuildID
	}
}

// GuildAllowed reports whether the bot may serve a Discord guild.
func (c *Config) GuildAllowed(guildID int64) bool {
	return len(c.AllowedGuildIDs) == 0 || slices.Contains(c.AllowedGuildIDs, guildID)
}

// ChatAllowed reports whether the bot may serve a Telegram chat.
func (c *Config) ChatAllowed(chatID int64) bool {
	return len(c.AllowedChatIDs) == 0 || slices.Contains(c.AllowedChatIDs, chatID)
}

var idPattern = regexp.MustCompile(`-?\d{5,}`)

// ParseIDList extracts every id of five or more digits from value, in any
// separator style ("1, 2", "1 2", "[1;2]").
func ParseIDList(value string) []int64 {
	var ids []int64
	for _, m := range idPattern.FindAllString(value, -1) {
		if id, err := strconv.ParseInt(m, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func firstID(value string) int64 {
	value = strings.TrimSpace(value)
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		return id
	}
	return 0
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
