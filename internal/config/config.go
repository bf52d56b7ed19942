package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultRetryCeiling is the number of retries after which a message is
// abandoned: left in the ledger, excluded from selection.
const DefaultRetryCeiling = 4

// Bot is one publishing identity. Messages whose archived author matches
// UserID are sent through this bot without an author prefix; a bot with
// UserID == 0 is the fallback identity for everyone else.
type Bot struct {
	Token  string `toml:"token"`
	UserID int64  `toml:"user_id"`
}

// Config holds everything a migration run needs.
type Config struct {
	Archive      string `toml:"archive"`
	ChatID       int64  `toml:"chat_id"`
	MediaDir     string `toml:"media_dir"`
	RetryCeiling int    `toml:"retry_ceiling"`
	LogFile      string `toml:"log_file"`
	Bots         []Bot  `toml:"bots"`
}

// Default returns a config with defaults applied and no run-specific values.
func Default() *Config {
	return &Config{RetryCeiling: DefaultRetryCeiling}
}

// Load reads config from the given TOML path on top of defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// ParseBot parses the "token" or "token/user_id" CLI form of a bot spec,
// e.g. "123:abcde/100000".
func ParseBot(spec string) (Bot, error) {
	token, idPart, hasID := strings.Cut(spec, "/")
	if token == "" {
		return Bot{}, fmt.Errorf("bot spec %q: empty token", spec)
	}
	if !hasID {
		return Bot{Token: token}, nil
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return Bot{}, fmt.Errorf("bot spec %q: user id: %w", spec, err)
	}
	return Bot{Token: token, UserID: id}, nil
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	switch {
	case c.Archive == "":
		return fmt.Errorf("archive database path is required")
	case c.ChatID == 0:
		return fmt.Errorf("chat id is required")
	case c.MediaDir == "":
		return fmt.Errorf("media directory is required")
	case len(c.Bots) == 0:
		return fmt.Errorf("at least one bot is required")
	case c.RetryCeiling < 0:
		return fmt.Errorf("retry ceiling must be non-negative")
	}
	for _, b := range c.Bots {
		if b.Token == "" {
			return fmt.Errorf("bot with empty token")
		}
	}
	return nil
}

// BotUserIDs returns the author ids that publish under their own bot
// identity and therefore need no author prefix in rendered text.
func (c *Config) BotUserIDs() []int64 {
	var ids []int64
	for _, b := range c.Bots {
		if b.UserID != 0 {
			ids = append(ids, b.UserID)
		}
	}
	return ids
}
