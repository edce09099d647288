package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Telegram  TelegramConfig   `json:"telegram"`
	Logging   LoggingConfig    `json:"logging"`
	Providers []ProviderConfig `json:"providers"`
	Broadcast BroadcastConfig  `json:"broadcast"`
	Storage   StorageConfig    `json:"storage"`
}

type TelegramConfig struct {
	Token string `json:"token"`

	// PollTimeout is a Go duration string (e.g. "10s"). Zero means default.
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string         `json:"level,omitempty"`
	Console *bool          `json:"console,omitempty"` // default true
	File    *FileLogConfig `json:"file,omitempty"`
}

type FileLogConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// ProviderConfig declares one content-generation backend.
// Providers are tried in ascending Priority order; the order is fixed
// for the lifetime of the process.
type ProviderConfig struct {
	Name     string `json:"name"` // "gemini", "anthropic", "openai", "ollama"
	Priority int    `json:"priority"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"` // ollama server URL
	Timeout  string `json:"timeout,omitempty"`  // per-call timeout, Go duration string
}

// SlotConfig declares one scheduled broadcast occasion.
type SlotConfig struct {
	Name     string `json:"name"`
	At       string `json:"at"`       // local time "HH:MM"
	Timezone string `json:"timezone"` // IANA TZ, e.g. "Asia/Seoul"
	Topic    string `json:"topic,omitempty"`
}

type BroadcastConfig struct {
	Slots           []SlotConfig `json:"slots"`
	Workers         int          `json:"workers,omitempty"`
	RatePerSec      int          `json:"rate_per_sec,omitempty"`
	SendTimeout     string       `json:"send_timeout,omitempty"`
	GenerateTimeout string       `json:"generate_timeout,omitempty"`
}

type StorageConfig struct {
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite busy timeout
}

func (c *LoggingConfig) ConsoleEnabled() bool {
	if c.Console == nil {
		return true
	}
	return *c.Console
}

// Validate rejects configs that cannot produce a working bot. It is run
// on initial load and before committing a hot reload.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required")
	}
	if len(c.Providers) == 0 {
		return errors.New("at least one provider is required")
	}
	seen := map[string]bool{}
	for i, p := range c.Providers {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			return fmt.Errorf("providers[%d]: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("providers[%d]: duplicate provider %q", i, name)
		}
		seen[name] = true
		if _, err := ParseDurationField(fmt.Sprintf("providers[%d].timeout", i), p.Timeout); err != nil {
			return err
		}
	}
	slotNames := map[string]bool{}
	for i, sl := range c.Broadcast.Slots {
		name := strings.TrimSpace(sl.Name)
		if name == "" {
			return fmt.Errorf("broadcast.slots[%d]: name is required", i)
		}
		if slotNames[name] {
			return fmt.Errorf("broadcast.slots[%d]: duplicate slot %q", i, name)
		}
		slotNames[name] = true
		if _, _, err := ParseHHMM(sl.At); err != nil {
			return fmt.Errorf("broadcast.slots[%d].at: %w", i, err)
		}
		if tz := strings.TrimSpace(sl.Timezone); tz != "" {
			if _, err := time.LoadLocation(tz); err != nil {
				return fmt.Errorf("broadcast.slots[%d].timezone: %w", i, err)
			}
		}
	}
	if _, err := ParseDurationField("broadcast.send_timeout", c.Broadcast.SendTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("broadcast.generate_timeout", c.Broadcast.GenerateTimeout); err != nil {
		return err
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path is required")
	}
	if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
		return err
	}
	return nil
}
