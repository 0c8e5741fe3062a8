package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DirectoryLive   = "live"
	DirectoryCached = "cached"
)

// Config holds all application configuration. It is loaded once at startup
// and passed by value or pointer to constructors; nothing mutates it later.
type Config struct {
	Telegram struct {
		BotToken       string  `yaml:"bot_token"`
		BotUsername    string  `yaml:"bot_username"`
		AllowedChatIDs []int64 `yaml:"allowed_chat_ids"`
	} `yaml:"telegram"`
	OpenAI struct {
		APIKey      string   `yaml:"api_key"`
		BaseURL     string   `yaml:"base_url"`
		Model       string   `yaml:"model"`
		MaxTokens   int      `yaml:"max_tokens"`
		Temperature *float32 `yaml:"temperature"` // nil means unset; 0 is a valid value
	} `yaml:"openai"`
	CoinGecko struct {
		BaseURL    string   `yaml:"base_url"`
		APIKey     string   `yaml:"api_key"`
		Currencies []string `yaml:"currencies"`
	} `yaml:"coingecko"`
	Directory struct {
		Mode        string `yaml:"mode"`
		RefreshCron string `yaml:"refresh_cron"`
		SQLitePath  string `yaml:"sqlite_path"`
	} `yaml:"directory"`
	Narrative struct {
		Persona        string   `yaml:"persona"`
		Audience       string   `yaml:"audience"`
		Style          string   `yaml:"style"`
		Sections       []string `yaml:"sections"`
		WordLimit      int      `yaml:"word_limit"`
		IncludeHistory bool     `yaml:"include_history"`
		HistoryDays    int      `yaml:"history_days"`
	} `yaml:"narrative"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Debug   bool          `yaml:"debug"`
	Proxy   string        `yaml:"proxy"`
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads .env (if present) and the YAML file at path (if present), then
// applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"TELEGRAM_BOT_TOKEN":     &c.Telegram.BotToken,
		"BOT_USERNAME":           &c.Telegram.BotUsername,
		"OPENAI_API_KEY":         &c.OpenAI.APIKey,
		"OPENAI_BASE_URL":        &c.OpenAI.BaseURL,
		"OPENAI_MODEL":           &c.OpenAI.Model,
		"COINGECKO_BASE_URL":     &c.CoinGecko.BaseURL,
		"COINGECKO_API_KEY":      &c.CoinGecko.APIKey,
		"DIRECTORY_MODE":         &c.Directory.Mode,
		"DIRECTORY_REFRESH_CRON": &c.Directory.RefreshCron,
		"SQLITE_PATH":            &c.Directory.SQLitePath,
		"LOG_LEVEL":              &c.Log.Level,
		"LOG_FILE":               &c.Log.File,
		"HTTPS_PROXY":            &c.Proxy,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("OPENAI_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OPENAI_MAX_TOKENS: %w", err)
		}
		c.OpenAI.MaxTokens = n
	}
	if v := os.Getenv("OPENAI_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("OPENAI_TEMPERATURE: %w", err)
		}
		temp := float32(f)
		c.OpenAI.Temperature = &temp
	}
	if v := os.Getenv("COINGECKO_CURRENCIES"); v != "" {
		c.CoinGecko.Currencies = splitList(v)
	}
	if v := os.Getenv("TELEGRAM_ALLOWED_CHAT_IDS"); v != "" {
		ids := make([]int64, 0)
		for _, s := range splitList(v) {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("TELEGRAM_ALLOWED_CHAT_IDS: %w", err)
			}
			ids = append(ids, id)
		}
		c.Telegram.AllowedChatIDs = ids
	}
	if v := os.Getenv("DEBUG_MODE"); v != "" {
		c.Debug = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HTTP_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Telegram.BotUsername == "" {
		c.Telegram.BotUsername = "BotSignalSGBot"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-3.5-turbo"
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 500
	}
	if c.OpenAI.Temperature == nil {
		temp := float32(0.7)
		c.OpenAI.Temperature = &temp
	}
	if c.CoinGecko.BaseURL == "" {
		c.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if len(c.CoinGecko.Currencies) == 0 {
		c.CoinGecko.Currencies = []string{"usd", "sgd"}
	}
	for i, cur := range c.CoinGecko.Currencies {
		c.CoinGecko.Currencies[i] = strings.ToLower(strings.TrimSpace(cur))
	}
	if c.Directory.Mode == "" {
		c.Directory.Mode = DirectoryCached
	}
	if c.Directory.RefreshCron == "" {
		c.Directory.RefreshCron = "0 0 */6 * * *"
	}
	if c.Directory.SQLitePath == "" {
		c.Directory.SQLitePath = "data/assets.db"
	}
	if c.Narrative.HistoryDays == 0 {
		c.Narrative.HistoryDays = 7
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = "logs/signalsg.log"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// Validate checks that all required fields are set. Every missing
// credential is named in the returned error.
func (c *Config) Validate() error {
	var missing []string
	if c.Telegram.BotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.OpenAI.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", ")))
	}
	if c.Directory.Mode != DirectoryLive && c.Directory.Mode != DirectoryCached {
		errs = append(errs, fmt.Errorf("directory.mode must be %q or %q, got %q", DirectoryLive, DirectoryCached, c.Directory.Mode))
	}
	if len(c.CoinGecko.Currencies) < 2 {
		errs = append(errs, fmt.Errorf("coingecko.currencies needs a primary and a secondary currency"))
	}
	if c.OpenAI.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("openai.max_tokens must be positive"))
	}
	if t := c.OpenAI.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, fmt.Errorf("openai.temperature must be within [0, 2]"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
