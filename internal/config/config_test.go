package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "BOT_USERNAME", "TELEGRAM_ALLOWED_CHAT_IDS",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "OPENAI_MAX_TOKENS", "OPENAI_TEMPERATURE",
	"COINGECKO_BASE_URL", "COINGECKO_API_KEY", "COINGECKO_CURRENCIES",
	"DIRECTORY_MODE", "DIRECTORY_REFRESH_CRON", "SQLITE_PATH",
	"LOG_LEVEL", "LOG_FILE", "DEBUG_MODE", "HTTPS_PROXY", "HTTP_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "BotSignalSGBot", cfg.Telegram.BotUsername)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.Model)
	assert.Equal(t, 500, cfg.OpenAI.MaxTokens)
	require.NotNil(t, cfg.OpenAI.Temperature)
	assert.InDelta(t, 0.7, *cfg.OpenAI.Temperature, 1e-6)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
	assert.Equal(t, []string{"usd", "sgd"}, cfg.CoinGecko.Currencies)
	assert.Equal(t, DirectoryCached, cfg.Directory.Mode)
	assert.Equal(t, "0 0 */6 * * *", cfg.Directory.RefreshCron)
	assert.Equal(t, 7, cfg.Narrative.HistoryDays)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.False(t, cfg.Debug)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
telegram:
  bot_token: yaml-token
  allowed_chat_ids: [1, 2]
openai:
  api_key: yaml-key
  model: gpt-4o-mini
coingecko:
  currencies: [EUR, usd]
narrative:
  word_limit: 250
  include_history: true
timeout: 5s
`)
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("TELEGRAM_ALLOWED_CHAT_IDS", "42, -100")
	t.Setenv("DEBUG_MODE", "TRUE")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml-token", cfg.Telegram.BotToken)
	assert.Equal(t, "yaml-key", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, []int64{42, -100}, cfg.Telegram.AllowedChatIDs)
	assert.Equal(t, []string{"eur", "usd"}, cfg.CoinGecko.Currencies)
	assert.Equal(t, 250, cfg.Narrative.WordLimit)
	assert.True(t, cfg.Narrative.IncludeHistory)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ZeroTemperatureKept(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "openai:\n  temperature: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.OpenAI.Temperature)
	assert.Zero(t, *cfg.OpenAI.Temperature)

	t.Setenv("OPENAI_TEMPERATURE", "0")
	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NotNil(t, cfg.OpenAI.Temperature)
	assert.Zero(t, *cfg.OpenAI.Temperature)
}

func TestLoad_BadEnvValues(t *testing.T) {
	for key, val := range map[string]string{
		"OPENAI_MAX_TOKENS":         "lots",
		"OPENAI_TEMPERATURE":        "warm",
		"TELEGRAM_ALLOWED_CHAT_IDS": "1,abc",
		"HTTP_TIMEOUT":              "10",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "telegram: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate_EnumeratesMissingCredentials(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required configuration: TELEGRAM_BOT_TOKEN, OPENAI_API_KEY")

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.NotContains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestValidate_Ranges(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cases := map[string]func(c *Config){
		"directory.mode":       func(c *Config) { c.Directory.Mode = "eager" },
		"coingecko.currencies": func(c *Config) { c.CoinGecko.Currencies = []string{"usd"} },
		"openai.max_tokens":    func(c *Config) { c.OpenAI.MaxTokens = -1 },
		"openai.temperature":   func(c *Config) { v := float32(2.5); c.OpenAI.Temperature = &v },
	}
	for want, mutate := range cases {
		t.Run(want, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())
			mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), want)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"usd", "sgd"}, splitList(" usd, ,sgd ,"))
	assert.Nil(t, splitList(" , "))
}
