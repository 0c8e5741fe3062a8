package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"SignalSG/internal/assetstore"
	"SignalSG/internal/bot"
	"SignalSG/internal/collector"
	"SignalSG/internal/config"
	"SignalSG/internal/logging"
	"SignalSG/internal/narrative"
	"SignalSG/internal/notifier"
	"SignalSG/internal/pipeline"
	"SignalSG/internal/resolver"
	"SignalSG/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(logging.Options{Level: cfg.Log.Level, FilePath: cfg.Log.File, Debug: cfg.Debug})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("telegram_token", logging.Mask(cfg.Telegram.BotToken)).
		Str("openai_key", logging.Mask(cfg.OpenAI.APIKey)).
		Str("model", cfg.OpenAI.Model).
		Str("directory_mode", cfg.Directory.Mode).
		Msg("SignalSG starting")

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fetcher := collector.NewCoinGeckoFetcher(cfg.CoinGecko.BaseURL, cfg.CoinGecko.APIKey, cfg.Proxy, cfg.Timeout, cfg.CoinGecko.Currencies)
	log.Info().Str("source", fetcher.Name()).Strs("currencies", cfg.CoinGecko.Currencies).Msg("price source ready")

	var res resolver.Resolver
	if cfg.Directory.Mode == config.DirectoryLive {
		res = resolver.NewLiveResolver(fetcher)
	} else {
		var store assetstore.Store
		if cfg.Directory.SQLitePath != "" {
			st, err := assetstore.NewSQLiteStore(cfg.Directory.SQLitePath)
			if err != nil {
				log.Warn().Err(err).Msg("init sqlite store failed, using noop")
				store = assetstore.NewNoopStore()
			} else {
				store = st
				defer st.Close()
			}
		} else {
			store = assetstore.NewNoopStore()
		}

		cached := resolver.NewCachedResolver(fetcher, store)
		if err := cached.Warm(ctx); err != nil {
			log.Warn().Err(err).Msg("warm directory")
		}

		sched := scheduler.NewScheduler(ctx, cached)
		if err := sched.RegisterRefresh(cfg.Directory.RefreshCron); err != nil {
			log.Fatal().Err(err).Msg("register cron tasks")
		}
		if err := sched.RefreshNow(); err != nil {
			log.Warn().Err(err).Time("directory_from", cached.RefreshedAt()).Msg("initial directory refresh failed")
		}
		sched.Start()
		defer sched.Stop()
		res = cached
	}

	gen := narrative.NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.Proxy, cfg.Narrative.Persona, narrative.Params{
		Model:       cfg.OpenAI.Model,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: *cfg.OpenAI.Temperature,
		Timeout:     cfg.Timeout,
	})

	tpl := narrative.DefaultTemplate()
	if cfg.Narrative.Audience != "" {
		tpl.Audience = cfg.Narrative.Audience
	}
	if cfg.Narrative.Style != "" {
		tpl.Style = cfg.Narrative.Style
	}
	if len(cfg.Narrative.Sections) > 0 {
		tpl.Sections = cfg.Narrative.Sections
	}
	if cfg.Narrative.WordLimit > 0 {
		tpl.WordLimit = cfg.Narrative.WordLimit
	}

	tg := notifier.NewTelegramClient(cfg.Telegram.BotToken, cfg.Proxy)
	formatter := notifier.NewFormatter(cfg.Telegram.BotUsername)
	if me, err := tg.GetMe(ctx); err != nil {
		log.Warn().Err(err).Msg("getMe failed")
	} else if me.Username != "" {
		formatter = notifier.NewFormatter(me.Username)
		log.Info().Str("username", me.Username).Msg("telegram bot authorized")
	}

	p := pipeline.New(res, fetcher, tpl, gen, formatter, pipeline.Options{
		Currencies:     cfg.CoinGecko.Currencies,
		IncludeHistory: cfg.Narrative.IncludeHistory,
		HistoryDays:    cfg.Narrative.HistoryDays,
	})
	b := bot.New(tg, p, cfg.Telegram.AllowedChatIDs)

	log.Info().Msg("SignalSG is running. Press Ctrl+C to stop.")
	start := time.Now()
	tg.StartPolling(ctx, b.HandleMessage)

	log.Info().Dur("uptime", time.Since(start)).Msg("SignalSG stopped")
}
