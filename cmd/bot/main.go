package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"legalbot/internal/adapter/repo"
	"legalbot/internal/bot"
	"legalbot/internal/conversation"
	"legalbot/internal/domain"
	"legalbot/internal/entitlement"
	"legalbot/internal/http/handlers"
	httpapi "legalbot/internal/http/httpapi"
	"legalbot/internal/infra"
	"legalbot/internal/infra/credentials"
	"legalbot/internal/jobs"
	"legalbot/internal/legal"
	"legalbot/internal/modules"
	"legalbot/internal/observability"
	"legalbot/internal/plans"
	"legalbot/internal/providers/genai"
	"legalbot/internal/telegram"
)

type stores struct {
	accounts    domain.AccountRepository
	usage       domain.UsageRepository
	legal       domain.LegalRepository
	stats       domain.StatsRepository
	credentials *credentials.Store
	pool        *pgxpool.Pool
}

func openStores(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == infra.StoreDriverMemory {
		mem := repo.NewMemoryStore()
		return &stores{accounts: mem.Accounts, usage: mem.Usage, legal: mem.Legal, stats: mem}, nil
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := infra.PingDB(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	runner := infra.NewSQLRunner(pool, logger)
	return &stores{
		accounts:    repo.NewAccountRepository(runner),
		usage:       repo.NewUsageRepository(runner),
		legal:       repo.NewLegalRepository(runner),
		stats:       repo.NewStatsRepository(runner),
		credentials: credentials.NewStore(runner),
		pool:        pool,
	}, nil
}

func conversationStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (conversation.Store, func()) {
	if cfg.RedisURL == "" {
		return conversation.NewMemoryStore(cfg.ConversationTTL), func() {}
	}
	client, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	return conversation.NewRedisStore(client), func() { _ = client.Close() }
}

func newGenerator(ctx context.Context, cfg *infra.Config, st *stores, logger *zerolog.Logger, metrics *observability.Metrics) genai.Generator {
	key, err := credentials.ResolveGeminiKey(ctx, cfg.GeminiAPIKey, st.credentials)
	if err != nil {
		logger.Warn().Err(err).Msg("could not read stored gemini key")
	}
	if key == "" {
		logger.Warn().Msg("no gemini key configured; legal answers are disabled")
		return genai.Disabled{}
	}
	client, err := genai.NewClient(ctx, genai.Options{
		APIKey:  key,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init gemini client")
	}
	logger.Info().Str("model", client.Model()).Msg("gemini client ready")
	return client
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)
	metrics := observability.NewMetrics()

	ctx := context.Background()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	if st.pool != nil {
		defer st.pool.Close()
	}

	convStore, closeConv := conversationStore(ctx, cfg, logger)
	defer closeConv()

	registry, err := plans.Default()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load plan table")
	}

	tg, err := telegram.NewClient(telegram.Options{Token: cfg.TelegramBotToken, Logger: &logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to reach telegram")
	}

	ent := entitlement.NewService(st.accounts, st.usage, registry, entitlement.Options{Logger: &logger, Metrics: metrics})
	analyzer := legal.NewAnalyzer(st.legal, newGenerator(ctx, cfg, st, &logger, metrics), legal.Options{
		CacheSize: cfg.LegalSearchCacheSize,
		CacheTTL:  cfg.LegalSearchCacheTTL,
		Logger:    &logger,
	})

	deps := modules.Deps{
		Sender:        tg,
		Entitlement:   ent,
		Legal:         analyzer,
		Conversations: conversation.NewMachine(convStore, conversation.Options{TTL: cfg.ConversationTTL}),
		Accounts:      st.accounts,
		Stats:         st.stats,
		AdminIDs:      cfg.AdminIDs,
		Broadcast:     modules.BroadcastOptions{RatePerSec: cfg.BroadcastRatePerSec, Concurrency: cfg.BroadcastConcurrency},
		Logger:        &logger,
		Metrics:       metrics,
	}

	reg, err := bot.NewRegistry(modules.All(deps)...)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register modules")
	}
	dispatcher := bot.NewDispatcher(reg, tg, bot.Options{
		RateLimit: cfg.UserRateLimitPerMin,
		Timeout:   cfg.HandlerTimeout,
		AdminIDs:  cfg.AdminIDs,
		Logger:    &logger,
		Metrics:   metrics,
	})
	logger.Info().Strs("modules", dispatcher.Modules()).Str("bot", tg.Username()).Msg("bot ready")

	var digest *jobs.Scheduler
	if cfg.DigestSchedule != "" && len(cfg.AdminIDs) > 0 {
		digest, err = jobs.NewDigestScheduler(cfg.DigestSchedule, modules.NewAdmin(deps), logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid digest schedule")
		}
		digest.Start()
		logger.Info().Time("next", digest.Next()).Msg("admin digest scheduled")
	}

	if endpoint := cfg.WebhookEndpoint(); endpoint != "" {
		hookCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		if err := tg.SetWebhook(hookCtx, endpoint, cfg.WebhookSecret); err != nil {
			logger.Error().Err(err).Msg("failed to register webhook")
		} else {
			logger.Info().Str("url", cfg.WebhookURL+"/webhook/***").Msg("webhook registered")
		}
		cancel()
	} else {
		logger.Warn().Msg("WEBHOOK_URL not set; register the webhook through /admin/webhook once it is")
	}

	app := &handlers.App{
		Updates:         dispatcher,
		Webhooks:        tg,
		BotToken:        cfg.TelegramBotToken,
		WebhookSecret:   cfg.WebhookSecret,
		WebhookEndpoint: cfg.WebhookEndpoint(),
		StoreDriver:     cfg.StoreDriver,
		Metrics:         metrics,
		Logger:          logger,
	}
	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, httpapi.Options{AdminToken: cfg.AdminAPIToken}), logger)

	go func() {
		logger.Info().Msgf("bot listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HandlerTimeout+10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("updates still running at shutdown")
	}
	if digest != nil {
		if err := digest.Stop(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("digest still running at shutdown")
		}
	}
	logger.Info().Msg("bot stopped")
}
