package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"alphascan/internal/config"
	"alphascan/internal/dedup"
	"alphascan/internal/dexscreener"
	"alphascan/internal/filter"
	"alphascan/internal/logger"
	"alphascan/internal/notifier"
	"alphascan/internal/scanner"
	"alphascan/internal/scoring"
	"alphascan/internal/storage"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

const shutdownGrace = 30 * time.Second

func main() {
	flag.Parse()

	// Secrets (ALPHASCAN_TELEGRAM_BOT_TOKEN etc.) may live in a local .env.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store, err := storage.New(cfg.Storage.MaxAlerts, cfg.Storage.DBPath)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dedupStore, err := buildDedupStore(ctx, cfg, store)
	if err != nil {
		logger.Fatal("Failed to initialize dedup store: %v", err)
	}

	client := dexscreener.NewClient(
		cfg.DexScreener.BaseURL,
		cfg.DexScreener.ChainID,
		cfg.DexScreener.Timeout,
		dexscreener.ClientConfig{
			MaxRetries:     cfg.DexScreener.MaxRetries,
			RetryDelayBase: cfg.DexScreener.RetryDelayBase,
		},
	)

	var tg *notifier.Telegram
	if cfg.Telegram.Enabled {
		tg, err = notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID,
			cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		tg.SetHistory(store)
		tg.ListenForCommands(ctx)
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	scanConfig := scanner.Config{
		Interval: cfg.Scanner.Interval,
		Query:    cfg.DexScreener.Query,
		MinScore: cfg.Scanner.MinScore,
	}
	policy := filter.Policy{
		MinLiquidityUSD:  cfg.Filter.MinLiquidityUSD,
		MinMarketCapUSD:  cfg.Filter.MinMarketCapUSD,
		MaxMarketCapUSD:  cfg.Filter.MaxMarketCapUSD,
		MinAgeMinutes:    cfg.Filter.MinAgeMinutes,
		MaxAgeMinutes:    cfg.Filter.MaxAgeMinutes,
		MinTx24hBuys:     cfg.Filter.MinTx24hBuys,
		MinTx24hSells:    cfg.Filter.MinTx24hSells,
		MinTx5mTotal:     cfg.Filter.MinTx5mTotal,
		KeywordAllowlist: cfg.Filter.KeywordAllowlist,
	}
	engine := scoring.New(scoring.DefaultConfig())

	var notify scanner.Notifier
	if tg != nil {
		notify = tg
	}
	sc := scanner.New(client, dedupStore, store, notify, engine, policy, scanConfig)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("Starting scan loop (interval: %v, query: %q, chain: %s, min_score: %d)",
			cfg.Scanner.Interval, cfg.DexScreener.Query, cfg.DexScreener.ChainID, cfg.Scanner.MinScore)
		sc.Run(ctx)
	}()

	<-sigChan
	logger.Info("Shutdown signal received, waiting for in-flight pass...")
	cancel()

	select {
	case <-done:
		logger.Info("Service stopped")
	case <-time.After(shutdownGrace):
		logger.Warn("Shutdown grace period elapsed, exiting with pass in flight")
	}
}

// buildDedupStore constructs the configured seen-set backend. The memory
// backend is seeded from stored alert history so a restart does not
// re-alert pairs that already fired.
func buildDedupStore(ctx context.Context, cfg *config.Config, store *storage.Storage) (dedup.Store, error) {
	switch cfg.Dedup.Backend {
	case "redis":
		rs := dedup.NewRedisStore(cfg.Dedup.RedisAddr, cfg.Dedup.RedisPassword,
			cfg.Dedup.RedisDB, cfg.Dedup.TTL)
		if err := rs.Ping(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using Redis dedup store at %s", cfg.Dedup.RedisAddr)
		return rs, nil
	default:
		ms := dedup.NewMemoryStore(cfg.Dedup.TTL)
		ids, err := store.SeenPairIDs(cfg.Dedup.TTL)
		if err != nil {
			logger.Warn("Failed to load seen pairs from history: %v", err)
		} else {
			ms.Preload(ids)
			logger.Info("Seeded dedup store with %d previously alerted pairs", ms.Len())
		}
		return ms, nil
	}
}
