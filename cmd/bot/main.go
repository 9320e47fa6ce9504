package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lrndwy/tradingbotv3/internal/analyzer"
	"github.com/lrndwy/tradingbotv3/internal/collector"
	"github.com/lrndwy/tradingbotv3/internal/config"
	"github.com/lrndwy/tradingbotv3/internal/ledger"
	"github.com/lrndwy/tradingbotv3/internal/notifier"
	"github.com/lrndwy/tradingbotv3/internal/scheduler"
	"github.com/lrndwy/tradingbotv3/internal/session"
	"github.com/lrndwy/tradingbotv3/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] trading bot starting...")

	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init store
	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] init store: %v", err)
	}
	defer st.Close()

	// Init data sources
	fetcher := collector.NewBinanceFetcher(cfg.DataSource.BinanceURL, cfg.Proxy)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	sentiment := collector.NewSentimentSource(cfg.DataSource.SentimentURL)
	col := collector.NewCollector(fetcher, st, cfg.DataSource.Symbols)

	// Init core services
	lg := ledger.NewManager(st, fetcher)
	an := analyzer.New(st, fetcher, sentiment, cfg.DataSource.Symbols)
	sessions := session.NewStore(session.DefaultTTL)

	// Init Telegram
	tg := notifier.NewTelegramClient(cfg.Telegram.BotToken, cfg.Proxy)
	handler := notifier.NewHandler(st, lg, an, sessions)
	dispatcher := notifier.NewDispatcher(st, an, tg)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, sentiment, dispatcher)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.NotifyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tg.StartPolling(ctx, handler)
	log.Println("[INFO] Telegram polling started")

	// Optional: warm the candle cache immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing market data now")
		go sched.RunRefreshNow()
	}

	log.Println("[INFO] trading bot is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] trading bot stopped")
}
