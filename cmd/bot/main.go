package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"SpotSentinel/internal/config"
	"SpotSentinel/internal/exchange"
	"SpotSentinel/internal/execution"
	"SpotSentinel/internal/market"
	"SpotSentinel/internal/metrics"
	"SpotSentinel/internal/notifier"
	"SpotSentinel/internal/recorder"
	"SpotSentinel/internal/scheduler"
	"SpotSentinel/internal/trader"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] SpotSentinel starting...")

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

	// Exchange client
	client := exchange.NewBitgetClient(
		cfg.Exchange.BaseURL,
		cfg.Exchange.APIKey,
		cfg.Exchange.APISecret,
		cfg.Exchange.Passphrase,
		cfg.Proxy,
	)
	log.Printf("[INFO] exchange: %s (%s)", client.Name(), cfg.Exchange.Symbol)

	// Gates
	mkt := market.NewGate(client, cfg.Exchange.Symbol, cfg.Loop.RetryAttempts, cfg.RetryDelayDuration())

	var paper *execution.PaperAccount
	if cfg.Trading.DryRun {
		paper = execution.NewPaperAccount(cfg.Trading.CapitalPerCycle)
		log.Printf("[INFO] dry-run mode: paper account seeded with %.2f quote", cfg.Trading.CapitalPerCycle)
	}
	exec := execution.NewGate(client, cfg.Exchange.Symbol,
		cfg.Loop.RetryAttempts, cfg.RetryDelayDuration(),
		cfg.Trading.QuantityStep, cfg.Trading.DryRun, paper)

	// Trading engine
	engine := trader.NewEngine(trader.Params{
		CapitalPerCycle: cfg.Trading.CapitalPerCycle,
		DCALevels:       cfg.Trading.DCALevels,
		DCASplits:       cfg.Trading.DCASplits,
		DipConfirmation: cfg.Trading.DipConfirmation,
		TSLProfitMin:    cfg.Trading.TSLProfitMin,
		TSLBack:         cfg.Trading.TSLBack,
		StopLoss:        cfg.Trading.StopLoss,
		MinNotional:     cfg.Trading.MinNotional,
		QuoteFraction:   cfg.Trading.QuoteFraction,
	})

	// Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	if !tn.Enabled() {
		log.Println("[WARN] telegram not configured, notifications disabled")
	}

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		log.Printf("[INFO] metrics listening on %s", cfg.Metrics.ListenAddr)
		if err := http.ListenAndServe(cfg.Metrics.ListenAddr, mux); err != nil {
			log.Printf("[WARN] metrics server: %v", err)
		}
	}()

	// Scheduler: polling loop + cron summary
	sched := scheduler.NewScheduler(ctx, cfg, mkt, exec, engine, tn, rec)
	if err := sched.RegisterJobs(); err != nil {
		log.Fatalf("[FATAL] register cron jobs: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Telegram command polling
	go tn.StartPolling(ctx, sched.HandleCommand)

	sched.AnnounceStart()
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		sched.Run(ctx)
	}()

	log.Println("[INFO] SpotSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()

	// Let the loop finish its tick and send the session summary before the
	// deferred recorder close runs.
	<-runDone
	log.Println("[INFO] SpotSentinel stopped")
}
