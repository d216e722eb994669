// Package scheduler drives the trading cadence: a sequential polling loop
// with a volatility-derived cooldown, plus a cron job for the daily
// summary and the Telegram command handler.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"SpotSentinel/internal/config"
	"SpotSentinel/internal/execution"
	"SpotSentinel/internal/indicator"
	"SpotSentinel/internal/market"
	"SpotSentinel/internal/metrics"
	"SpotSentinel/internal/model"
	"SpotSentinel/internal/notifier"
	"SpotSentinel/internal/recorder"
	"SpotSentinel/internal/trader"
)

// postTradePause is the short fixed sleep after an executed order, before
// the next tick.
const postTradePause = 600 * time.Millisecond

// Scheduler owns the polling loop and the position state it threads
// through the trading engine.
type Scheduler struct {
	cfg      *config.Config
	market   *market.Gate
	exec     *execution.Gate
	engine   *trader.Engine
	history  *trader.History
	notifier *notifier.TelegramNotifier
	recorder recorder.Recorder
	cron     *cron.Cron
	ctx      context.Context

	// mu guards the snapshot fields below: the loop writes them, the
	// Telegram command handler and the cron job read them.
	mu        sync.Mutex
	pos       model.Position
	lastPrice float64
	session   *trader.Stats
	daily     *trader.Stats
}

// NewScheduler wires the loop's collaborators together.
func NewScheduler(ctx context.Context, cfg *config.Config, mkt *market.Gate, exec *execution.Gate, engine *trader.Engine, tn *notifier.TelegramNotifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		market:   mkt,
		exec:     exec,
		engine:   engine,
		history:  trader.NewHistory(cfg.Indicators.FlashWindow, cfg.Indicators.OHLCVLimit),
		notifier: tn,
		recorder: rec,
		cron:     cron.New(cron.WithSeconds()),
		ctx:      ctx,
		session:  trader.NewStats(),
		daily:    trader.NewStats(),
	}
}

// RegisterJobs registers the daily summary cron job.
func (s *Scheduler) RegisterJobs() error {
	if _, err := s.cron.AddFunc(s.cfg.Loop.SummaryCron, s.dailySummary); err != nil {
		return fmt.Errorf("register summary job: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[INFO] cron jobs started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[INFO] cron jobs stopped")
}

// AnnounceStart sends the startup notification and records the event.
func (s *Scheduler) AnnounceStart() {
	s.trySend(notifier.FormatStartup(s.cfg.Exchange.Symbol, s.exec.DryRun(), s.engine.Parameters()))
	s.recordEvent("INFO", "startup", fmt.Sprintf("symbol=%s dry_run=%v", s.cfg.Exchange.Symbol, s.exec.DryRun()))
}

// Run drives the polling loop until the context is cancelled. Every tick
// is processed sequentially; a tick that fails is skipped, never fatal.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("[INFO] polling loop started: %s, dry_run=%v", s.cfg.Exchange.Symbol, s.exec.DryRun())
	for {
		pause := s.safeTick(ctx)
		select {
		case <-ctx.Done():
			log.Println("[INFO] polling loop stopped")
			s.trySend(notifier.FormatSummary("Session summary", s.sessionSnapshot()))
			return
		case <-time.After(pause):
		}
	}
}

// safeTick runs one tick, converting a panic into a logged, notified,
// non-fatal error with a short recovery pause.
func (s *Scheduler) safeTick(ctx context.Context) (pause time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			metrics.TickErrorsTotal.Inc()
			err := fmt.Errorf("tick panic: %v", r)
			log.Printf("[ERROR] %v", err)
			s.notifyAsync(notifier.FormatError(err))
			s.recordEvent("ERROR", "tick_panic", err.Error())
			pause = time.Second
		}
	}()
	return s.tick(ctx)
}

func (s *Scheduler) tick(ctx context.Context) time.Duration {
	base := s.cfg.BaseIntervalDuration()

	tick, err := s.market.Ticker(ctx)
	if err != nil {
		metrics.TickErrorsTotal.Inc()
		log.Printf("[ERROR] ticker unavailable, skipping tick: %v", err)
		return base
	}
	price := tick.Price
	s.history.Observe(price)
	metrics.TicksTotal.Inc()
	metrics.LastPrice.Set(price)

	in := trader.TickInput{Price: price}

	// Indicator insufficiency or a failed candle fetch leaves the trend
	// filter defaulting to pass; it never blocks the loop.
	bars, err := s.market.OHLCV(ctx, s.cfg.Indicators.OHLCVTimeframe, s.cfg.Indicators.OHLCVLimit)
	if err != nil {
		log.Printf("[WARN] candles unavailable, indicators disabled this tick: %v", err)
	} else {
		closes := model.Closes(bars)
		if ema, err := indicator.CalculateEMA(closes, s.cfg.Indicators.EMAPeriod); err == nil {
			in.EMA, in.EMAValid = ema, true
		}
		if atr, err := indicator.CalculateATR(bars, s.cfg.Indicators.ATRPeriod); err == nil {
			in.ATR, in.ATRValid = atr, true
		}
	}

	var liquidityRatio float64
	book, err := s.market.OrderBook(ctx, s.cfg.Indicators.LiquidityDepth)
	if err != nil {
		log.Printf("[WARN] order book unavailable, no spike check this tick: %v", err)
	} else {
		in.LiquiditySpike, liquidityRatio = indicator.LiquidityImbalance(
			book.Bids, book.Asks, s.cfg.Indicators.LiquidityDepth, s.cfg.Indicators.LiquiditySpikeRatio)
	}

	bal, err := s.exec.Balance(ctx)
	if err != nil {
		metrics.TickErrorsTotal.Inc()
		log.Printf("[ERROR] balance unavailable, skipping tick: %v", err)
		return base
	}
	in.QuoteBalance = bal.Quote
	in.BaseBalance = bal.Base

	in.FlashCrash = s.history.FlashCrash(s.cfg.Indicators.FlashCrashThreshold)

	s.mu.Lock()
	pos := s.pos
	s.mu.Unlock()

	pos, decision := s.engine.Decide(pos, in)
	metrics.DecisionsTotal.WithLabelValues(string(decision.Action)).Inc()

	executed := false
	switch decision.Action {
	case trader.ActionBuy:
		pos, executed = s.executeBuy(ctx, pos, decision, price)
	case trader.ActionSell:
		pos, executed = s.executeSell(ctx, pos, decision, price)
	}

	s.mu.Lock()
	s.pos = pos
	s.lastPrice = price
	s.mu.Unlock()

	metrics.PositionQuantity.Set(pos.Quantity)
	metrics.AvgEntryPrice.Set(pos.AvgEntry)

	cooldown := indicator.DynamicCooldown(s.history.Closes(), base,
		time.Duration(s.cfg.Loop.MinCooldown*float64(time.Second)),
		time.Duration(s.cfg.Loop.MaxCooldown*float64(time.Second)))
	metrics.CooldownSeconds.Set(cooldown.Seconds())

	if err := s.recorder.RecordTick(&recorder.TickRecord{
		Price:           price,
		EMA:             in.EMA,
		ATR:             in.ATR,
		LiquidityRatio:  liquidityRatio,
		FlashCrash:      in.FlashCrash,
		CooldownSeconds: cooldown.Seconds(),
		PositionOpen:    pos.Open,
		AvgEntry:        pos.AvgEntry,
		Quantity:        pos.Quantity,
	}); err != nil {
		log.Printf("[ERROR] record tick: %v", err)
	}

	if executed {
		return postTradePause
	}
	return cooldown
}

func (s *Scheduler) executeBuy(ctx context.Context, pos model.Position, decision trader.Decision, price float64) (model.Position, bool) {
	fill, err := s.exec.MarketBuy(ctx, decision.QuoteAmount, price)
	if err != nil {
		log.Printf("[ERROR] buy stage %d failed: %v", decision.Stage, err)
		s.recordEvent("ERROR", "buy_failed", err.Error())
		return pos, false
	}
	if fill.Quantity <= 0 {
		log.Printf("[WARN] buy stage %d produced zero quantity, skipping", decision.Stage)
		return pos, false
	}

	pos = trader.ApplyBuy(pos, fill)
	log.Printf("[INFO] BUY stage=%d reason=%s qty=%.6f price=%.6f avg=%.6f",
		decision.Stage, decision.Reason, fill.Quantity, fill.Price, pos.AvgEntry)

	s.mu.Lock()
	s.session.RecordBuy()
	s.daily.RecordBuy()
	s.mu.Unlock()

	metrics.OrdersTotal.WithLabelValues(s.mode(), "buy").Inc()
	s.notifyAsync(notifier.FormatTrade(decision, fill, pos, 0))
	if err := s.recorder.RecordTrade(&recorder.TradeRecord{
		Side:        string(model.SideBuy),
		Stage:       decision.Stage,
		Reason:      decision.Reason,
		Price:       fill.Price,
		Quantity:    fill.Quantity,
		QuoteAmount: fill.Notional(),
		AvgEntry:    pos.AvgEntry,
		DryRun:      fill.DryRun,
	}); err != nil {
		log.Printf("[ERROR] record trade: %v", err)
	}
	return pos, true
}

func (s *Scheduler) executeSell(ctx context.Context, pos model.Position, decision trader.Decision, price float64) (model.Position, bool) {
	fill, err := s.exec.MarketSell(ctx, decision.BaseAmount, price)
	if err != nil {
		log.Printf("[ERROR] sell (%s) failed: %v", decision.Reason, err)
		s.recordEvent("ERROR", "sell_failed", err.Error())
		return pos, false
	}

	pnl := s.realizedPnL(pos, fill)
	log.Printf("[INFO] SELL reason=%s qty=%.6f price=%.6f pnl=%+.4f",
		decision.Reason, fill.Quantity, fill.Price, pnl)

	closed := trader.ApplySell(pos, fill)

	s.mu.Lock()
	s.session.RecordSell(pnl)
	s.daily.RecordSell(pnl)
	realized := s.session.RealizedPnL
	s.mu.Unlock()

	metrics.OrdersTotal.WithLabelValues(s.mode(), "sell").Inc()
	metrics.ExitReasonsTotal.WithLabelValues(decision.Reason).Inc()
	metrics.RealizedPnL.Set(realized)

	s.notifyAsync(notifier.FormatTrade(decision, fill, closed, pnl))
	if err := s.recorder.RecordTrade(&recorder.TradeRecord{
		Side:        string(model.SideSell),
		Stage:       decision.Stage,
		Reason:      decision.Reason,
		Price:       fill.Price,
		Quantity:    fill.Quantity,
		QuoteAmount: fill.Notional(),
		AvgEntry:    pos.AvgEntry,
		RealizedPnL: pnl,
		DryRun:      fill.DryRun,
	}); err != nil {
		log.Printf("[ERROR] record trade: %v", err)
	}
	return closed, true
}

// realizedPnL nets the round trip: price move on the sold quantity minus
// the taker fee on both legs.
func (s *Scheduler) realizedPnL(pos model.Position, fill model.Fill) float64 {
	gross := (fill.Price - pos.AvgEntry) * fill.Quantity
	fees := s.cfg.Trading.FeePerSide * (pos.AvgEntry*fill.Quantity + fill.Price*fill.Quantity)
	return gross - fees
}

func (s *Scheduler) dailySummary() {
	s.mu.Lock()
	snapshot := *s.daily
	s.daily.Reset()
	s.mu.Unlock()

	log.Printf("[INFO] daily summary: buys=%d sells=%d pnl=%+.4f", snapshot.Buys, snapshot.Sells, snapshot.RealizedPnL)
	s.trySend(notifier.FormatSummary("Daily summary", snapshot))
}

// HandleCommand processes a Telegram command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch strings.TrimSpace(command) {
	case "/status", "/position":
		s.mu.Lock()
		pos, price := s.pos, s.lastPrice
		s.mu.Unlock()
		return notifier.FormatStatus(pos, price, s.exec.DryRun())
	case "/summary":
		return notifier.FormatSummary("Session summary", s.sessionSnapshot())
	case "/config":
		return notifier.FormatConfig(s.cfg.Exchange.Symbol, s.engine.Parameters())
	default:
		return "Commands:\n• /status — position and last price\n• /summary — session stats\n• /config — active thresholds"
	}
}

func (s *Scheduler) sessionSnapshot() trader.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.session
}

func (s *Scheduler) mode() string {
	if s.exec.DryRun() {
		return "paper"
	}
	return "live"
}

func (s *Scheduler) recordEvent(level, kind, note string) {
	if err := s.recorder.RecordEvent(&recorder.EventRecord{Level: level, Kind: kind, Note: note}); err != nil {
		log.Printf("[ERROR] record event: %v", err)
	}
}

// trySend delivers a message synchronously. Only cron jobs and the
// startup/shutdown paths may call it; the tick path uses notifyAsync.
func (s *Scheduler) trySend(text string) {
	if err := s.notifier.SendWithRetry(s.ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

// notifyAsync delivers a message without blocking the tick. A Telegram
// outage must never slow down order handling.
func (s *Scheduler) notifyAsync(text string) {
	go s.trySend(text)
}
