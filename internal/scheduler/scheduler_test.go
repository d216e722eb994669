package scheduler

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SpotSentinel/internal/config"
	"SpotSentinel/internal/exchange"
	"SpotSentinel/internal/execution"
	"SpotSentinel/internal/market"
	"SpotSentinel/internal/notifier"
	"SpotSentinel/internal/recorder"
	"SpotSentinel/internal/trader"
)

func testScheduler(t *testing.T, client *exchange.MockClient) (*Scheduler, *execution.PaperAccount) {
	t.Helper()
	cfg, err := config.Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Trading.DryRun = true
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	mkt := market.NewGate(client, cfg.Exchange.Symbol, 1, time.Millisecond)
	paper := execution.NewPaperAccount(cfg.Trading.CapitalPerCycle)
	exec := execution.NewGate(client, cfg.Exchange.Symbol, 1, time.Millisecond,
		cfg.Trading.QuantityStep, true, paper)
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
	tn := notifier.NewTelegramNotifier("", "", "") // disabled
	return NewScheduler(ctx, cfg, mkt, exec, engine, tn, recorder.NewNoopRecorder()), paper
}

func TestTick_FullDryRunCycle(t *testing.T) {
	client := &exchange.MockClient{Price: 100}
	s, paper := testScheduler(t, client)
	ctx := context.Background()

	// First tick establishes the peak, no action.
	s.tick(ctx)
	if s.pos.Open {
		t.Fatal("no position expected on the first tick")
	}

	// 0.7% dip: stage-0 entry through the paper account.
	client.Price = 99.3
	s.tick(ctx)
	if !s.pos.Open || s.pos.Stage != 1 {
		t.Fatalf("expected open position after dip, got %+v", s.pos)
	}
	if math.Abs(s.pos.AvgEntry-99.3) > 1e-9 {
		t.Errorf("expected entry at 99.3, got %v", s.pos.AvgEntry)
	}
	if paper.Base <= 0 {
		t.Error("paper base balance should hold the bought quantity")
	}
	if s.session.Buys != 1 {
		t.Errorf("expected 1 session buy, got %d", s.session.Buys)
	}

	// Run up, then retrace past the trailing threshold: exit with profit.
	client.Price = 100.3
	s.tick(ctx)
	if !s.pos.Open {
		t.Fatal("retrace below threshold must not exit")
	}
	client.Price = 100.1 // 0.2% off the 100.3 peak, +0.8% over entry
	s.tick(ctx)
	if s.pos.Open {
		t.Fatalf("expected trailing-stop exit, got %+v", s.pos)
	}
	if s.session.Sells != 1 || s.session.RealizedPnL <= 0 {
		t.Errorf("expected one profitable sell, got %+v", *s.session)
	}
	// Truncation on the sell leg may leave at most one quantity step behind.
	if paper.Base > s.cfg.Trading.QuantityStep {
		t.Errorf("expected full liquidation, base=%v", paper.Base)
	}
}

func TestTick_TickerFailureSkipsTick(t *testing.T) {
	client := &exchange.MockClient{Price: 100}
	s, _ := testScheduler(t, client)
	ctx := context.Background()
	s.tick(ctx)

	client.TickerErr = contextlessErr("exchange down")
	client.Price = 90 // would otherwise trigger a buy
	pause := s.tick(ctx)
	if s.pos.Open {
		t.Fatal("no state change allowed on a skipped tick")
	}
	if pause != s.cfg.BaseIntervalDuration() {
		t.Errorf("skipped tick should sleep the base interval, got %v", pause)
	}
}

func TestHandleCommand(t *testing.T) {
	client := &exchange.MockClient{Price: 100}
	s, _ := testScheduler(t, client)
	ctx := context.Background()
	s.tick(ctx)

	if reply := s.HandleCommand("/status"); reply == "" {
		t.Error("expected /status reply")
	}
	if reply := s.HandleCommand("/summary"); reply == "" {
		t.Error("expected /summary reply")
	}
	if reply := s.HandleCommand("/config"); !strings.Contains(reply, "SOL/USDT") {
		t.Errorf("expected /config reply with the traded symbol, got %q", reply)
	}
	if reply := s.HandleCommand("bogus"); !strings.Contains(reply, "/config") {
		t.Errorf("help text must list all commands, got %q", reply)
	}
}

func TestRun_ReturnsOnCancel(t *testing.T) {
	client := &exchange.MockClient{Price: 100}
	s, _ := testScheduler(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestTradeNotification_DoesNotBlockTick(t *testing.T) {
	release := make(chan struct{})
	received := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- struct{}{}
		<-release
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()
	defer close(release)

	client := &exchange.MockClient{Price: 100}
	s, _ := testScheduler(t, client)
	s.notifier = notifier.NewTelegramNotifier("token", "chat", "")
	s.notifier.APIBase = srv.URL

	ctx := context.Background()
	s.tick(ctx)
	client.Price = 99.3 // triggers a buy and its notification

	done := make(chan struct{})
	go func() {
		s.tick(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("tick blocked on notification delivery")
	}
	select {
	case <-received:
	case <-time.After(3 * time.Second):
		t.Fatal("trade notification was never dispatched")
	}
}

type contextlessErr string

func (e contextlessErr) Error() string { return string(e) }
