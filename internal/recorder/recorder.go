package recorder

// TickRecord captures one price observation and the indicators computed
// from it.
type TickRecord struct {
	Price           float64
	EMA             float64
	ATR             float64
	LiquidityRatio  float64
	FlashCrash      bool
	CooldownSeconds float64
	PositionOpen    bool
	AvgEntry        float64
	Quantity        float64
}

// TradeRecord captures one executed order.
type TradeRecord struct {
	Side        string
	Stage       int
	Reason      string
	Price       float64
	Quantity    float64
	QuoteAmount float64
	AvgEntry    float64
	RealizedPnL float64
	DryRun      bool
}

// EventRecord captures a notable non-trade event (startup, tick errors,
// guard activations).
type EventRecord struct {
	Level string // "INFO", "WARN", "ERROR"
	Kind  string
	Note  string
}

// Recorder is the append-only trade/event log. Write failures are logged
// and swallowed by callers; recording never affects trading decisions.
type Recorder interface {
	RecordTick(rec *TickRecord) error
	RecordTrade(rec *TradeRecord) error
	RecordEvent(rec *EventRecord) error
	Close() error
}
