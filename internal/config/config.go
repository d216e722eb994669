package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Exchange struct {
		BaseURL    string `yaml:"base_url"`
		APIKey     string `yaml:"api_key"`
		APISecret  string `yaml:"api_secret"`
		Passphrase string `yaml:"api_passphrase"`
		Symbol     string `yaml:"symbol"`
	} `yaml:"exchange"`
	Trading struct {
		DryRun          bool      `yaml:"dry_run"`
		CapitalPerCycle float64   `yaml:"capital_per_cycle"`
		DCALevels       []float64 `yaml:"dca_levels"`
		DCASplits       []float64 `yaml:"dca_splits"`
		DipConfirmation float64   `yaml:"dip_confirmation"`
		TSLProfitMin    float64   `yaml:"tsl_profit_min"`
		TSLBack         float64   `yaml:"tsl_back"`
		StopLoss        float64   `yaml:"stop_loss"`
		FeePerSide      float64   `yaml:"fee_per_side"`
		MinNotional     float64   `yaml:"min_notional"`
		QuoteFraction   float64   `yaml:"quote_fraction"`
		QuantityStep    float64   `yaml:"quantity_step"`
	} `yaml:"trading"`
	Indicators struct {
		EMAPeriod           int     `yaml:"ema_period"`
		ATRPeriod           int     `yaml:"atr_period"`
		OHLCVTimeframe      string  `yaml:"ohlcv_timeframe"`
		OHLCVLimit          int     `yaml:"ohlcv_limit"`
		FlashWindow         int     `yaml:"flash_window"`
		FlashCrashThreshold float64 `yaml:"flash_crash_threshold"`
		LiquidityDepth      int     `yaml:"liquidity_depth"`
		LiquiditySpikeRatio float64 `yaml:"liquidity_spike_ratio"`
	} `yaml:"indicators"`
	Loop struct {
		BaseInterval  float64 `yaml:"base_interval"`  // seconds
		MinCooldown   float64 `yaml:"min_cooldown"`   // seconds
		MaxCooldown   float64 `yaml:"max_cooldown"`   // seconds
		RetryAttempts int     `yaml:"retry_attempts"`
		RetryDelay    float64 `yaml:"retry_delay"` // seconds
		SummaryCron   string  `yaml:"summary_cron"`
	} `yaml:"loop"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. Credentials are never required in the YAML file.
func Load(path string) (*Config, error) {
	// Optional .env for credentials; missing file is fine.
	_ = godotenv.Load()

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

	// Environment variable overrides
	if v := os.Getenv("EXCHANGE_BASE_URL"); v != "" {
		cfg.Exchange.BaseURL = v
	}
	if v := os.Getenv("EXCHANGE_API_KEY"); v != "" {
		cfg.Exchange.APIKey = v
	}
	if v := os.Getenv("EXCHANGE_API_SECRET"); v != "" {
		cfg.Exchange.APISecret = v
	}
	if v := os.Getenv("EXCHANGE_API_PASSPHRASE"); v != "" {
		cfg.Exchange.Passphrase = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.Exchange.Symbol = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("DRY_RUN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Trading.DryRun = b
		}
	}
	if v := os.Getenv("CAPITAL_PER_CYCLE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trading.CapitalPerCycle = f
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Exchange.BaseURL == "" {
		c.Exchange.BaseURL = "https://api.bitget.com"
	}
	if c.Exchange.Symbol == "" {
		c.Exchange.Symbol = "SOL/USDT"
	}
	if c.Trading.CapitalPerCycle == 0 {
		c.Trading.CapitalPerCycle = 200
	}
	if len(c.Trading.DCALevels) == 0 {
		c.Trading.DCALevels = []float64{0.005, 0.015, 0.03}
	}
	if len(c.Trading.DCASplits) == 0 {
		c.Trading.DCASplits = []float64{0.5, 0.3, 0.2}
	}
	if c.Trading.DipConfirmation == 0 {
		c.Trading.DipConfirmation = 0.001
	}
	if c.Trading.TSLProfitMin == 0 {
		c.Trading.TSLProfitMin = 0.0035
	}
	if c.Trading.TSLBack == 0 {
		c.Trading.TSLBack = 0.0015
	}
	if c.Trading.StopLoss == 0 {
		c.Trading.StopLoss = 0.0075
	}
	if c.Trading.FeePerSide == 0 {
		c.Trading.FeePerSide = 0.001
	}
	if c.Trading.MinNotional == 0 {
		c.Trading.MinNotional = 5.0
	}
	if c.Trading.QuoteFraction == 0 {
		c.Trading.QuoteFraction = 0.98
	}
	if c.Trading.QuantityStep == 0 {
		c.Trading.QuantityStep = 0.0001
	}
	if c.Indicators.EMAPeriod == 0 {
		c.Indicators.EMAPeriod = 20
	}
	if c.Indicators.ATRPeriod == 0 {
		c.Indicators.ATRPeriod = 14
	}
	if c.Indicators.OHLCVTimeframe == "" {
		c.Indicators.OHLCVTimeframe = "1min"
	}
	if c.Indicators.OHLCVLimit == 0 {
		c.Indicators.OHLCVLimit = 50
	}
	if c.Indicators.FlashWindow == 0 {
		c.Indicators.FlashWindow = 12
	}
	if c.Indicators.FlashCrashThreshold == 0 {
		c.Indicators.FlashCrashThreshold = 0.02
	}
	if c.Indicators.LiquidityDepth == 0 {
		c.Indicators.LiquidityDepth = 10
	}
	if c.Indicators.LiquiditySpikeRatio == 0 {
		c.Indicators.LiquiditySpikeRatio = 3.0
	}
	if c.Loop.BaseInterval == 0 {
		c.Loop.BaseInterval = 2.0
	}
	if c.Loop.MinCooldown == 0 {
		c.Loop.MinCooldown = 1.0
	}
	if c.Loop.MaxCooldown == 0 {
		c.Loop.MaxCooldown = 15.0
	}
	if c.Loop.RetryAttempts == 0 {
		c.Loop.RetryAttempts = 3
	}
	if c.Loop.RetryDelay == 0 {
		c.Loop.RetryDelay = 1.0
	}
	if c.Loop.SummaryCron == "" {
		c.Loop.SummaryCron = "0 0 0 * * *"
	}
	if c.Metrics.ListenAddr == "" {
		c.Metrics.ListenAddr = ":9090"
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Exchange.Symbol == "" {
		return fmt.Errorf("exchange.symbol is required")
	}
	if !c.Trading.DryRun {
		if c.Exchange.APIKey == "" || c.Exchange.APISecret == "" {
			return fmt.Errorf("exchange credentials are required when dry_run is false")
		}
	}
	if c.Trading.CapitalPerCycle <= 0 {
		return fmt.Errorf("trading.capital_per_cycle must be positive")
	}
	if len(c.Trading.DCALevels) == 0 {
		return fmt.Errorf("trading.dca_levels must not be empty")
	}
	if len(c.Trading.DCALevels) != len(c.Trading.DCASplits) {
		return fmt.Errorf("trading.dca_levels and trading.dca_splits must have the same length")
	}
	var sum float64
	for i, s := range c.Trading.DCASplits {
		if s <= 0 {
			return fmt.Errorf("trading.dca_splits[%d] must be positive", i)
		}
		sum += s
	}
	if sum > 1.0+1e-9 {
		return fmt.Errorf("trading.dca_splits must sum to at most 1.0, got %.4f", sum)
	}
	for i := 1; i < len(c.Trading.DCALevels); i++ {
		if c.Trading.DCALevels[i] <= c.Trading.DCALevels[i-1] {
			return fmt.Errorf("trading.dca_levels must be strictly increasing")
		}
	}
	if c.Trading.TSLProfitMin <= 0 || c.Trading.TSLBack <= 0 || c.Trading.StopLoss <= 0 {
		return fmt.Errorf("trading thresholds must be positive")
	}
	if c.Loop.MinCooldown > c.Loop.MaxCooldown {
		return fmt.Errorf("loop.min_cooldown must not exceed loop.max_cooldown")
	}
	return nil
}

// BaseIntervalDuration returns the static loop interval as a duration.
func (c *Config) BaseIntervalDuration() time.Duration {
	return time.Duration(c.Loop.BaseInterval * float64(time.Second))
}

// RetryDelayDuration returns the fixed delay between remote-call retries.
func (c *Config) RetryDelayDuration() time.Duration {
	return time.Duration(c.Loop.RetryDelay * float64(time.Second))
}
