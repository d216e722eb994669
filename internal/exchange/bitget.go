package exchange

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"SpotSentinel/internal/model"
)

// BitgetClient talks to the Bitget spot v2 REST API.
type BitgetClient struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	Passphrase string
	Client     *http.Client
}

// NewBitgetClient creates a client with optional proxy support. Credentials
// may be empty when only public market-data endpoints are used (dry-run).
func NewBitgetClient(baseURL, apiKey, apiSecret, passphrase, proxyURL string) *BitgetClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &BitgetClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		APISecret:  apiSecret,
		Passphrase: passphrase,
		Client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}
}

func (c *BitgetClient) Name() string { return "bitget" }

// apiResponse is the common Bitget envelope.
type apiResponse struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (c *BitgetClient) FetchTicker(ctx context.Context, symbol string) (model.Tick, error) {
	path := "/api/v2/spot/market/tickers?symbol=" + url.QueryEscape(InstrumentID(symbol))
	var data []struct {
		LastPr string `json:"lastPr"`
		TS     string `json:"ts"`
	}
	if err := c.get(ctx, path, &data); err != nil {
		return model.Tick{}, fmt.Errorf("fetch ticker: %w", err)
	}
	if len(data) == 0 {
		return model.Tick{}, fmt.Errorf("fetch ticker: empty response for %s", symbol)
	}
	price, err := strconv.ParseFloat(data[0].LastPr, 64)
	if err != nil {
		return model.Tick{}, fmt.Errorf("fetch ticker: parse price %q: %w", data[0].LastPr, err)
	}
	return model.Tick{Price: price, Time: parseMillis(data[0].TS)}, nil
}

func (c *BitgetClient) FetchOrderBook(ctx context.Context, symbol string, depth int) (model.OrderBook, error) {
	path := fmt.Sprintf("/api/v2/spot/market/orderbook?symbol=%s&limit=%d",
		url.QueryEscape(InstrumentID(symbol)), depth)
	var data struct {
		Bids [][]string `json:"bids"`
		Asks [][]string `json:"asks"`
		TS   string     `json:"ts"`
	}
	if err := c.get(ctx, path, &data); err != nil {
		return model.OrderBook{}, fmt.Errorf("fetch order book: %w", err)
	}
	book := model.OrderBook{
		Bids:      parseLevels(data.Bids),
		Asks:      parseLevels(data.Asks),
		FetchedAt: parseMillis(data.TS),
	}
	return book, nil
}

func (c *BitgetClient) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]model.OHLCV, error) {
	path := fmt.Sprintf("/api/v2/spot/market/candles?symbol=%s&granularity=%s&limit=%d",
		url.QueryEscape(InstrumentID(symbol)), url.QueryEscape(timeframe), limit)
	var data [][]string
	if err := c.get(ctx, path, &data); err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	bars := make([]model.OHLCV, 0, len(data))
	for _, row := range data {
		if len(row) < 6 {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   parseMillis(row[0]),
			Open:   parseFloat(row[1]),
			High:   parseFloat(row[2]),
			Low:    parseFloat(row[3]),
			Close:  parseFloat(row[4]),
			Volume: parseFloat(row[5]),
		})
	}
	return bars, nil
}

func (c *BitgetClient) FetchBalance(ctx context.Context, symbol string) (model.Balance, error) {
	var data []struct {
		Coin      string `json:"coin"`
		Available string `json:"available"`
	}
	if err := c.signedGet(ctx, "/api/v2/spot/account/assets", &data); err != nil {
		return model.Balance{}, fmt.Errorf("fetch balance: %w", err)
	}
	base, quote := SplitSymbol(symbol)
	var bal model.Balance
	for _, a := range data {
		switch a.Coin {
		case base:
			bal.Base = parseFloat(a.Available)
		case quote:
			bal.Quote = parseFloat(a.Available)
		}
	}
	return bal, nil
}

// placeOrderRequest is the signed order placement payload. For market buys
// size is the quote amount to spend; for market sells it is the base
// quantity to liquidate.
type placeOrderRequest struct {
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	OrderType string `json:"orderType"`
	Force     string `json:"force"`
	Size      string `json:"size"`
	ClientOid string `json:"clientOid"`
}

func (c *BitgetClient) CreateMarketBuy(ctx context.Context, symbol string, quoteAmount float64) (model.Fill, error) {
	return c.placeMarketOrder(ctx, symbol, model.SideBuy, quoteAmount)
}

func (c *BitgetClient) CreateMarketSell(ctx context.Context, symbol string, baseAmount float64) (model.Fill, error) {
	return c.placeMarketOrder(ctx, symbol, model.SideSell, baseAmount)
}

func (c *BitgetClient) placeMarketOrder(ctx context.Context, symbol string, side model.OrderSide, size float64) (model.Fill, error) {
	req := placeOrderRequest{
		Symbol:    InstrumentID(symbol),
		Side:      string(side),
		OrderType: "market",
		Force:     "gtc",
		Size:      strconv.FormatFloat(size, 'f', -1, 64),
		ClientOid: uuid.NewString(),
	}
	var placed struct {
		OrderID string `json:"orderId"`
	}
	if err := c.signedPost(ctx, "/api/v2/spot/trade/place-order", req, &placed); err != nil {
		return model.Fill{}, fmt.Errorf("place %s order: %w", side, err)
	}

	fill := model.Fill{OrderID: placed.OrderID, Side: side, Time: time.Now().UTC()}
	price, qty, err := c.fetchFill(ctx, placed.OrderID)
	if err != nil {
		// The order went through; the caller falls back to the observed
		// price when the fill lookup fails.
		return fill, nil
	}
	fill.Price = price
	fill.Quantity = qty
	return fill, nil
}

// fetchFill resolves the execution price of an order: average fill price
// first, then the first partial fill's price.
func (c *BitgetClient) fetchFill(ctx context.Context, orderID string) (price, qty float64, err error) {
	var orders []struct {
		PriceAvg   string `json:"priceAvg"`
		BaseVolume string `json:"baseVolume"`
	}
	if err := c.signedGet(ctx, "/api/v2/spot/trade/orderInfo?orderId="+url.QueryEscape(orderID), &orders); err != nil {
		return 0, 0, err
	}
	if len(orders) > 0 {
		price = parseFloat(orders[0].PriceAvg)
		qty = parseFloat(orders[0].BaseVolume)
		if price > 0 {
			return price, qty, nil
		}
	}

	var fills []struct {
		PriceAvg string `json:"priceAvg"`
		Size     string `json:"size"`
	}
	if err := c.signedGet(ctx, "/api/v2/spot/trade/fills?orderId="+url.QueryEscape(orderID), &fills); err != nil {
		return 0, 0, err
	}
	if len(fills) == 0 {
		return 0, 0, fmt.Errorf("no fills reported for order %s", orderID)
	}
	if qty == 0 {
		qty = parseFloat(fills[0].Size)
	}
	return parseFloat(fills[0].PriceAvg), qty, nil
}

func (c *BitgetClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *BitgetClient) signedGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	c.sign(req, http.MethodGet, path, nil)
	return c.do(req, out)
}

func (c *BitgetClient) signedPost(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.sign(req, http.MethodPost, path, body)
	return c.do(req, out)
}

// sign applies the Bitget v2 authentication headers: the signature is the
// base64 HMAC-SHA256 of timestamp+method+path+body under the API secret.
func (c *BitgetClient) sign(req *http.Request, method, path string, body []byte) {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	mac := hmac.New(sha256.New, []byte(c.APISecret))
	mac.Write([]byte(ts))
	mac.Write([]byte(method))
	mac.Write([]byte(path))
	mac.Write(body)
	req.Header.Set("ACCESS-KEY", c.APIKey)
	req.Header.Set("ACCESS-SIGN", base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	req.Header.Set("ACCESS-TIMESTAMP", ts)
	req.Header.Set("ACCESS-PASSPHRASE", c.Passphrase)
}

func (c *BitgetClient) do(req *http.Request, out any) error {
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.Code != "00000" {
		return fmt.Errorf("API error %s: %s", envelope.Code, envelope.Msg)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func parseLevels(rows [][]string) []model.PriceLevel {
	levels := make([]model.PriceLevel, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		levels = append(levels, model.PriceLevel{
			Price: parseFloat(row[0]),
			Size:  parseFloat(row[1]),
		})
	}
	return levels
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.UnixMilli(ms).UTC()
}
