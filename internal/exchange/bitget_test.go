package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchTicker_ParsesPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/spot/market/tickers" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "SOLUSDT" {
			t.Errorf("expected instrument SOLUSDT, got %s", got)
		}
		w.Write([]byte(`{"code":"00000","msg":"success","data":[{"symbol":"SOLUSDT","lastPr":"142.35","ts":"1724000000000"}]}`))
	}))
	defer srv.Close()

	c := NewBitgetClient(srv.URL, "", "", "", "")
	tick, err := c.FetchTicker(context.Background(), "SOL/USDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick.Price != 142.35 {
		t.Errorf("expected price 142.35, got %v", tick.Price)
	}
}

func TestFetchOrderBook_ParsesLevels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"00000","msg":"success","data":{"bids":[["142.30","10.5"],["142.20","3"]],"asks":[["142.40","7"]],"ts":"1724000000000"}}`))
	}))
	defer srv.Close()

	c := NewBitgetClient(srv.URL, "", "", "", "")
	book, err := c.FetchOrderBook(context.Background(), "SOL/USDT", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(book.Bids) != 2 || len(book.Asks) != 1 {
		t.Fatalf("expected 2 bids / 1 ask, got %d / %d", len(book.Bids), len(book.Asks))
	}
	if book.Bids[0].Price != 142.30 || book.Bids[0].Size != 10.5 {
		t.Errorf("bad top bid: %+v", book.Bids[0])
	}
}

func TestFetchOHLCV_ParsesBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"00000","msg":"success","data":[
			["1724000000000","140.0","141.5","139.5","141.0","1200.5","168000","168000"],
			["1724000060000","141.0","142.0","140.8","141.8","950.2","134000","134000"]
		]}`))
	}))
	defer srv.Close()

	c := NewBitgetClient(srv.URL, "", "", "", "")
	bars, err := c.FetchOHLCV(context.Background(), "SOL/USDT", "1min", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Open != 140.0 || bars[0].High != 141.5 || bars[0].Low != 139.5 || bars[0].Close != 141.0 {
		t.Errorf("bad first bar: %+v", bars[0])
	}
}

func TestAPIErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"40001","msg":"invalid symbol","data":null}`))
	}))
	defer srv.Close()

	c := NewBitgetClient(srv.URL, "", "", "", "")
	if _, err := c.FetchTicker(context.Background(), "NOPE/USDT"); err == nil {
		t.Fatal("expected API error")
	}
}

func TestSignedRequestHeaders(t *testing.T) {
	var gotKey, gotSign, gotTS, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("ACCESS-KEY")
		gotSign = r.Header.Get("ACCESS-SIGN")
		gotTS = r.Header.Get("ACCESS-TIMESTAMP")
		gotPass = r.Header.Get("ACCESS-PASSPHRASE")
		w.Write([]byte(`{"code":"00000","msg":"success","data":[{"coin":"USDT","available":"250.5"},{"coin":"SOL","available":"1.25"}]}`))
	}))
	defer srv.Close()

	c := NewBitgetClient(srv.URL, "key", "secret", "pass", "")
	bal, err := c.FetchBalance(context.Background(), "SOL/USDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "key" || gotPass != "pass" {
		t.Errorf("credential headers not set: key=%q pass=%q", gotKey, gotPass)
	}
	if gotSign == "" || gotTS == "" {
		t.Error("signature headers missing")
	}
	if bal.Quote != 250.5 || bal.Base != 1.25 {
		t.Errorf("bad balances: %+v", bal)
	}
}

func TestSplitSymbol(t *testing.T) {
	tests := []struct {
		in, base, quote string
	}{
		{"SOL/USDT", "SOL", "USDT"},
		{"SOLUSDT", "SOL", "USDT"},
		{"ETHBTC", "ETH", "BTC"},
		{"WEIRD", "WEIRD", ""},
	}
	for _, tt := range tests {
		base, quote := SplitSymbol(tt.in)
		if base != tt.base || quote != tt.quote {
			t.Errorf("SplitSymbol(%q) = (%q, %q), want (%q, %q)", tt.in, base, quote, tt.base, tt.quote)
		}
	}
}

func TestInstrumentID(t *testing.T) {
	if got := InstrumentID("SOL/USDT"); got != "SOLUSDT" {
		t.Errorf("expected SOLUSDT, got %s", got)
	}
}
