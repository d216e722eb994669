package exchange

import "strings"

// SplitSymbol separates a "BASE/QUOTE" pair into its assets. Symbols
// without a slash are assumed to end in a known quote currency.
func SplitSymbol(symbol string) (base, quote string) {
	if i := strings.IndexByte(symbol, '/'); i >= 0 {
		return symbol[:i], symbol[i+1:]
	}
	for _, q := range []string{"USDT", "USDC", "BTC", "ETH"} {
		if b, ok := strings.CutSuffix(symbol, q); ok && b != "" {
			return b, q
		}
	}
	return symbol, ""
}

// InstrumentID converts a "BASE/QUOTE" pair to the exchange's concatenated
// instrument form, e.g. "SOL/USDT" -> "SOLUSDT".
func InstrumentID(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}
