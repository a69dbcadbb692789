// Package model holds the canonical data types shared across the engine:
// CanonicalTick, CanonicalBook, MicroMetrics, OrderRecord and SessionState
// (spec §3); resend slots live privately in package resend. These merge what spec's DESIGN NOTES item (d) calls
// out as two parallel tick/book hierarchies in the original source
// (Chimera::UnifiedTick for the live path, a second shape for the "active"
// path) into one model used by every component downstream of the normalizer.
package model

import "github.com/shopspring/decimal"

// SymbolLen is the fixed width of a canonical symbol identifier.
const SymbolLen = 16

// Symbol is a fixed-size symbol identifier, avoiding a heap string per tick
// on the hot path. String/SymbolFromString convert at the boundary.
type Symbol [SymbolLen]byte

// SymbolFromString truncates or zero-pads s to SymbolLen bytes.
func SymbolFromString(s string) Symbol {
	var sym Symbol
	copy(sym[:], s)
	return sym
}

// String trims trailing zero bytes.
func (s Symbol) String() string {
	n := len(s)
	for n > 0 && s[n-1] == 0 {
		n--
	}
	return string(s[:n])
}

// CanonicalTick is the unified top-of-book + trade-flow snapshot emitted by
// the normalizer (C7) and consumed by the per-symbol pipeline (C8). Value
// typed and immutable once emitted: copied across queues, never mutated in
// place.
type CanonicalTick struct {
	Symbol Symbol

	Bid decimal.Decimal
	Ask decimal.Decimal

	BidSize decimal.Decimal
	AskSize decimal.Decimal

	// BuyVolume/SellVolume are rolling volume since the prior tick for this
	// symbol (trade-stream derived; zero for book-ticker-only updates).
	BuyVolume  decimal.Decimal
	SellVolume decimal.Decimal

	// TsExchangeMillis is the venue-supplied timestamp, 0 if absent.
	TsExchangeMillis int64
	// TsLocalMicros is the wall-clock Unix time in microseconds, read by the
	// normalizer (time.Now().UnixMicro()) at normalization; it is not a
	// monotonic clock reading.
	TsLocalMicros int64
}

// Spread returns Ask-Bid, the derived field spec §3 names.
func (t CanonicalTick) Spread() decimal.Decimal {
	return t.Ask.Sub(t.Bid)
}

// Mid returns the midpoint of bid/ask.
func (t CanonicalTick) Mid() decimal.Decimal {
	return t.Bid.Add(t.Ask).Div(decimal.NewFromInt(2))
}

// MidFloat64 is a float64 convenience accessor for the pipeline's rolling
// statistics, which operate in float arithmetic per spec §4.7 (EMAs,
// variance, momentum) — decimal is reserved for money-bearing fields
// (risk/oms), not microstructure scalars.
func (t CanonicalTick) MidFloat64() float64 {
	f, _ := t.Mid().Float64()
	return f
}
