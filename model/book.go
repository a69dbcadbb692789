package model

import "github.com/shopspring/decimal"

// BookDepth is the fixed N=10 price levels per side spec §3 mandates.
const BookDepth = 10

// Level is a single price/size pair. Size == 0 means "level absent" (spec
// invariant: a level not present in a snapshot is zeroed, never removed from
// the array).
type Level struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// CanonicalBook is the top-N order book maintained per symbol by the
// normalizer (C7). Bids are ordered descending by price, asks ascending.
// Zero value is a valid, empty book.
type CanonicalBook struct {
	Symbol Symbol
	Bids   [BookDepth]Level
	Asks   [BookDepth]Level

	TsExchangeMillis int64
	TsLocalMicros    int64
}

// Crossed reports spec invariant I4's negation: true when both best levels
// are populated and bid[0] >= ask[0], a fault signal rather than a legal
// market state.
func (b *CanonicalBook) Crossed() bool {
	if b.Bids[0].Size.IsZero() || b.Asks[0].Size.IsZero() {
		return false
	}
	return !b.Bids[0].Price.LessThan(b.Asks[0].Price)
}

// Mid returns (bid[0]+ask[0])/2, or zero if either side is empty.
func (b *CanonicalBook) Mid() decimal.Decimal {
	if b.Bids[0].Size.IsZero() || b.Asks[0].Size.IsZero() {
		return decimal.Zero
	}
	return b.Bids[0].Price.Add(b.Asks[0].Price).Div(decimal.NewFromInt(2))
}

// Spread returns ask[0]-bid[0], or zero if either side is empty.
func (b *CanonicalBook) Spread() decimal.Decimal {
	if b.Bids[0].Size.IsZero() || b.Asks[0].Size.IsZero() {
		return decimal.Zero
	}
	return b.Asks[0].Price.Sub(b.Bids[0].Price)
}

func sumSizes(levels [BookDepth]Level, n int) decimal.Decimal {
	sum := decimal.Zero
	for i := 0; i < n && i < BookDepth; i++ {
		sum = sum.Add(levels[i].Size)
	}
	return sum
}

// Imbalance is (ΣB-ΣA)/(ΣB+ΣA) across all populated levels.
func (b *CanonicalBook) Imbalance() float64 {
	bSum := sumSizes(b.Bids, BookDepth)
	aSum := sumSizes(b.Asks, BookDepth)
	total := bSum.Add(aSum)
	if total.IsZero() {
		return 0
	}
	imb, _ := bSum.Sub(aSum).Div(total).Float64()
	return imb
}

// NearDepthImbalance is the same ratio restricted to the top 3 levels per
// side.
func (b *CanonicalBook) NearDepthImbalance() float64 {
	bSum := sumSizes(b.Bids, 3)
	aSum := sumSizes(b.Asks, 3)
	total := bSum.Add(aSum)
	if total.IsZero() {
		return 0
	}
	imb, _ := bSum.Sub(aSum).Div(total).Float64()
	return imb
}

// Pressure is the composite 0.6*depthImbalance + 0.4*topImbalance constant
// spec §3 names, ported literally from original_source's OrderBook.hpp
// (where "depth" meant near-top-3 and "imbalance" meant top-of-book only —
// see NearDepthImbalance and TopImbalance).
func (b *CanonicalBook) Pressure() float64 {
	return 0.6*b.NearDepthImbalance() + 0.4*b.TopImbalance()
}

// TopImbalance is the imbalance of best bid/ask sizes only.
func (b *CanonicalBook) TopImbalance() float64 {
	bidSz, _ := b.Bids[0].Size.Float64()
	askSz, _ := b.Asks[0].Size.Float64()
	total := bidSz + askSz
	if total == 0 {
		return 0
	}
	return (bidSz - askSz) / total
}

// BidDepth/AskDepth are the aggregate sums original_source's UnifiedTick
// exposed as flat b1..b5/a1..a5 fields; kept here as derived accessors over
// the canonical level arrays instead of duplicating scalars (spec DESIGN
// NOTES item (d): one canonical model, not two).
func (b *CanonicalBook) BidDepth() decimal.Decimal { return sumSizes(b.Bids, BookDepth) }
func (b *CanonicalBook) AskDepth() decimal.Decimal { return sumSizes(b.Asks, BookDepth) }

// Clear zeroes the book in place, used when rebuilding from a fresh
// snapshot.
func (b *CanonicalBook) Clear() {
	b.Bids = [BookDepth]Level{}
	b.Asks = [BookDepth]Level{}
}
