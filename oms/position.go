package oms

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nyx-systems/fixcore/model"
)

// PositionTracker holds the net signed position per symbol. Spec §5: "Position
// trackers are read by risk and written only by OMS FSM — a single-writer,
// multi-reader pattern guarded by the per-symbol mutex." Store is the only
// writer (ApplyExecutionReport applies the fill delta applyFill computes, on
// a fill-bearing ExecutionReport); package risk
// only ever reads through Position.
type PositionTracker struct {
	mu       sync.RWMutex
	bySymbol map[string]decimal.Decimal
}

func newPositionTracker() *PositionTracker {
	return &PositionTracker{bySymbol: make(map[string]decimal.Decimal)}
}

// Position returns the current net signed position for symbol (positive
// long, negative short).
func (t *PositionTracker) Position(symbol string) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.bySymbol[symbol]
}

// apply adds a signed fill quantity to symbol's running position.
func (t *PositionTracker) apply(symbol string, side model.Side, qty decimal.Decimal) {
	if qty.IsZero() {
		return
	}
	delta := qty
	if side == model.SideSell {
		delta = qty.Neg()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bySymbol[symbol] = t.bySymbol[symbol].Add(delta)
}
