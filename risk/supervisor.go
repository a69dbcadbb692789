// Package risk implements the pre-trade gate chain (spec §4.8): an ordered,
// short-circuiting list of checks an intent must clear before the router
// (package oms) is allowed to turn it into a live order. The ordered
// check-list shape is grounded on the teacher pack's matching-engine risk
// checker (order-matching-engine/internal/risk/checker.go); the rate limit
// is grounded on the pack's token-bucket rate limiter (rate-limiter/gateway/
// ratelimiter/token_bucket.go), stripped of its Redis backing store since
// the supervisor here runs single-process.
package risk

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Reason names which of the eight gates rejected an intent. The zero value
// is never returned for a rejection; ReasonNone is only used on approval.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonKillSwitch       Reason = "kill_switch"
	ReasonCooldown         Reason = "cooldown"
	ReasonRateLimit        Reason = "rate_limit"
	ReasonPositionLimit    Reason = "position_limit"
	ReasonGlobalNotional   Reason = "global_notional"
	ReasonSymbolNotional   Reason = "symbol_notional"
	ReasonDrawdown         Reason = "drawdown"
	ReasonDailyLoss        Reason = "daily_loss"
	ReasonLowConfidence    Reason = "low_confidence"
)

// Config holds the eight gates' tunables, spec §4.8. All money/size fields
// are decimal.Decimal to match the rest of the codebase's price/qty
// handling; MaxDrawdownPct and MinConfidence are plain ratios.
type Config struct {
	// CooldownMs <= 0 disables the cooldown gate; config.Load supplies the
	// 250ms default for an omitted risk.cooldown_ms.
	CooldownMs            int64
	MaxOpsPerSec          float64
	MaxPositionSize       decimal.Decimal
	MaxGlobalNotional     decimal.Decimal
	MaxNotionalPerSymbol  decimal.Decimal
	MaxDrawdownPct        float64
	MaxDailyLoss          decimal.Decimal
	MinConfidence         float64
}

func (c Config) cooldown() time.Duration {
	if c.CooldownMs <= 0 {
		return 0
	}
	return time.Duration(c.CooldownMs) * time.Millisecond
}

// Intent is a candidate order the fusion layer (package pipeline) has
// produced and the router (package oms) wants approved before it becomes a
// live NewOrderSingle. CurrentPosition is read by the caller from the OMS's
// position tracker immediately before calling Approve: spec §5 assigns
// position tracker writes exclusively to the OMS FSM (on fills), with risk
// only a reader, so Supervisor itself holds no position state.
type Intent struct {
	Symbol          string
	Side            int8 // +1 buy, -1 sell
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	Confidence      float64 // signal magnitude, spec §4.8 gate 8
	CurrentPosition decimal.Decimal
}

func (i Intent) notional() decimal.Decimal {
	return i.Quantity.Mul(i.Price).Abs()
}

func (i Intent) signedQuantity() decimal.Decimal {
	if i.Side < 0 {
		return i.Quantity.Neg()
	}
	return i.Quantity
}

// Decision is the outcome of one Approve call.
type Decision struct {
	Approved bool
	Reason   Reason
}

// Supervisor evaluates intents against the eight ordered gates and tracks
// the state it exclusively owns: notional exposure and PnL. One Supervisor
// serves the whole process; it is safe for concurrent use.
type Supervisor struct {
	cfg Config

	mu             sync.Mutex
	killSwitch     bool
	lastApprovedTS time.Time
	haveApproved   bool
	bucket         tokenBucket

	symbolNotional map[string]decimal.Decimal
	globalNotional decimal.Decimal
	peakPnL        decimal.Decimal
	currentPnL     decimal.Decimal
	dailyPnL       decimal.Decimal
}

// New returns a Supervisor in the clear (not tripped) state.
func New(cfg Config) *Supervisor {
	return &Supervisor{
		cfg:            cfg,
		bucket:         newTokenBucket(cfg.MaxOpsPerSec),
		symbolNotional: make(map[string]decimal.Decimal),
	}
}

// Approve runs the eight gates in spec §4.8 order against intent, using now
// as the gate clock. The first failing gate short-circuits the rest.
func (s *Supervisor) Approve(intent Intent, now time.Time) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. Kill-switch.
	if s.killSwitch {
		return Decision{Reason: ReasonKillSwitch}
	}

	// 2. Cooldown.
	if s.haveApproved && now.Sub(s.lastApprovedTS) < s.cfg.cooldown() {
		return Decision{Reason: ReasonCooldown}
	}

	// 3. Token bucket.
	if !s.bucket.allow(now) {
		return Decision{Reason: ReasonRateLimit}
	}

	// 4. Projected position.
	projectedPos := intent.CurrentPosition.Add(intent.signedQuantity())
	if !s.cfg.MaxPositionSize.IsZero() && projectedPos.Abs().GreaterThan(s.cfg.MaxPositionSize) {
		return Decision{Reason: ReasonPositionLimit}
	}

	// 5. Projected notional exposure, global then per-symbol.
	projectedGlobal := s.globalNotional.Add(intent.notional())
	if !s.cfg.MaxGlobalNotional.IsZero() && projectedGlobal.GreaterThan(s.cfg.MaxGlobalNotional) {
		return Decision{Reason: ReasonGlobalNotional}
	}
	projectedSymbol := s.symbolNotional[intent.Symbol].Add(intent.notional())
	if !s.cfg.MaxNotionalPerSymbol.IsZero() && projectedSymbol.GreaterThan(s.cfg.MaxNotionalPerSymbol) {
		return Decision{Reason: ReasonSymbolNotional}
	}

	// 6. Drawdown.
	drawdown := s.peakPnL.Sub(s.currentPnL)
	threshold := s.peakPnL.Mul(decimal.NewFromFloat(s.cfg.MaxDrawdownPct))
	if drawdown.GreaterThanOrEqual(threshold) && s.peakPnL.IsPositive() {
		s.tripKillSwitch()
		return Decision{Reason: ReasonDrawdown}
	}

	// 7. Daily realized PnL.
	if !s.cfg.MaxDailyLoss.IsZero() && !s.dailyPnL.GreaterThan(s.cfg.MaxDailyLoss.Neg()) {
		s.tripKillSwitch()
		return Decision{Reason: ReasonDailyLoss}
	}

	// 8. Signal magnitude.
	if intent.Confidence < s.cfg.MinConfidence {
		return Decision{Reason: ReasonLowConfidence}
	}

	s.lastApprovedTS = now
	s.haveApproved = true
	s.symbolNotional[intent.Symbol] = projectedSymbol
	s.globalNotional = projectedGlobal
	return Decision{Approved: true}
}

// tripKillSwitch sets the sticky kill-switch. Must be called under s.mu.
func (s *Supervisor) tripKillSwitch() {
	s.killSwitch = true
}

// ClearKillSwitch is the external, operator-initiated clear spec §4.8
// requires: the kill-switch never clears itself.
func (s *Supervisor) ClearKillSwitch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.killSwitch = false
}

// KillSwitchTripped reports the current kill-switch state.
func (s *Supervisor) KillSwitchTripped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.killSwitch
}

// RecordExecution updates PnL bookkeeping after a fill: realizedPnLDelta is
// added to both the running and daily PnL, and the peak is advanced if
// exceeded, per spec §4.8 "Peak PnL is updated on each execution".
func (s *Supervisor) RecordExecution(realizedPnLDelta decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPnL = s.currentPnL.Add(realizedPnLDelta)
	s.dailyPnL = s.dailyPnL.Add(realizedPnLDelta)
	if s.currentPnL.GreaterThan(s.peakPnL) {
		s.peakPnL = s.currentPnL
	}
}

// ResetDaily clears the daily realized PnL counter, called at the start of
// a new trading day. It does not touch the kill-switch or peak/current PnL.
func (s *Supervisor) ResetDaily() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyPnL = decimal.Zero
}

// PnL returns (current, peak, daily) realized PnL.
func (s *Supervisor) PnL() (current, peak, daily decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPnL, s.peakPnL, s.dailyPnL
}
