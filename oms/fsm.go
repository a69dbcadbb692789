package oms

import (
	"github.com/shopspring/decimal"

	"github.com/nyx-systems/fixcore/constants"
	"github.com/nyx-systems/fixcore/fixcodec"
	"github.com/nyx-systems/fixcore/model"
)

// ApplyExecutionReport drives the OMS FSM from a decoded ExecutionReport
// (35=8) per spec §4.9's transition table. It is a no-op (and returns
// false) if clOrdID is not tracked, or if execID duplicates the last
// applied ExecID for this order (spec R2: dedup by ExecID).
func (s *Store) ApplyExecutionReport(msg *fixcodec.Message) bool {
	clOrdID, _ := msg.String(int(constants.TagClOrdID))
	if clOrdID == "" {
		return false
	}
	execID, _ := msg.String(int(constants.TagExecID))
	execType, _ := msg.String(int(constants.TagExecType))
	ordStatus, _ := msg.String(int(constants.TagOrdStatus))
	orderID, _ := msg.String(int(constants.TagOrderID))

	applied := false
	s.mutate(clOrdID, func(e *entry) {
		if execID != "" && execID == e.rec.LastExecID {
			return // R2 dedup: already applied
		}
		if orderID != "" {
			e.rec.VenueID = orderID
		}

		switch {
		case execType == constants.ExecTypeNew || ordStatus == constants.OrdStatusNew:
			if e.rec.State == model.StatePendingNew {
				e.rec.State = model.StateNew
			}
		case execType == constants.ExecTypeTrade || ordStatus == constants.OrdStatusPartiallyFilled || ordStatus == constants.OrdStatusFilled:
			delta := applyFill(&e.rec, msg)
			s.positions.apply(e.rec.Symbol, e.rec.Side, delta)
			if ordStatus == constants.OrdStatusFilled || e.rec.Leaves().IsZero() {
				e.rec.State = model.StateFilled
			} else {
				e.rec.State = model.StatePartiallyFilled
			}
		case execType == constants.ExecTypeCanceled || ordStatus == constants.OrdStatusCanceled:
			e.rec.State = model.StateCanceled
		case execType == constants.ExecTypeRejected || ordStatus == constants.OrdStatusRejected:
			if e.rec.State == model.StatePendingCancel {
				e.rec.State = e.stateBeforeCxl
			} else {
				e.rec.State = model.StateRejected
			}
		default:
			// Unknown transition: logged by the caller, record left untouched
			// per spec §4.9 "the FSM never silently mutates into a terminal
			// state without a report".
			return
		}

		if execID != "" {
			e.rec.LastExecID = execID
		}
		applied = true
	})
	return applied
}

// applyFill applies LastQty/LastPx from a fill-bearing ExecutionReport onto
// rec, per spec §4.9, and returns this report's incremental fill quantity
// (LastShares, tag 32) for the caller to feed into the position tracker.
// CumQty is the order's cumulative fill total and is authoritative for
// rec.Filled when present; LastShares is this specific fill's delta and is
// what the net-position tracker must accumulate.
func applyFill(rec *model.OrderRecord, msg *fixcodec.Message) decimal.Decimal {
	var delta decimal.Decimal
	if mant, exp, ok := msg.Decimal(int(constants.TagLastShares)); ok {
		delta = decimal.New(mant, int32(exp))
	}

	if mant, exp, ok := msg.Decimal(int(constants.TagCumQty)); ok {
		rec.Filled = decimal.New(mant, int32(exp))
	} else {
		rec.Filled = rec.Filled.Add(delta)
	}
	if mant, exp, ok := msg.Decimal(int(constants.TagLastPx)); ok {
		rec.Price = decimal.New(mant, int32(exp))
	}
	return delta
}

// MarkPendingCancel optimistically transitions clOrdID to PendingCancel
// when an OrderCancelRequest is sent, remembering the prior state so a
// cancel reject can revert it, per spec §4.9 "Cancel requests mark
// PendingCancel; reject to cancel reverts to prior state."
func (s *Store) MarkPendingCancel(clOrdID string) bool {
	return s.mutate(clOrdID, func(e *entry) {
		if e.rec.State.Terminal() || e.rec.State == model.StatePendingCancel {
			return
		}
		e.stateBeforeCxl = e.rec.State
		e.rec.State = model.StatePendingCancel
	})
}

// ApplyCancelReject reverts clOrdID from PendingCancel back to the state it
// held before the cancel attempt, per spec §4.9.
func (s *Store) ApplyCancelReject(clOrdID string) bool {
	return s.mutate(clOrdID, func(e *entry) {
		if e.rec.State != model.StatePendingCancel {
			return
		}
		e.rec.State = e.stateBeforeCxl
	})
}
