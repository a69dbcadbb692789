package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the order side, spec §3.
type Side uint8

const (
	SideBuy Side = iota + 1
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "Buy"
	case SideSell:
		return "Sell"
	default:
		return "Unknown"
	}
}

// OrderState is the OMS FSM state, spec §3/§4.9.
type OrderState uint8

const (
	StatePendingNew OrderState = iota
	StateNew
	StatePartiallyFilled
	StateFilled
	StatePendingCancel
	StateCanceled
	StateRejected
)

func (s OrderState) String() string {
	switch s {
	case StatePendingNew:
		return "PendingNew"
	case StateNew:
		return "New"
	case StatePartiallyFilled:
		return "PartiallyFilled"
	case StateFilled:
		return "Filled"
	case StatePendingCancel:
		return "PendingCancel"
	case StateCanceled:
		return "Canceled"
	case StateRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Terminal reports whether s is one of {Filled, Canceled, Rejected}.
func (s OrderState) Terminal() bool {
	return s == StateFilled || s == StateCanceled || s == StateRejected
}

// OrderRecord is the OMS's exclusive record of one client order, spec §3.
// Other components only ever see snapshots (copies), never the live
// pointer — enforced by oms.Store returning copies, mirroring the teacher's
// OrderStore.GetOrder copy-on-read pattern.
type OrderRecord struct {
	ClOrdID  string
	VenueID  string // filled after ack
	Symbol   string
	Side     Side
	Quantity decimal.Decimal
	Filled   decimal.Decimal
	Price    decimal.Decimal
	State    OrderState

	LastExecID   string // most recently applied ExecID, for R2 dedup
	LastUpdateTS time.Time
}

// Leaves returns Quantity-Filled, the spec I3 invariant field.
func (r *OrderRecord) Leaves() decimal.Decimal {
	return r.Quantity.Sub(r.Filled)
}
