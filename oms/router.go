package oms

import (
	"github.com/shopspring/decimal"

	"github.com/nyx-systems/fixcore/builder"
	"github.com/nyx-systems/fixcore/clock"
	"github.com/nyx-systems/fixcore/constants"
	"github.com/nyx-systems/fixcore/model"
)

// Sender is the subset of *session.Session the router needs: submit an
// application message, letting the session reserve the outbound sequence
// number. Accepting an interface (rather than importing package session
// directly) keeps oms testable without a live connection.
type Sender interface {
	SendApp(build func(seqNum int) []byte) error
}

// Config carries the identifiers every outbound message needs.
type Config struct {
	SenderCompID string
	TargetCompID string
	Account      string
	ClOrdIDPrefix string
}

// Router generates client-order-ids, emits NewOrderSingle/
// OrderCancelRequest messages, and owns the Store those orders live in.
type Router struct {
	cfg    Config
	sender Sender
	ids    *clock.IDGenerator
	Store  *Store
}

// NewRouter returns a Router that mints ids with clk (nil uses the system
// clock) and sends through sender.
func NewRouter(cfg Config, sender Sender, clk clock.Clock) *Router {
	return &Router{
		cfg:    cfg,
		sender: sender,
		ids:    clock.NewIDGenerator(cfg.ClOrdIDPrefix, clk),
		Store:  NewStore(),
	}
}

// NewOrderRequest describes the order to route.
type NewOrderRequest struct {
	Symbol      string
	Side        model.Side
	OrdType     string // constants.OrdTypeLimit / OrdTypeMarket
	TimeInForce string
	Quantity    decimal.Decimal
	Price       decimal.Decimal // ignored for Market
}

// Route generates a client-order-id, sends a NewOrderSingle, and inserts
// OrderRecord{State: PendingNew} per spec §4.9. Returns the minted
// ClOrdID so the caller (risk/engine) can track the pending intent.
func (r *Router) Route(req NewOrderRequest) (string, error) {
	clOrdID := r.ids.NextClOrdID()
	side := constants.SideBuy
	if req.Side == model.SideSell {
		side = constants.SideSell
	}

	params := builder.NewOrderParams{
		Account:     r.cfg.Account,
		ClOrdID:     clOrdID,
		Symbol:      req.Symbol,
		Side:        side,
		OrdType:     req.OrdType,
		TimeInForce: req.TimeInForce,
		OrderQty:    req.Quantity.String(),
	}
	if req.OrdType == constants.OrdTypeLimit {
		params.Price = req.Price.String()
	}

	err := r.sender.SendApp(func(seqNum int) []byte {
		return builder.BuildNewOrderSingle(r.cfg.SenderCompID, r.cfg.TargetCompID, seqNum, params)
	})
	if err != nil {
		return "", err
	}

	r.Store.Insert(model.OrderRecord{
		ClOrdID:  clOrdID,
		Symbol:   req.Symbol,
		Side:     req.Side,
		Quantity: req.Quantity,
		Price:    req.Price,
		State:    model.StatePendingNew,
	})
	return clOrdID, nil
}

// Cancel sends an OrderCancelRequest for an existing order and optimistically
// marks it PendingCancel, per spec §4.9.
func (r *Router) Cancel(clOrdID string) error {
	rec, ok := r.Store.Get(clOrdID)
	if !ok {
		return ErrUnknownOrder
	}
	side := constants.SideBuy
	if rec.Side == model.SideSell {
		side = constants.SideSell
	}
	cancelID := r.ids.NextClOrdID()
	params := builder.CancelOrderParams{
		Account:     r.cfg.Account,
		ClOrdID:     cancelID,
		OrigClOrdID: clOrdID,
		OrderID:     rec.VenueID,
		Symbol:      rec.Symbol,
		Side:        side,
		OrderQty:    rec.Quantity.String(),
	}
	err := r.sender.SendApp(func(seqNum int) []byte {
		return builder.BuildOrderCancelRequest(r.cfg.SenderCompID, r.cfg.TargetCompID, seqNum, params)
	})
	if err != nil {
		return err
	}
	r.Store.MarkPendingCancel(clOrdID)
	return nil
}
