// Package oms implements the order router and OMS FSM spec component C10
// describes: client-order-id generation, NewOrder/Cancel emission, and the
// ExecutionReport-driven state machine over OrderRecord. The store's
// copy-on-read contract (callers never see the live *model.OrderRecord
// pointer) is generalized from the teacher's OrderStore
// (fixclient/orderstore.go): GetOrder/GetAllOrders there already return
// copies for exactly the reason spec §5 calls out — the OMS FSM is the
// single writer, everyone else (risk, archive) is a reader.
package oms

import (
	"sync"

	"github.com/nyx-systems/fixcore/model"
)

// entry is the store's internal record: the public OrderRecord plus the
// one piece of FSM-private state a copy-on-read snapshot must not leak —
// the state to revert to if a cancel is rejected.
type entry struct {
	rec           model.OrderRecord
	stateBeforeCxl model.OrderState
}

// Store is the OMS's exclusive record of all live client orders, keyed by
// ClOrdID. Safe for concurrent use; the FSM (this package) is the only
// writer, per spec §5's single-writer/multi-reader rule.
type Store struct {
	mu        sync.RWMutex
	byClOrdID map[string]*entry
	positions *PositionTracker
}

// NewStore returns an empty order store with its own position tracker.
func NewStore() *Store {
	return &Store{
		byClOrdID: make(map[string]*entry),
		positions: newPositionTracker(),
	}
}

// Positions returns the tracker risk reads projected-position checks from.
func (s *Store) Positions() *PositionTracker {
	return s.positions
}

// Insert adds a newly-created order record, typically with
// State==PendingNew immediately after a NewOrderSingle is sent.
func (s *Store) Insert(rec model.OrderRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byClOrdID[rec.ClOrdID] = &entry{rec: rec}
}

// Get returns a copy of the order record for clOrdID.
func (s *Store) Get(clOrdID string) (model.OrderRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byClOrdID[clOrdID]
	if !ok {
		return model.OrderRecord{}, false
	}
	return e.rec, true
}

// GetByVenueID returns a copy of the order record whose VenueID matches,
// used when an inbound message only carries the exchange-assigned OrderID.
func (s *Store) GetByVenueID(venueID string) (model.OrderRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.byClOrdID {
		if e.rec.VenueID == venueID {
			return e.rec, true
		}
	}
	return model.OrderRecord{}, false
}

// All returns a copy of every tracked order record.
func (s *Store) All() []model.OrderRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.OrderRecord, 0, len(s.byClOrdID))
	for _, e := range s.byClOrdID {
		out = append(out, e.rec)
	}
	return out
}

// Open returns every order not yet in a terminal state.
func (s *Store) Open() []model.OrderRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.OrderRecord, 0, len(s.byClOrdID))
	for _, e := range s.byClOrdID {
		if !e.rec.State.Terminal() {
			out = append(out, e.rec)
		}
	}
	return out
}

// mutate runs fn against the live entry for clOrdID under the write lock,
// and garbage-collects the entry afterward if fn left it in a terminal
// state, per spec §4.9 "Terminal states free the record for GC". Returns
// false if clOrdID is unknown.
func (s *Store) mutate(clOrdID string, fn func(e *entry)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byClOrdID[clOrdID]
	if !ok {
		return false
	}
	fn(e)
	if e.rec.State.Terminal() {
		delete(s.byClOrdID, clOrdID)
	}
	return true
}
