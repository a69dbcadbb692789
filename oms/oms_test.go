package oms

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nyx-systems/fixcore/constants"
	"github.com/nyx-systems/fixcore/fixcodec"
	"github.com/nyx-systems/fixcore/model"
)

type fakeSender struct {
	seq   int
	sent  [][]byte
	erred error
}

func (f *fakeSender) SendApp(build func(seqNum int) []byte) error {
	if f.erred != nil {
		return f.erred
	}
	f.seq++
	f.sent = append(f.sent, build(f.seq))
	return nil
}

func newRouter() (*Router, *fakeSender) {
	sender := &fakeSender{}
	cfg := Config{SenderCompID: "CLIENT", TargetCompID: "VENUE", Account: "ACC1", ClOrdIDPrefix: "eng-"}
	return NewRouter(cfg, sender, nil), sender
}

func TestRouteInsertsPendingNew(t *testing.T) {
	r, sender := newRouter()
	clOrdID, err := r.Route(NewOrderRequest{
		Symbol:      "BTC-USD",
		Side:        model.SideBuy,
		OrdType:     constants.OrdTypeLimit,
		TimeInForce: constants.TimeInForceGTC,
		Quantity:    decimal.NewFromInt(1),
		Price:       decimal.NewFromInt(50000),
	})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 sent frame, got %d", len(sender.sent))
	}
	rec, ok := r.Store.Get(clOrdID)
	if !ok || rec.State != model.StatePendingNew {
		t.Fatalf("got rec=%+v ok=%v, want PendingNew", rec, ok)
	}
}

func execReport(clOrdID, execID, execType, ordStatus string, extra string) *fixcodec.Message {
	raw := "35=8\x0111=" + clOrdID + "\x0117=" + execID + "\x01150=" + execType + "\x0139=" + ordStatus + extra
	m, err := fixcodec.Decode([]byte(raw + "\x01"))
	if err != nil {
		panic(err)
	}
	return m
}

func TestApplyExecutionReportNewTransition(t *testing.T) {
	r, _ := newRouter()
	clOrdID, _ := r.Route(NewOrderRequest{Symbol: "BTC-USD", Side: model.SideBuy, OrdType: constants.OrdTypeMarket, TimeInForce: constants.TimeInForceIOC, Quantity: decimal.NewFromInt(1)})

	ok := r.Store.ApplyExecutionReport(execReport(clOrdID, "ex1", constants.ExecTypeNew, constants.OrdStatusNew, ""))
	if !ok {
		t.Fatal("ApplyExecutionReport returned false")
	}
	rec, _ := r.Store.Get(clOrdID)
	if rec.State != model.StateNew {
		t.Fatalf("state = %v, want New", rec.State)
	}
}

func TestApplyExecutionReportFillThenTerminalGC(t *testing.T) {
	r, _ := newRouter()
	clOrdID, _ := r.Route(NewOrderRequest{Symbol: "BTC-USD", Side: model.SideBuy, OrdType: constants.OrdTypeLimit, TimeInForce: constants.TimeInForceGTC, Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(100)})
	r.Store.ApplyExecutionReport(execReport(clOrdID, "ex1", constants.ExecTypeNew, constants.OrdStatusNew, ""))

	r.Store.ApplyExecutionReport(execReport(clOrdID, "ex2", constants.ExecTypeTrade, constants.OrdStatusFilled, "\x0114=2\x0131=100\x01"))

	if _, ok := r.Store.Get(clOrdID); ok {
		t.Fatal("expected Filled order to be GC'd from the store")
	}
}

func TestApplyExecutionReportDedupsByExecID(t *testing.T) {
	r, _ := newRouter()
	clOrdID, _ := r.Route(NewOrderRequest{Symbol: "BTC-USD", Side: model.SideBuy, OrdType: constants.OrdTypeMarket, TimeInForce: constants.TimeInForceIOC, Quantity: decimal.NewFromInt(1)})
	r.Store.ApplyExecutionReport(execReport(clOrdID, "ex1", constants.ExecTypeNew, constants.OrdStatusNew, ""))

	applied := r.Store.ApplyExecutionReport(execReport(clOrdID, "ex1", constants.ExecTypeNew, constants.OrdStatusNew, ""))
	if applied {
		t.Fatal("expected duplicate ExecID to be a no-op, not re-applied")
	}
}

func TestApplyExecutionReportUpdatesPositionTracker(t *testing.T) {
	r, _ := newRouter()
	clOrdID, _ := r.Route(NewOrderRequest{Symbol: "BTC-USD", Side: model.SideBuy, OrdType: constants.OrdTypeLimit, TimeInForce: constants.TimeInForceGTC, Quantity: decimal.NewFromInt(3), Price: decimal.NewFromInt(100)})
	r.Store.ApplyExecutionReport(execReport(clOrdID, "ex1", constants.ExecTypeNew, constants.OrdStatusNew, ""))

	r.Store.ApplyExecutionReport(execReport(clOrdID, "ex2", constants.ExecTypeTrade, constants.OrdStatusPartiallyFilled, "\x0132=2\x0114=2\x0131=100\x01"))

	got := r.Store.Positions().Position("BTC-USD")
	if !got.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("position = %s, want 2", got)
	}
}

func TestCancelRejectRevertsToPriorState(t *testing.T) {
	r, _ := newRouter()
	clOrdID, _ := r.Route(NewOrderRequest{Symbol: "BTC-USD", Side: model.SideBuy, OrdType: constants.OrdTypeLimit, TimeInForce: constants.TimeInForceGTC, Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(100)})
	r.Store.ApplyExecutionReport(execReport(clOrdID, "ex1", constants.ExecTypeNew, constants.OrdStatusNew, ""))

	if err := r.Cancel(clOrdID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	rec, _ := r.Store.Get(clOrdID)
	if rec.State != model.StatePendingCancel {
		t.Fatalf("state = %v, want PendingCancel", rec.State)
	}

	r.Store.ApplyCancelReject(clOrdID)
	rec, _ = r.Store.Get(clOrdID)
	if rec.State != model.StateNew {
		t.Fatalf("state = %v, want reverted to New", rec.State)
	}
}
