package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nyx-systems/fixcore/model"
	"github.com/nyx-systems/fixcore/oms"
	"github.com/nyx-systems/fixcore/risk"
)

type fakeSender struct {
	sent int
}

func (f *fakeSender) SendApp(build func(seqNum int) []byte) error {
	f.sent++
	_ = build(f.sent)
	return nil
}

func newTestEngine() (*Engine, *fakeSender) {
	sender := &fakeSender{}
	router := oms.NewRouter(oms.Config{SenderCompID: "C", TargetCompID: "V", ClOrdIDPrefix: "e-"}, sender, nil)
	supervisor := risk.New(risk.Config{
		MaxOpsPerSec:         1000,
		MaxPositionSize:      decimal.NewFromInt(1000),
		MaxGlobalNotional:    decimal.NewFromInt(10_000_000),
		MaxNotionalPerSymbol: decimal.NewFromInt(10_000_000),
		MaxDrawdownPct:       0.5,
		MaxDailyLoss:         decimal.NewFromInt(100_000),
		MinConfidence:        0,
	})
	e := New(Config{Aliases: []Alias{{From: "XBT-USD", To: "BTC-USD"}}}, supervisor, router)
	return e, sender
}

func tick(mid float64) model.CanonicalTick {
	d := decimal.NewFromFloat(mid)
	return model.CanonicalTick{
		Bid: d.Sub(decimal.NewFromFloat(0.5)),
		Ask: d.Add(decimal.NewFromFloat(0.5)),
	}
}

func TestPushTickToUnregisteredSymbolReportsFalse(t *testing.T) {
	e, _ := newTestEngine()
	if e.PushTick("ETH-USD", tick(100)) {
		t.Fatal("expected false for unregistered symbol")
	}
}

func TestAliasResolvesToCanonicalSymbol(t *testing.T) {
	e, _ := newTestEngine()
	e.AddSymbol("BTC-USD")
	if !e.PushTick("xbt-usd", tick(100)) {
		t.Fatal("expected alias lookup to resolve to a registered worker")
	}
}

func TestStartProcessesLatchedTicksThenStopJoins(t *testing.T) {
	e, _ := newTestEngine()
	e.AddSymbol("BTC-USD")
	e.Start()
	defer e.Stop()

	// The worker latch keeps only the latest tick, so pace the pushes to let
	// the worker process each one; Compute needs 20 ticks in the deque.
	for i := 0; i < 25; i++ {
		e.PushTick("BTC-USD", tick(float64(100+i)))
		time.Sleep(time.Millisecond)
	}

	deadline := time.After(2 * time.Second)
	for {
		m := e.Metrics("BTC-USD")
		if m.RollingMidMean20 != 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("worker never computed metrics from latched ticks")
		case <-time.After(time.Millisecond):
		}
	}
}
