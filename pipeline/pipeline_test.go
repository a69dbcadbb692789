package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nyx-systems/fixcore/model"
)

func tickAt(mid float64) model.CanonicalTick {
	d := decimal.NewFromFloat(mid)
	return model.CanonicalTick{
		Bid: d.Sub(decimal.NewFromFloat(0.5)),
		Ask: d.Add(decimal.NewFromFloat(0.5)),
	}
}

func TestComputeRequiresMomentumWindow(t *testing.T) {
	p := New("BTC-USD")
	for i := 0; i < momentumWindow-1; i++ {
		p.PushTick(tickAt(100))
	}
	m := p.Compute()
	if m.TrendScore != 0 || m.VolatilityRatio != 0 {
		t.Fatalf("expected zero momentum/volatility below window, got %+v", m)
	}
}

func TestComputeFlatPriceHasZeroVolatility(t *testing.T) {
	p := New("BTC-USD")
	for i := 0; i < momentumWindow; i++ {
		p.PushTick(tickAt(100))
	}
	m := p.Compute()
	if m.VolatilityRatio != 0 {
		t.Fatalf("VolatilityRatio = %v, want 0 for constant price", m.VolatilityRatio)
	}
	if m.Shock {
		t.Fatal("Shock should be false for a flat series")
	}
}

func TestComputeDetectsShockOnLargeSwing(t *testing.T) {
	p := New("BTC-USD")
	for i := 0; i < momentumWindow; i++ {
		if i%2 == 0 {
			p.PushTick(tickAt(100))
		} else {
			p.PushTick(tickAt(130))
		}
	}
	m := p.Compute()
	if !m.Shock {
		t.Fatalf("expected Shock=true for large alternating swing, metrics=%+v", m)
	}
}

func TestDequeDropsOldestAtCapacity(t *testing.T) {
	d := newDeque[int](3)
	d.Push(1)
	d.Push(2)
	d.Push(3)
	d.Push(4)
	if d.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", d.Len())
	}
	got := d.Last(3)
	want := []int{2, 3, 4}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("Last(3) = %v, want %v", got, want)
		}
	}
}

func TestFusionScoreIsWeightedSum(t *testing.T) {
	f := NewFusion([]SubSignal{
		{Name: "a", Weight: 0.5, Kernel: func(m model.MicroMetrics) float64 { return 1 }},
		{Name: "b", Weight: 0.5, Kernel: func(m model.MicroMetrics) float64 { return -1 }},
	})
	if got := f.Score(model.MicroMetrics{}); got != 0 {
		t.Fatalf("Score() = %v, want 0", got)
	}
}
