package pipeline

import "github.com/nyx-systems/fixcore/model"

// SubSignal is one pluggable fusion kernel: a small arithmetic function of a
// MicroMetrics snapshot, expected to return a value roughly in [-1, 1].
// Concrete formulas (EMA-deviation, top-k imbalance, drift, volume-burst,
// tick-direction accel) are out of scope per spec §4.7 — this is the
// tagged-variant table the spec's DESIGN NOTES calls for, not an opinion on
// what the kernels compute.
type SubSignal struct {
	Name   string
	Weight float64
	Kernel func(m model.MicroMetrics) float64
}

// Fusion composes a set of weighted SubSignals into one scalar. All
// sub-signals share the same MicroMetrics snapshot, per spec §4.7's
// contract: the fused value and its sign are fully determined by
// MicroMetrics plus window state at the instant Compute ran.
type Fusion struct {
	signals []SubSignal
}

// NewFusion builds a Fusion from a weighted sub-signal table, typically
// sourced from configuration (spec §6: per-sub-signal weights).
func NewFusion(signals []SubSignal) *Fusion {
	return &Fusion{signals: signals}
}

// Score returns the linear combination Σ weight_i * kernel_i(metrics).
func (f *Fusion) Score(metrics model.MicroMetrics) float64 {
	var total float64
	for _, s := range f.signals {
		total += s.Weight * s.Kernel(metrics)
	}
	return total
}

// DefaultSubSignals returns a minimal, illustrative kernel set covering the
// families spec §4.7 names, built directly on the named MicroMetrics
// fields it already exposes. Callers are free to substitute their own
// table entirely; this exists so Fusion has a usable default rather than an
// empty one.
func DefaultSubSignals() []SubSignal {
	return []SubSignal{
		{
			Name:   "ema_deviation",
			Weight: 0.4,
			Kernel: func(m model.MicroMetrics) float64 { return clamp(m.TrendScore) },
		},
		{
			Name:   "top_k_imbalance",
			Weight: 0.3,
			Kernel: func(m model.MicroMetrics) float64 { return clamp(m.DepthRatio) },
		},
		{
			Name:   "order_flow_imbalance",
			Weight: 0.2,
			Kernel: func(m model.MicroMetrics) float64 { return clamp(m.OFI) },
		},
		{
			Name:   "top_imbalance",
			Weight: 0.1,
			Kernel: func(m model.MicroMetrics) float64 { return clamp(m.TopImbalance) },
		},
	}
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
