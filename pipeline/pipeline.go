// Package pipeline implements the per-symbol tick pipeline spec component
// C8 describes: bounded tick/book history, exponentially-weighted averages,
// and the MicroMetrics vector computed from them. Deque capacity and
// ring-buffer mechanics are grounded on the teacher's TradeStore
// (fixclient/tradestore.go); the statistics themselves are new, since the
// teacher never computed microstructure signals of its own.
package pipeline

import (
	"math"
	"sync"

	"github.com/nyx-systems/fixcore/model"
)

const (
	historyCapacity = 1000
	momentumWindow  = 20

	// emaAlpha governs the mid/spread/volume EMAs; ofiDecay governs the
	// order-flow-imbalance accumulator, both per spec §4.7.
	emaAlpha = 0.2
	ofiDecay = 0.95

	shockVolatilityUnit      = 0.001
	shockVolatilityThreshold = 3.0
)

// Pipeline owns one symbol's rolling tick/book history and derived
// MicroMetrics. Not safe for concurrent Push* and Compute calls from
// different goroutines without the caller's own serialization — spec §5
// assigns exactly one worker goroutine per symbol, so Pipeline itself only
// guards against concurrent readers via Snapshot.
type Pipeline struct {
	symbol string

	ticks *deque[model.CanonicalTick]
	books *deque[*model.CanonicalBook]

	midEMA    float64
	spreadEMA float64
	volumeEMA float64
	ofi       float64
	haveEMA   bool

	mu      sync.RWMutex
	metrics model.MicroMetrics
}

// New returns an empty pipeline for symbol.
func New(symbol string) *Pipeline {
	return &Pipeline{
		symbol: symbol,
		ticks:  newDeque[model.CanonicalTick](historyCapacity),
		books:  newDeque[*model.CanonicalBook](historyCapacity),
	}
}

// PushTick appends tick to the tick deque and rolls the EMAs forward, per
// spec §4.7 "On push-tick".
func (p *Pipeline) PushTick(tick model.CanonicalTick) {
	mid := tick.MidFloat64()
	spread, _ := tick.Spread().Float64()
	volume, _ := tick.BuyVolume.Add(tick.SellVolume).Float64()

	if !p.haveEMA {
		p.midEMA, p.spreadEMA, p.volumeEMA = mid, spread, volume
		p.haveEMA = true
	} else {
		p.midEMA += emaAlpha * (mid - p.midEMA)
		p.spreadEMA += emaAlpha * (spread - p.spreadEMA)
		p.volumeEMA += emaAlpha * (volume - p.volumeEMA)
	}

	if n := p.ticks.Len(); n > 0 {
		prev := p.ticks.At(n - 1)
		dBid, _ := tick.Bid.Sub(prev.Bid).Float64()
		dAsk, _ := tick.Ask.Sub(prev.Ask).Float64()
		p.ofi = ofiDecay*p.ofi + (dBid - dAsk)
	}

	p.ticks.Push(tick)
}

// PushBook appends book to the book deque, per spec §4.7 "On push-book".
func (p *Pipeline) PushBook(book *model.CanonicalBook) {
	p.books.Push(book)
}

// Compute derives MicroMetrics from the current history window, per spec
// §4.7 "On compute". Momentum/volatility require at least momentumWindow
// ticks; until then they (and Shock) stay at their zero value.
func (p *Pipeline) Compute() model.MicroMetrics {
	var m model.MicroMetrics
	m.OFI = p.ofi

	if n := p.ticks.Len(); n > 0 {
		last := p.ticks.At(n - 1)
		if book := p.currentBook(); book != nil {
			m.TopImbalance = book.TopImbalance()
			m.DepthRatio = book.NearDepthImbalance()
		}
		_ = last
	}

	if p.ticks.Len() >= momentumWindow {
		window := p.ticks.Last(momentumWindow)
		mean := meanMid(window)
		variance := varianceMid(window, mean)
		volatility := math.Sqrt(variance)

		lastMid := window[len(window)-1].MidFloat64()
		if mean != 0 {
			m.TrendScore = (lastMid - mean) / mean
		}
		m.VolatilityRatio = volatility
		m.RollingMidMean20 = mean
		m.RollingMidVariance20 = variance
		m.Shock = volatility/shockVolatilityUnit > shockVolatilityThreshold
	}

	m.Sync()

	p.mu.Lock()
	p.metrics = m
	p.mu.Unlock()
	return m
}

// Snapshot returns the most recently computed MicroMetrics, safe to call
// from any goroutine.
func (p *Pipeline) Snapshot() model.MicroMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.metrics
}

func (p *Pipeline) currentBook() *model.CanonicalBook {
	if p.books.Len() == 0 {
		return nil
	}
	return p.books.At(p.books.Len() - 1)
}

func meanMid(ticks []model.CanonicalTick) float64 {
	if len(ticks) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range ticks {
		sum += t.MidFloat64()
	}
	return sum / float64(len(ticks))
}

func varianceMid(ticks []model.CanonicalTick, mean float64) float64 {
	if len(ticks) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range ticks {
		d := t.MidFloat64() - mean
		sum += d * d
	}
	return sum / float64(len(ticks))
}
