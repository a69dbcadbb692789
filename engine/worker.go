package engine

import (
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nyx-systems/fixcore/constants"
	"github.com/nyx-systems/fixcore/model"
	"github.com/nyx-systems/fixcore/oms"
	"github.com/nyx-systems/fixcore/pipeline"
	"github.com/nyx-systems/fixcore/risk"
)

// DefaultOrderQty is the order size the worker routes when fusion clears
// the risk gate. Sizing strategy is explicitly out of scope (spec §4.7
// "the specific sub-signal formulas are out of scope... pluggable
// strategies"); this fixed size is the minimal glue needed to drive an
// end-to-end tick-to-order hop, not a strategy recommendation.
var DefaultOrderQty = decimal.NewFromInt(1)

// worker owns one symbol's pipeline, fusion instance, and hot path: latch
// the latest tick/book under a small lock, process it, repeat. Spec §4.10/
// §5: "one worker thread owning its pipeline and position tracker... the
// hot path is a tight latch-check and process of the latest cached
// tick/book under a small lock — no blocking I/O."
type worker struct {
	symbol     string
	pipe       *pipeline.Pipeline
	fusion     *pipeline.Fusion
	supervisor *risk.Supervisor
	router     *oms.Router

	mu         sync.Mutex
	latestTick model.CanonicalTick
	haveTick   bool
	latestBook *model.CanonicalBook

	signal chan struct{}
	stop   chan struct{}
	done   chan struct{}
}

func newWorker(symbol string, fusion *pipeline.Fusion, supervisor *risk.Supervisor, router *oms.Router) *worker {
	return &worker{
		symbol:     symbol,
		pipe:       pipeline.New(symbol),
		fusion:     fusion,
		supervisor: supervisor,
		router:     router,
		signal:     make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// pushTick latches tick as the most recent and wakes the worker if it is
// idle. A full signal channel means a wake is already pending, so the send
// is best-effort (non-blocking) — the worker always re-reads the latch for
// the latest value, never a queued history of values.
func (w *worker) pushTick(tick model.CanonicalTick) {
	w.mu.Lock()
	w.latestTick = tick
	w.haveTick = true
	w.mu.Unlock()
	w.wake()
}

func (w *worker) pushBook(book *model.CanonicalBook) {
	w.mu.Lock()
	w.latestBook = book
	w.mu.Unlock()
	w.wake()
}

func (w *worker) wake() {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// run drains wake signals until stop is closed, processing the latest
// latched tick/book on each wake. No blocking I/O occurs here; the channel
// receive is the worker's only suspension point, per spec §5.
func (w *worker) run() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case <-w.signal:
			w.process()
		}
	}
}

func (w *worker) process() {
	w.mu.Lock()
	tick, haveTick, book := w.latestTick, w.haveTick, w.latestBook
	w.mu.Unlock()

	if haveTick {
		w.pipe.PushTick(tick)
	}
	if book != nil {
		w.pipe.PushBook(book)
	}
	metrics := w.pipe.Compute()
	score := w.fusion.Score(metrics)
	if score == 0 {
		return
	}

	side := model.SideBuy
	if score < 0 {
		side = model.SideSell
	}
	riskSide := int8(1)
	if side == model.SideSell {
		riskSide = -1
	}

	price := tick.Ask
	if side == model.SideSell {
		price = tick.Bid
	}

	intent := risk.Intent{
		Symbol:          w.symbol,
		Side:            riskSide,
		Quantity:        DefaultOrderQty,
		Price:           price,
		Confidence:      math.Abs(score),
		CurrentPosition: w.router.Store.Positions().Position(w.symbol),
	}
	decision := w.supervisor.Approve(intent, time.Now())
	if !decision.Approved {
		return
	}

	_, _ = w.router.Route(oms.NewOrderRequest{
		Symbol:      w.symbol,
		Side:        side,
		OrdType:     constants.OrdTypeLimit,
		TimeInForce: constants.TimeInForceGTC,
		Quantity:    DefaultOrderQty,
		Price:       price,
	})
}
