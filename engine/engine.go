// Package engine implements the symbol-set supervisor spec component C11
// describes: one worker goroutine per symbol, each owning its own pipeline
// and fusion instance, routed to by uppercased/aliased symbol string. The
// supervisor itself only does lifecycle (start/stop/join); all per-tick
// work happens inside a worker. Grounded on spec §4.10/§5 directly — no
// pack repo models a per-symbol worker-pool supervisor shaped like this, so
// the lifecycle (deterministic join order: inputs, then pipelines/workers,
// then router) follows the spec's concurrency model rather than any one
// teacher file.
package engine

import (
	"sort"
	"strings"
	"sync"

	"github.com/nyx-systems/fixcore/model"
	"github.com/nyx-systems/fixcore/oms"
	"github.com/nyx-systems/fixcore/pipeline"
	"github.com/nyx-systems/fixcore/risk"
)

// Config configures symbol aliasing and the shared fusion table.
type Config struct {
	// Aliases maps an input symbol spelling to the canonical one. Lookups
	// are case-insensitive; both sides are upper-cased at registration.
	Aliases []Alias
	// Signals is the fusion sub-signal table shared by every symbol's
	// worker. pipeline.DefaultSubSignals() is used if nil.
	Signals []pipeline.SubSignal
}

// Alias names an input spelling and the canonical symbol it resolves to.
type Alias struct {
	From string
	To   string
}

// Engine holds the symbol-set and drives worker lifecycle. Inbound
// tick/book updates are routed to the matching worker by canonical symbol;
// unregistered symbols are dropped (Push* report this via their bool
// return).
type Engine struct {
	aliases    map[string]string
	fusion     *pipeline.Fusion
	supervisor *risk.Supervisor
	router     *oms.Router

	mu      sync.RWMutex
	workers map[string]*worker
	started bool
}

// New returns an Engine wired to supervisor (risk gate) and router (order
// submission). Call AddSymbol for each symbol to trade, then Start.
func New(cfg Config, supervisor *risk.Supervisor, router *oms.Router) *Engine {
	signals := cfg.Signals
	if signals == nil {
		signals = pipeline.DefaultSubSignals()
	}
	aliases := make(map[string]string, len(cfg.Aliases))
	for _, a := range cfg.Aliases {
		aliases[strings.ToUpper(a.From)] = strings.ToUpper(a.To)
	}
	return &Engine{
		aliases:    aliases,
		fusion:     pipeline.NewFusion(signals),
		supervisor: supervisor,
		router:     router,
		workers:    make(map[string]*worker),
	}
}

// canonical upper-cases sym and applies any configured alias.
func (e *Engine) canonical(sym string) string {
	sym = strings.ToUpper(sym)
	if to, ok := e.aliases[sym]; ok {
		return to
	}
	return sym
}

// AddSymbol registers a symbol and its worker. Must be called before Start.
func (e *Engine) AddSymbol(sym string) {
	sym = e.canonical(sym)
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.workers[sym]; exists {
		return
	}
	e.workers[sym] = newWorker(sym, e.fusion, e.supervisor, e.router)
}

// Start launches one goroutine per registered worker.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	for _, w := range e.workers {
		go w.run()
	}
}

// Stop is the two-phase drain spec §5 requires: signal every worker to
// stop, then join them, in deterministic (sorted-symbol) order. Workers are
// the only input-owning goroutines this package manages, so "inputs first,
// then pipelines, then router" collapses to "stop workers, then return" —
// the caller is responsible for tearing down the session (inputs) and
// router/session (C10) around this call in that outer order.
func (e *Engine) Stop() {
	e.mu.Lock()
	syms := make([]string, 0, len(e.workers))
	for sym := range e.workers {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	workers := make([]*worker, 0, len(syms))
	for _, sym := range syms {
		workers = append(workers, e.workers[sym])
	}
	e.mu.Unlock()

	for _, w := range workers {
		close(w.stop)
	}
	for _, w := range workers {
		<-w.done
	}
}

// PushTick routes tick to symbol's worker. Returns false if symbol is not
// registered.
func (e *Engine) PushTick(symbol string, tick model.CanonicalTick) bool {
	w, ok := e.workerFor(symbol)
	if !ok {
		return false
	}
	w.pushTick(tick)
	return true
}

// PushBook routes book to symbol's worker. Returns false if symbol is not
// registered.
func (e *Engine) PushBook(symbol string, book *model.CanonicalBook) bool {
	w, ok := e.workerFor(symbol)
	if !ok {
		return false
	}
	w.pushBook(book)
	return true
}

func (e *Engine) workerFor(symbol string) (*worker, bool) {
	sym := e.canonical(symbol)
	e.mu.RLock()
	defer e.mu.RUnlock()
	w, ok := e.workers[sym]
	return w, ok
}

// Metrics returns the most recently computed MicroMetrics for symbol, or
// the zero value if the symbol is unregistered or hasn't computed yet.
func (e *Engine) Metrics(symbol string) model.MicroMetrics {
	w, ok := e.workerFor(symbol)
	if !ok {
		return model.MicroMetrics{}
	}
	return w.pipe.Snapshot()
}
