package archive

import (
	"time"

	"go.uber.org/zap"

	"github.com/nyx-systems/fixcore/logging"
	"github.com/nyx-systems/fixcore/queue"
)

// Writer drains a queue.Ring[Record] on its own goroutine and flushes
// batches to SQLite inside a single transaction, the same off-hot-path
// shape as logging.Logger: producers (worker, session) only ever call
// Enqueue, which never blocks and never touches the database.
type Writer struct {
	db     *DB
	logger *logging.Logger
	ring   *queue.Ring[Record]
	stop   chan struct{}
	done   chan struct{}
	flush  time.Duration
	batch  int
}

// NewWriter wires a Writer to db. Every flushInterval, and once more on
// Stop, the writer drains up to capacity records from the ring into one
// batch; a full ring does not trigger an early flush. capacity is rounded up to
// the next power of two by queue.New (minimum 32). logger may be nil in
// tests; batch failures are then silently absorbed rather than logged.
func NewWriter(db *DB, logger *logging.Logger, capacity int, flushInterval time.Duration) *Writer {
	return &Writer{
		db:     db,
		logger: logger,
		ring:   queue.New[Record](capacity),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		flush:  flushInterval,
		batch:  capacity,
	}
}

// Enqueue offers rec to the ring. Returns false if the ring is full — the
// caller's hot path never blocks or retries on this; a full archive ring
// just means this record is lost to the sink, not to the live system.
func (w *Writer) Enqueue(rec Record) bool {
	return w.ring.Enqueue(rec)
}

// Dropped returns the count of Enqueue calls that found the ring full.
func (w *Writer) Dropped() uint64 {
	return w.ring.Dropped()
}

// Start launches the drain goroutine.
func (w *Writer) Start() {
	go w.run()
}

// Stop signals the drain goroutine and waits for it to flush its final
// batch and exit.
func (w *Writer) Stop() {
	close(w.stop)
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	ticker := time.NewTicker(w.flush)
	defer ticker.Stop()

	pending := make([]Record, 0, w.batch)
	for {
		select {
		case <-w.stop:
			w.drainAll(&pending)
			w.flushBatch(pending)
			return
		case <-ticker.C:
			w.drainAll(&pending)
			if len(pending) > 0 {
				w.flushBatch(pending)
				pending = pending[:0]
			}
		}
	}
}

// drainAll pulls every record currently available on the ring into
// pending, up to w.batch per call, without blocking.
func (w *Writer) drainAll(pending *[]Record) {
	for len(*pending) < w.batch {
		rec, ok := w.ring.TryDequeue()
		if !ok {
			return
		}
		*pending = append(*pending, rec)
	}
}

func (w *Writer) flushBatch(batch []Record) {
	if len(batch) == 0 {
		return
	}
	tx, err := w.db.beginBatch()
	if err != nil {
		w.logError("archive: begin batch failed", err)
		return
	}

	txTick := tx.Stmt(w.db.stmtTick)
	txBook := tx.Stmt(w.db.stmtBook)
	txExec := tx.Stmt(w.db.stmtExec)

	for _, rec := range batch {
		var err error
		switch rec.kind {
		case kindTick:
			t := rec.tick
			_, err = txTick.Exec(t.Symbol.String(), t.Bid.String(), t.Ask.String(),
				t.BidSize.String(), t.AskSize.String(), t.TsExchangeMillis, t.TsLocalMicros)
		case kindBook:
			b := rec.book
			_, err = txBook.Exec(b.Symbol.String(), b.Mid().String(), b.Spread().String(),
				b.Imbalance(), b.TsExchangeMillis, b.TsLocalMicros)
		case kindExecution:
			e := rec.execution
			_, err = txExec.Exec(e.ClOrdID, e.VenueID, e.Symbol, int(e.Side), int(e.State),
				e.Filled.String(), e.Price.String(), e.LastExecID, e.LastUpdateTS.UnixMicro())
		}
		if err != nil {
			w.logError("archive: insert failed, rolling back batch", err, zap.Int("batch_size", len(batch)))
			_ = tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		w.logError("archive: commit batch failed", err, zap.Int("batch_size", len(batch)))
	}
}

func (w *Writer) logError(msg string, err error, fields ...zap.Field) {
	if w.logger == nil {
		return
	}
	w.logger.Error(msg, append(fields, zap.Error(err))...)
}
