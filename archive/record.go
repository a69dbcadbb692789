package archive

import "github.com/nyx-systems/fixcore/model"

// kind discriminates the three record shapes Writer accepts, so a single
// queue.Ring[Record] can carry all of them without a type per stream.
type kind int

const (
	kindTick kind = iota
	kindBook
	kindExecution
)

// Record is one archival event. Exactly one of Tick/Book/Execution is
// populated, selected by kind. Callers use the TickRecord/BookRecord/
// ExecutionRecord constructors rather than building Record directly.
type Record struct {
	kind      kind
	tick      model.CanonicalTick
	book      model.CanonicalBook
	execution model.OrderRecord
}

// TickRecord wraps a tick for archival.
func TickRecord(t model.CanonicalTick) Record {
	return Record{kind: kindTick, tick: t}
}

// BookRecord wraps a book snapshot for archival. The book is copied by
// value at call time so a later in-place mutation of the live book can't
// race the writer goroutine.
func BookRecord(b *model.CanonicalBook) Record {
	return Record{kind: kindBook, book: *b}
}

// ExecutionRecord wraps an order's current state for archival, taken after
// an OMS FSM transition.
func ExecutionRecord(rec model.OrderRecord) Record {
	return Record{kind: kindExecution, execution: rec}
}
