package archive

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nyx-systems/fixcore/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	db, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestWriterFlushesOnStop(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, nil, 32, time.Hour)
	w.Start()

	tick := model.CanonicalTick{
		Symbol: model.SymbolFromString("BTC-USD"),
		Bid:    decimal.NewFromInt(100),
		Ask:    decimal.NewFromInt(101),
	}
	if !w.Enqueue(TickRecord(tick)) {
		t.Fatal("Enqueue reported ring full")
	}
	w.Stop()

	if got := countRows(t, db.conn, "ticks"); got != 1 {
		t.Fatalf("ticks row count = %d, want 1", got)
	}
}

func TestWriterFlushesOnTicker(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, nil, 32, 10*time.Millisecond)
	w.Start()
	defer w.Stop()

	rec := ExecutionRecord(model.OrderRecord{
		ClOrdID: "c1",
		Symbol:  "BTC-USD",
		Side:    model.SideBuy,
		State:   model.StateNew,
	})
	if !w.Enqueue(rec) {
		t.Fatal("Enqueue reported ring full")
	}

	deadline := time.After(2 * time.Second)
	for {
		if countRows(t, db.conn, "executions") == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("execution record never flushed by ticker")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestWriterStoresBookSymbol(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, nil, 32, time.Hour)
	w.Start()

	book := &model.CanonicalBook{Symbol: model.SymbolFromString("ETH-USD")}
	book.Bids[0] = model.Level{Price: decimal.NewFromInt(10), Size: decimal.NewFromInt(1)}
	book.Asks[0] = model.Level{Price: decimal.NewFromInt(11), Size: decimal.NewFromInt(1)}
	if !w.Enqueue(BookRecord(book)) {
		t.Fatal("Enqueue reported ring full")
	}
	w.Stop()

	var symbol string
	if err := db.conn.QueryRow("SELECT symbol FROM books LIMIT 1").Scan(&symbol); err != nil {
		t.Fatalf("query: %v", err)
	}
	if symbol != "ETH-USD" {
		t.Fatalf("symbol = %q, want ETH-USD", symbol)
	}
}
