/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package archive is the optional, off-hot-path SQLite sink for ticks,
// books and execution reports. It is not the resend ring (that stays
// in-memory only, spec §6) and it is never on the tick-to-decision hot
// path: callers hand records to a Writer, which buffers them onto a
// queue.Ring and flushes batches from its own goroutine.
package archive

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/nyx-systems/fixcore/logging"
)

const (
	createTicksTable = `
CREATE TABLE IF NOT EXISTS ticks (
	symbol TEXT NOT NULL,
	bid TEXT NOT NULL,
	ask TEXT NOT NULL,
	bid_size TEXT NOT NULL,
	ask_size TEXT NOT NULL,
	ts_exchange_millis INTEGER NOT NULL,
	ts_local_micros INTEGER NOT NULL
);`
	createBooksTable = `
CREATE TABLE IF NOT EXISTS books (
	symbol TEXT NOT NULL,
	mid TEXT NOT NULL,
	spread TEXT NOT NULL,
	imbalance REAL NOT NULL,
	ts_exchange_millis INTEGER NOT NULL,
	ts_local_micros INTEGER NOT NULL
);`
	createExecutionsTable = `
CREATE TABLE IF NOT EXISTS executions (
	cl_ord_id TEXT NOT NULL,
	venue_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side INTEGER NOT NULL,
	state INTEGER NOT NULL,
	filled TEXT NOT NULL,
	price TEXT NOT NULL,
	last_exec_id TEXT NOT NULL,
	last_update_ts INTEGER NOT NULL
);`

	insertTickQuery = `INSERT INTO ticks (symbol, bid, ask, bid_size, ask_size, ts_exchange_millis, ts_local_micros) VALUES (?, ?, ?, ?, ?, ?, ?)`
	insertBookQuery = `INSERT INTO books (symbol, mid, spread, imbalance, ts_exchange_millis, ts_local_micros) VALUES (?, ?, ?, ?, ?, ?)`
	insertExecQuery = `INSERT INTO executions (cl_ord_id, venue_id, symbol, side, state, filled, price, last_exec_id, last_update_ts) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// DB holds the SQLite connection and the prepared statements record batches
// are executed against, mirroring the teacher's MarketDataDb: WAL mode for
// concurrent reader access while the writer goroutine appends, statements
// prepared once at open rather than re-parsed per insert.
type DB struct {
	conn *sql.DB

	stmtTick *sql.Stmt
	stmtBook *sql.Stmt
	stmtExec *sql.Stmt
}

// Open creates (or reuses) the SQLite file at path, in WAL mode, and
// prepares the three insert statements. logger may be nil in tests.
func Open(path string, logger *logging.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("archive: init schema: %w", err)
	}

	if db.stmtTick, err = conn.Prepare(insertTickQuery); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("archive: prepare tick statement: %w", err)
	}
	if db.stmtBook, err = conn.Prepare(insertBookQuery); err != nil {
		_ = db.stmtTick.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("archive: prepare book statement: %w", err)
	}
	if db.stmtExec, err = conn.Prepare(insertExecQuery); err != nil {
		_ = db.stmtTick.Close()
		_ = db.stmtBook.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("archive: prepare execution statement: %w", err)
	}

	if logger != nil {
		logger.Info("archive: sqlite store opened", zap.String("path", path))
	}
	return db, nil
}

func (db *DB) initSchema() error {
	for _, stmt := range []string{createTicksTable, createBooksTable, createExecutionsTable} {
		if _, err := db.conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the prepared statements and the underlying connection.
func (db *DB) Close() error {
	if db.stmtTick != nil {
		_ = db.stmtTick.Close()
	}
	if db.stmtBook != nil {
		_ = db.stmtBook.Close()
	}
	if db.stmtExec != nil {
		_ = db.stmtExec.Close()
	}
	return db.conn.Close()
}

// beginBatch starts a transaction the flush loop binds all three prepared
// statements to, per the teacher's StoreTradeBatch/tx.Stmt(...) pattern.
func (db *DB) beginBatch() (*sql.Tx, error) {
	return db.conn.Begin()
}
