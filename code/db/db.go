package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	typesdb "github.com/Voltaic314/DeskSweep/code/types/db"
	_ "github.com/marcboeker/go-duckdb"
)

// DB wraps the DuckDB connection holding the audit log. Writes go through
// batching write queues; reads force a flush first so nothing queued is
// invisible to the query.
type DB struct {
	conn   *sql.DB
	ctx    context.Context
	cancel context.CancelFunc
	wqMap  map[string]*WriteQueue
}

// NewDB initializes the DuckDB connection without any write queues.
func NewDB(dbPath string) (*DB, error) {
	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &DB{
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
		wqMap:  make(map[string]*WriteQueue),
	}, nil
}

// InitWriteQueue initializes a write queue for a specific table.
func (db *DB) InitWriteQueue(table string, queueType typesdb.WriteQueueType, batchSize int, flushInterval time.Duration) {
	wq := NewWriteQueue(table, queueType, batchSize, flushInterval)
	db.wqMap[table] = wq
	go db.startQueueListener(table, wq)
}

// Close flushes all write queues and shuts down the connection.
func (db *DB) Close() {
	for tableName, wq := range db.wqMap {
		db.flushWriteQueue(wq, tableName, true)
	}

	db.cancel()
	if db.conn != nil {
		db.conn.Close()
	}
}

// Query runs a read query after flushing pending writes for the given table.
func (db *DB) Query(table string, query string, params ...any) (*sql.Rows, error) {
	if wq, ok := db.wqMap[table]; ok {
		db.flushWriteQueue(wq, table, true)
	}
	return db.conn.QueryContext(db.ctx, query, params...)
}

// Write runs a direct write query (e.g. schema setup).
func (db *DB) Write(query string, params ...any) error {
	_, err := db.conn.ExecContext(db.ctx, query, params...)
	return err
}

// CreateTable creates a table if it doesn't exist.
func (db *DB) CreateTable(tableName string, schema string) error {
	query := "CREATE TABLE IF NOT EXISTS " + tableName + " (" + schema + ")"
	return db.Write(query)
}

// GetWriteQueue returns the write queue for a given table.
func (db *DB) GetWriteQueue(table string) typesdb.WriteQueueInterface {
	if wq, ok := db.wqMap[table]; ok {
		return wq
	}
	return nil
}

// ForceFlushTable forces a flush of the write queue for a specific table.
func (db *DB) ForceFlushTable(tableName string) {
	if wq, ok := db.wqMap[tableName]; ok {
		db.flushWriteQueue(wq, tableName, true)
	}
}

func (db *DB) flushWriteQueue(wq *WriteQueue, tableName string, force bool) {
	batches := wq.Flush(force)
	for _, b := range batches {
		if err := db.executeBatch(b); err != nil {
			fmt.Printf("audit batch write failed for table %s: %v\n", tableName, err)
		}
	}
}

// executeBatch runs one batch of queued writes in a single transaction.
func (db *DB) executeBatch(b typesdb.Batch) error {
	if len(b.Ops) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, op := range b.Ops {
		if _, err = tx.Exec(op.Query, op.Params...); err != nil {
			return fmt.Errorf("failed to execute query for table %s: %w", b.Table, err)
		}
	}

	err = tx.Commit()
	return err
}

func (db *DB) startQueueListener(tableName string, queue *WriteQueue) {
	timer := time.NewTimer(queue.GetFlushInterval())
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			db.flushWriteQueue(queue, tableName, true)
			timer.Reset(queue.GetFlushInterval())
		case <-db.ctx.Done():
			return
		}
	}
}
