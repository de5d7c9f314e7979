package db

import (
	"sync"
	"time"

	typesdb "github.com/Voltaic314/DeskSweep/code/types/db"
)

// WriteQueue batches insert operations for a single table. The audit log
// is insert-only, so one flat queue per table is all we need.
type WriteQueue struct {
	mu           sync.Mutex
	tableName    string
	queueType    typesdb.WriteQueueType
	queue        []typesdb.WriteOp
	lastFlushed  time.Time
	batchSize    int
	flushTimer   time.Duration
	readyToWrite bool // indicates if queue is ready to be flushed
	isWriting    bool // prevents concurrent flushes
}

// NewWriteQueue creates a new write queue for a specific table.
func NewWriteQueue(tableName string, queueType typesdb.WriteQueueType, batchSize int, flushTimer time.Duration) *WriteQueue {
	return &WriteQueue{
		tableName:   tableName,
		queueType:   queueType,
		lastFlushed: time.Now(),
		batchSize:   batchSize,
		flushTimer:  flushTimer,
	}
}

// Add queues a new operation.
func (wq *WriteQueue) Add(path string, op typesdb.WriteOp) {
	wq.mu.Lock()
	defer wq.mu.Unlock()

	wq.queue = append(wq.queue, op)
	if len(wq.queue) >= wq.batchSize {
		wq.readyToWrite = true
	}
}

// IsReadyToWrite returns whether the queue is ready to be flushed.
func (wq *WriteQueue) IsReadyToWrite() bool {
	wq.mu.Lock()
	defer wq.mu.Unlock()
	return wq.readyToWrite
}

// GetFlushInterval returns the current flush interval.
func (wq *WriteQueue) GetFlushInterval() time.Duration {
	return wq.flushTimer
}

// Flush drains the queue into batches. Without force it only flushes
// once the batch threshold has been reached.
func (wq *WriteQueue) Flush(force ...bool) []typesdb.Batch {
	wq.mu.Lock()
	if wq.isWriting {
		wq.mu.Unlock()
		return nil
	}
	shouldForce := len(force) > 0 && force[0]
	if !shouldForce && !wq.readyToWrite {
		wq.mu.Unlock()
		return nil
	}
	if len(wq.queue) == 0 {
		wq.readyToWrite = false
		wq.mu.Unlock()
		return nil
	}

	wq.isWriting = true
	wq.readyToWrite = false
	queue := wq.queue
	wq.queue = nil
	wq.mu.Unlock()

	batch := typesdb.Batch{
		Table:  wq.tableName,
		OpType: "insert",
		Ops:    queue,
	}

	wq.mu.Lock()
	wq.lastFlushed = time.Now()
	wq.isWriting = false
	wq.mu.Unlock()

	return []typesdb.Batch{batch}
}
