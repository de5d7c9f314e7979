// Package db provides database-related type definitions and interfaces.
// This package contains types used for database operations and data structures.
package db

import "time"

// WriteQueueType determines how a queue batches operations.
type WriteQueueType int

const (
	LogWriteQueue WriteQueueType = iota // flat insert batching for log tables
)

// WriteOp represents a queued SQL operation.
type WriteOp struct {
	Path   string
	Query  string
	Params []any
	OpType string // "insert", "update", "delete"
}

// Batch represents a group of write operations for one table.
type Batch struct {
	Table  string
	OpType string
	Ops    []WriteOp
}

// WriteQueueInterface defines methods for write queues.
type WriteQueueInterface interface {
	Add(path string, op WriteOp)
	Flush(force ...bool) []Batch
	IsReadyToWrite() bool
	GetFlushInterval() time.Duration
}

// DBInterface defines the subset of the DB used by other packages (e.g. logger).
type DBInterface interface {
	InitWriteQueue(table string, queueType WriteQueueType, batchSize int, flushInterval time.Duration)
	GetWriteQueue(table string) WriteQueueInterface
	ForceFlushTable(tableName string)
}
