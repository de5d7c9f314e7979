package logging

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Voltaic314/DeskSweep/code/types/db"
	"github.com/Voltaic314/DeskSweep/code/types/logging"
)

// Logger mirrors structured entries to the console and queues them into
// the DuckDB audit_log table once a DB is registered. Safe to use before
// RegisterDB; entries just skip the DB sink.
type Logger struct {
	mu         sync.Mutex
	logLevel   string
	auditDB    db.DBInterface
	logWQ      db.WriteQueueInterface
	batchSize  int
	batchDelay time.Duration
	sessionID  string
	quiet      bool
}

var GlobalLogger *Logger

// InitLogger sets up the process-wide logger.
func InitLogger(level string, batchSize int, batchDelay time.Duration, quiet bool) {
	if level == "" {
		level = "info"
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if batchDelay <= 0 {
		batchDelay = 5 * time.Second
	}
	GlobalLogger = &Logger{
		logLevel:   level,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		quiet:      quiet,
	}
}

// RegisterDB attaches the audit database and activates the write queue sink.
func (l *Logger) RegisterDB(dbInstance db.DBInterface) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.auditDB = dbInstance
	l.logWQ = dbInstance.GetWriteQueue("audit_log")
	if l.logWQ == nil {
		dbInstance.InitWriteQueue("audit_log", db.LogWriteQueue, l.batchSize, l.batchDelay)
		l.logWQ = dbInstance.GetWriteQueue("audit_log")
	}
}

// BindSession stamps subsequent entries with the session ID.
func (l *Logger) BindSession(sessionID string) {
	l.mu.Lock()
	l.sessionID = sessionID
	l.mu.Unlock()
}

// Log records a leveled entry. Pass empty strings for entity, entityID,
// or action if not applicable.
func (l *Logger) Log(level, entity, entityID, message string, details map[string]any, action string) {
	if !l.shouldLog(level) {
		return
	}

	l.mu.Lock()
	session := l.sessionID
	wq := l.logWQ
	quiet := l.quiet
	l.mu.Unlock()

	e := logging.LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Entity:    entity,
		EntityID:  entityID,
		Message:   message,
		Details:   details,
		Action:    action,
		Session:   session,
	}

	if !quiet {
		fmt.Printf("[%s] %s %s\n", e.Level, e.Message, renderDetails(e.Details))
	}

	if wq != nil {
		detailsJSON, _ := json.Marshal(e.Details)
		timestamp := e.Timestamp.Format("2006-01-02 15:04:05.000000")
		query := `INSERT INTO audit_log (id, timestamp, level, entity, entity_id, details, message, action, session) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		wq.Add("", db.WriteOp{
			Query:  query,
			Params: []any{uuid.New().String(), timestamp, e.Level, e.Entity, e.EntityID, string(detailsJSON), e.Message, e.Action, e.Session},
			OpType: "insert",
		})
	}
}

var logLevels = map[string]int{"error": 0, "warning": 1, "info": 2, "debug": 3, "trace": 4}

func (l *Logger) shouldLog(level string) bool {
	rank, known := logLevels[level]
	if !known {
		return false
	}

	l.mu.Lock()
	configured := l.logLevel
	l.mu.Unlock()

	threshold, known := logLevels[configured]
	if !known {
		threshold = logLevels["info"]
	}
	return rank <= threshold
}

// Stop pushes any queued audit rows through to the database.
func (l *Logger) Stop() {
	l.mu.Lock()
	auditDB := l.auditDB
	l.mu.Unlock()
	if auditDB != nil {
		auditDB.ForceFlushTable("audit_log")
	}
}

func renderDetails(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}
	payload, _ := json.Marshal(details)
	return string(payload)
}
