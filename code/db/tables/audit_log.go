package tables

import (
	"github.com/Voltaic314/DeskSweep/code/db"
)

// AuditLogTable defines the schema for the "audit_log" table.
type AuditLogTable struct{}

// Name returns the name of the audit log table.
func (t AuditLogTable) Name() string {
	return "audit_log"
}

// Schema returns the DuckDB-compatible schema definition.
func (t AuditLogTable) Schema() string {
	return `
		id VARCHAR PRIMARY KEY,
		-- Use a UUID for the primary key
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		level VARCHAR NOT NULL CHECK(level IN ('trace', 'debug', 'info', 'warning', 'error', 'critical')),
		entity VARCHAR DEFAULT NULL,
		-- Entity type: 'scanner', 'validator', 'engine', 'journal', 'cli'
		entity_id VARCHAR DEFAULT NULL,
		-- Identifier for the entity (plan ID, root path, etc.)
		details VARCHAR DEFAULT NULL,
		message VARCHAR NOT NULL,
		action VARCHAR DEFAULT NULL,
		-- Action like 'APPLY_MOVE' or 'UNDO_MOVE' capital snake case style
		session VARCHAR DEFAULT NULL
	`
}

// Init creates the audit log table if it doesn't exist.
func (t AuditLogTable) Init(db *db.DB) error {
	return db.CreateTable(t.Name(), t.Schema())
}
