// Package logging provides types for logging operations and data structures.
package logging

import "time"

// LogEntry represents a structured log entry compatible with the DuckDB schema.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Entity    string         `json:"entity,omitempty"`    // Entity type: 'scanner', 'validator', 'engine', 'journal', 'cli'
	EntityID  string         `json:"entity_id,omitempty"` // Unique identifier for the entity (session ID, plan ID, etc.)
	Path      string         `json:"path,omitempty"`      // Optional path for move-related logs
	Details   map[string]any `json:"details,omitempty"`   // Optional details
	Message   string         `json:"message"`
	Action    string         `json:"action,omitempty"` // Action like 'APPLY_MOVE' or 'UNDO_MOVE'
	Session   string         `json:"session,omitempty"` // Session ID the entry belongs to
}
