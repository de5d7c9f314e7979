// Package config loads runtime settings for a DeskSweep run.
package config

import "github.com/jinzhu/configor"

// Config holds every knob a run can turn. Zero config is a valid config:
// defaults are tuned for the common case (case-sensitive fs, implicit
// intermediate directories).
type Config struct {
	// CaseSensitive controls destination-collision detection. Set false on
	// case-insensitive file systems so collisions the storage would silently
	// merge are caught at validation time.
	CaseSensitive bool `json:"case_sensitive" default:"true"`

	// AutoMkdir lets MOVE destinations create missing intermediate
	// directories implicitly. When false, every intermediate directory
	// must come from an explicit MKDIR step earlier in the plan.
	AutoMkdir bool `json:"auto_mkdir" default:"true"`

	// StateDirName is the directory (under the target root) holding the
	// rollback journal, the advisory lock, and the audit database.
	StateDirName string `json:"state_dir_name" default:".desksweep"`

	// AuditDBName is the DuckDB file name inside the state directory.
	AuditDBName string `json:"audit_db_name" default:"audit.db"`

	LogLevel        string `json:"log_level" default:"info"`
	LogBatchSize    int    `json:"log_batch_size" default:"50"`
	LogFlushSeconds int    `json:"log_flush_seconds" default:"5"`
}

// Load reads config from the given JSON file, or returns defaults when
// the path is empty.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		if err := configor.New(&configor.Config{Silent: true}).Load(&cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err := configor.New(&configor.Config{Silent: true}).Load(&cfg, path); err != nil {
		return cfg, err
	}
	return cfg, nil
}
