// Package runlog provides the file-backed run log stores.
package runlog

import (
	"fmt"

	"github.com/kilianp07/roster/config"
	"github.com/kilianp07/roster/core/runlog"
)

// Open returns the store selected by cfg.Backend.
func Open(cfg config.RunLogConfig) (runlog.Store, error) {
	var (
		store runlog.Store
		err   error
	)
	switch cfg.Backend {
	case "none":
		return runlog.NopStore{}, nil
	case "jsonl":
		store, err = NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		store, err = NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown run log backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s run log %s: %w", cfg.Backend, cfg.Path, err)
	}
	return store, nil
}
