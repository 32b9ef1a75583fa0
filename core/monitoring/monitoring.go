// Package monitoring defines the error-reporting contract used by the
// application service. Implementations are injected; there is no global
// monitor.
package monitoring

import "time"

// Monitor defines methods used for error reporting.
type Monitor interface {
	// CaptureException records err with optional tags. A nil err is ignored.
	CaptureException(err error, tags map[string]string)
	// Recover must be deferred directly; it reports a panic and re-panics.
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor discards everything.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}
