// Package monitoring reports unexpected failures to an error tracker.
// Input errors are not reported; only failures of the service itself are.
package monitoring

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration)
}

// NopMonitor discards every report. It is the monitor in use until Init is
// called, and the one Sentry falls back to when no DSN is configured.
type NopMonitor struct{}

// CaptureException drops err.
func (NopMonitor) CaptureException(error, map[string]string) {}

// Flush returns immediately.
func (NopMonitor) Flush(time.Duration) {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	get().CaptureException(err, tags)
}

// Flush flushes buffered events.
func Flush(d time.Duration) { get().Flush(d) }

// RecoverHTTP answers 500 when next panics and reports the panic.
func RecoverHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				CaptureException(fmt.Errorf("panic: %v", v), map[string]string{"path": r.URL.Path})
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
