package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// TraceEntry is one upstream exchange. Headers are never recorded, so
// credentials stay out of trace files; visitor messages do not.
type TraceEntry struct {
	Timestamp   time.Time       `json:"timestamp"`
	Driver      string          `json:"driver"`
	Endpoint    string          `json:"endpoint"`
	Model       string          `json:"model,omitempty"`
	RequestBody json.RawMessage `json:"request_body,omitempty"`
	StatusCode  int             `json:"status_code,omitempty"`
	Response    json.RawMessage `json:"response,omitempty"`
	Error       string          `json:"error,omitempty"`
	DurationMs  int64           `json:"duration_ms"`

	started time.Time
}

// traceSink serializes entries as NDJSON.
type traceSink struct {
	mu  sync.Mutex
	out io.WriteCloser
	enc *json.Encoder
}

var sink atomic.Pointer[traceSink]

// EnableTracing appends every upstream exchange to path until the returned
// stop function is called.
func EnableTracing(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	if previous := sink.Swap(&traceSink{out: f, enc: json.NewEncoder(f)}); previous != nil {
		previous.close()
	}
	return DisableTracing, nil
}

func DisableTracing() {
	if previous := sink.Swap(nil); previous != nil {
		previous.close()
	}
}

// StartTrace begins an entry for a request about to be sent. The result is
// never nil, so drivers can fill it in unconditionally.
func StartTrace(driver, endpoint, model string, body []byte) *TraceEntry {
	now := time.Now()
	return &TraceEntry{Timestamp: now, Driver: driver, Endpoint: endpoint, Model: model, RequestBody: body, started: now}
}

// Finish records the outcome and writes the entry if tracing is on.
func (e *TraceEntry) Finish(status int, response []byte, err error) {
	e.StatusCode = status
	e.Response = response
	if err != nil {
		e.Error = err.Error()
	}
	if !e.started.IsZero() {
		e.DurationMs = time.Since(e.started).Milliseconds()
	}
	Trace(*e)
}

// Trace writes entry if tracing is enabled.
func Trace(entry TraceEntry) {
	s := sink.Load()
	if s == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if len(entry.Response) > 0 && !json.Valid(entry.Response) {
		quoted, _ := json.Marshal(string(entry.Response))
		entry.Response = quoted
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(entry)
}

func (s *traceSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.out.Close()
}
