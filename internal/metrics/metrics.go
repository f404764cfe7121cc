// Package metrics counts what a collection run did.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector collects run counters. It is safe for concurrent use.
type Collector struct {
	filesDiscovered   atomic.Int64
	filesScanned      atomic.Int64
	readErrors        atomic.Int64
	linesScanned      atomic.Int64
	bytesRead         atomic.Int64
	endpointsMatched  atomic.Int64
	endpointsRetained atomic.Int64
	duplicatesDropped atomic.Int64

	// Error breakdown by kind
	errorCounts map[string]*atomic.Int64
	errorMu     sync.RWMutex

	mu       sync.Mutex
	start    time.Time
	finished time.Duration
	done     bool
}

// New creates a new metrics collector.
func New() *Collector {
	return &Collector{
		errorCounts: make(map[string]*atomic.Int64),
		start:       time.Now(),
	}
}

// RecordFilesDiscovered adds n selected input files.
func (c *Collector) RecordFilesDiscovered(n int) {
	c.filesDiscovered.Add(int64(n))
}

// RecordFileScanned records one document read and scanned in full.
func (c *Collector) RecordFileScanned(lines int, bytes int64) {
	c.filesScanned.Add(1)
	c.linesScanned.Add(int64(lines))
	c.bytesRead.Add(bytes)
}

// RecordReadError records a file that could not be read and was skipped.
func (c *Collector) RecordReadError(kind string) {
	c.readErrors.Add(1)
	c.RecordError(kind)
}

// RecordError records an error of the given kind.
func (c *Collector) RecordError(kind string) {
	c.errorMu.Lock()
	if c.errorCounts[kind] == nil {
		c.errorCounts[kind] = &atomic.Int64{}
	}
	c.errorCounts[kind].Add(1)
	c.errorMu.Unlock()
}

// RecordMatch records one endpoint occurrence and whether it survived
// deduplication.
func (c *Collector) RecordMatch(retained bool) {
	c.endpointsMatched.Add(1)
	if retained {
		c.endpointsRetained.Add(1)
	} else {
		c.duplicatesDropped.Add(1)
	}
}

// Finish freezes the run duration. Later snapshots report the same value.
func (c *Collector) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.done {
		c.finished = time.Since(c.start)
		c.done = true
	}
}

// Duration returns the elapsed run time, frozen once Finish is called.
func (c *Collector) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return c.finished
	}
	return time.Since(c.start)
}

// Snapshot returns a point-in-time copy of all counters.
func (c *Collector) Snapshot() *Snapshot {
	s := &Snapshot{
		FilesDiscovered:   c.filesDiscovered.Load(),
		FilesScanned:      c.filesScanned.Load(),
		ReadErrors:        c.readErrors.Load(),
		LinesScanned:      c.linesScanned.Load(),
		BytesRead:         c.bytesRead.Load(),
		EndpointsMatched:  c.endpointsMatched.Load(),
		EndpointsRetained: c.endpointsRetained.Load(),
		DuplicatesDropped: c.duplicatesDropped.Load(),
		Duration:          c.Duration(),
		ErrorCounts:       make(map[string]int64),
	}

	c.errorMu.RLock()
	for k, v := range c.errorCounts {
		s.ErrorCounts[k] = v.Load()
	}
	c.errorMu.RUnlock()

	return s
}

// Reset resets all counters and restarts the clock.
func (c *Collector) Reset() {
	c.filesDiscovered.Store(0)
	c.filesScanned.Store(0)
	c.readErrors.Store(0)
	c.linesScanned.Store(0)
	c.bytesRead.Store(0)
	c.endpointsMatched.Store(0)
	c.endpointsRetained.Store(0)
	c.duplicatesDropped.Store(0)

	c.errorMu.Lock()
	c.errorCounts = make(map[string]*atomic.Int64)
	c.errorMu.Unlock()

	c.mu.Lock()
	c.start = time.Now()
	c.finished = 0
	c.done = false
	c.mu.Unlock()
}

// Snapshot is a point-in-time view of run counters.
type Snapshot struct {
	FilesDiscovered   int64            `json:"files_discovered" yaml:"files_discovered"`
	FilesScanned      int64            `json:"files_scanned" yaml:"files_scanned"`
	ReadErrors        int64            `json:"read_errors" yaml:"read_errors"`
	LinesScanned      int64            `json:"lines_scanned" yaml:"lines_scanned"`
	BytesRead         int64            `json:"bytes_read" yaml:"bytes_read"`
	EndpointsMatched  int64            `json:"endpoints_matched" yaml:"endpoints_matched"`
	EndpointsRetained int64            `json:"endpoints_retained" yaml:"endpoints_retained"`
	DuplicatesDropped int64            `json:"duplicates_dropped" yaml:"duplicates_dropped"`
	Duration          time.Duration    `json:"duration" yaml:"duration"`
	ErrorCounts       map[string]int64 `json:"error_counts" yaml:"error_counts"`
}

// DuplicateRate returns the share of matches dropped as duplicates (0-1).
func (s *Snapshot) DuplicateRate() float64 {
	if s.EndpointsMatched == 0 {
		return 0
	}
	return float64(s.DuplicatesDropped) / float64(s.EndpointsMatched)
}

// Summary returns the counters as log-friendly fields.
func (s *Snapshot) Summary() map[string]interface{} {
	return map[string]interface{}{
		"duration":           s.Duration.String(),
		"files_discovered":   s.FilesDiscovered,
		"files_scanned":      s.FilesScanned,
		"read_errors":        s.ReadErrors,
		"lines_scanned":      s.LinesScanned,
		"bytes_read":         s.BytesRead,
		"endpoints_matched":  s.EndpointsMatched,
		"endpoints_retained": s.EndpointsRetained,
		"duplicates_dropped": s.DuplicatesDropped,
		"duplicate_rate":     s.DuplicateRate(),
	}
}
