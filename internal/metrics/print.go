package metrics

import (
	"fmt"
	"io"
	"sync/atomic"

	"treesum/internal/runner"
)

type Snapshot struct {
	DurationMs  int64
	Processed   int64
	OK          int64
	Mismatches  int64
	Missing     int64
	IOErrors    int64
	BytesHashed int64
}

func (s *Stats) Snapshot() Snapshot {
	dur := s.Duration()

	return Snapshot{
		DurationMs:  dur.Milliseconds(),
		Processed:   atomic.LoadInt64(&s.Processed),
		OK:          atomic.LoadInt64(&s.OK),
		Mismatches:  atomic.LoadInt64(&s.Mismatches),
		Missing:     atomic.LoadInt64(&s.Missing),
		IOErrors:    atomic.LoadInt64(&s.IOErrors),
		BytesHashed: atomic.LoadInt64(&s.BytesHashed),
	}
}

func (s Snapshot) FailCount() int64 {
	return s.Mismatches + s.Missing + s.IOErrors
}

// Record folds one result into the counters. Called only from the aggregation
// goroutine.
func (s *Stats) Record(res runner.Result) {
	atomic.AddInt64(&s.Processed, 1)
	switch res.Status {
	case runner.StatusOK:
		atomic.AddInt64(&s.OK, 1)
	case runner.StatusMismatch:
		atomic.AddInt64(&s.Mismatches, 1)
	case runner.StatusMissing:
		atomic.AddInt64(&s.Missing, 1)
	case runner.StatusIOError:
		atomic.AddInt64(&s.IOErrors, 1)
	}
}

func (s *Stats) AddBytes(n int64) {
	atomic.AddInt64(&s.BytesHashed, n)
}

func Print(w io.Writer, s *Stats) {
	snap := s.Snapshot()

	fmt.Fprintln(w, "--- stats ---")
	fmt.Fprintln(w, "duration_ms:", snap.DurationMs)
	fmt.Fprintln(w, "processed:", snap.Processed)
	fmt.Fprintln(w, "ok:", snap.OK)
	fmt.Fprintln(w, "mismatches:", snap.Mismatches)
	fmt.Fprintln(w, "missing:", snap.Missing)
	fmt.Fprintln(w, "io_errors:", snap.IOErrors)
	fmt.Fprintln(w, "bytes_hashed:", snap.BytesHashed)

	if snap.DurationMs > 0 {
		secs := float64(snap.DurationMs) / 1000.0
		bps := float64(snap.BytesHashed) / secs
		fmt.Fprintln(w, "throughput_mb_per_sec:", bps/1_000_000.0)
	}
}
