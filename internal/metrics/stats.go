package metrics

import "time"

// Stats holds the live counters for one run. BytesHashed is fed from worker
// progress callbacks; the per-file counters are owned by the aggregation
// goroutine. The progress bar reads everything concurrently, so access goes
// through sync/atomic.
type Stats struct {
	Processed  int64
	OK         int64
	Mismatches int64
	Missing    int64
	IOErrors   int64

	BytesHashed int64

	Started  time.Time
	Finished time.Time
}

func (s *Stats) Start() { s.Started = time.Now() }
func (s *Stats) Stop()  { s.Finished = time.Now() }

func (s *Stats) Duration() time.Duration {
	if s.Finished.IsZero() {
		return time.Since(s.Started)
	}
	return s.Finished.Sub(s.Started)
}
