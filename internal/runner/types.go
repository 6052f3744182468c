package runner

import "context"

type Mode int

const (
	ModeCreate Mode = iota
	ModeVerify
)

type Status int

const (
	StatusOK Status = iota
	StatusMismatch
	StatusMissing
	StatusIOError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMismatch:
		return "mismatch"
	case StatusMissing:
		return "missing"
	case StatusIOError:
		return "io_error"
	default:
		return "unknown"
	}
}

// Job is one file to hash. Path is the name as it appears (or will appear) in
// the manifest; AbsPath is where the file lives on disk. A Job with Err set is
// already failed (unreadable directory entry, malformed manifest line) and is
// turned into an IO_ERROR Result without touching the disk. Jobs are not
// mutated after being enqueued.
type Job struct {
	Path     string
	AbsPath  string
	Expected string
	Mode     Mode
	Err      error
}

// Result is produced exactly once per Job.
type Result struct {
	Job    Job
	Digest string
	Status Status
	Err    error
}

func (r Result) Failed() bool { return r.Status != StatusOK }

// Producer feeds jobs into the run. It must return when ctx is done and must
// not close the channel (the runner owns it).
type Producer func(ctx context.Context, jobs chan<- Job) error

// Executor turns one Job into one Result. Implementations must not panic;
// per-file failures are data, not errors.
type Executor interface {
	Execute(ctx context.Context, job Job) Result
}

// Outcome is the aggregate of a finished (or aborted) run.
type Outcome struct {
	Total   int
	OK      int
	Failed  []Result
	Aborted bool
}

func (o *Outcome) FailCount() int { return len(o.Failed) }
