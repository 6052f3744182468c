package runner

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"treesum/internal/checksum"
)

// HashExecutor is the one job type this tool has: hash a file, and in verify
// mode compare the digest to the expected one. Failures of any kind come back
// as Results, never as panics or pool-level errors.
type HashExecutor struct {
	Algorithm string
	ChunkSize int
	// OnBytes observes hashed byte counts (stats, progress bar). Called
	// from worker goroutines.
	OnBytes func(n int64)
}

func (e *HashExecutor) Execute(_ context.Context, job Job) Result {
	if job.Err != nil {
		return Result{Job: job, Status: StatusIOError, Err: job.Err}
	}

	slog.Debug("processing", "path", job.AbsPath)

	digest, err := checksum.File(job.AbsPath, e.Algorithm, e.ChunkSize, e.OnBytes)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Job: job, Status: StatusMissing, Err: err}
		}
		return Result{Job: job, Status: StatusIOError, Err: err}
	}

	if job.Mode == ModeVerify && !strings.EqualFold(digest, job.Expected) {
		return Result{Job: job, Digest: digest, Status: StatusMismatch}
	}

	return Result{Job: job, Digest: digest, Status: StatusOK}
}
