package runner

import (
	"context"
	"crypto/md5" // #nosec G401
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashExecutor(t *testing.T) {
	dir := t.TempDir()

	content := []byte("hello world")
	p := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(p, content, 0o600))

	sum := md5.Sum(content) // #nosec G401
	digest := hex.EncodeToString(sum[:])

	exec := &HashExecutor{Algorithm: "md5", ChunkSize: 4}

	tests := []struct {
		name       string
		job        Job
		wantStatus Status
		wantDigest string
	}{
		{
			name:       "create ok",
			job:        Job{Path: "a.txt", AbsPath: p, Mode: ModeCreate},
			wantStatus: StatusOK,
			wantDigest: digest,
		},
		{
			name:       "verify ok",
			job:        Job{Path: "a.txt", AbsPath: p, Expected: digest, Mode: ModeVerify},
			wantStatus: StatusOK,
			wantDigest: digest,
		},
		{
			name:       "verify ok uppercase expected",
			job:        Job{Path: "a.txt", AbsPath: p, Expected: strings.ToUpper(digest), Mode: ModeVerify},
			wantStatus: StatusOK,
		},
		{
			name:       "verify mismatch",
			job:        Job{Path: "a.txt", AbsPath: p, Expected: strings.Repeat("00", 16), Mode: ModeVerify},
			wantStatus: StatusMismatch,
			wantDigest: digest,
		},
		{
			name:       "missing file",
			job:        Job{Path: "gone.txt", AbsPath: filepath.Join(dir, "gone.txt"), Mode: ModeVerify},
			wantStatus: StatusMissing,
		},
		{
			name:       "pre-failed job",
			job:        Job{Path: "manifest:12", Mode: ModeVerify, Err: errors.New("bad line")},
			wantStatus: StatusIOError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := exec.Execute(context.Background(), tt.job)
			assert.Equal(t, tt.wantStatus, res.Status)
			if tt.wantDigest != "" {
				assert.Equal(t, tt.wantDigest, res.Digest)
			}
			assert.Equal(t, tt.job.Path, res.Job.Path)
		})
	}
}

func TestHashExecutor_MissingIsNotIOError(t *testing.T) {
	exec := &HashExecutor{Algorithm: "md5"}
	res := exec.Execute(context.Background(), Job{
		Path:    "gone",
		AbsPath: filepath.Join(t.TempDir(), "gone"),
		Mode:    ModeVerify,
	})
	require.Equal(t, StatusMissing, res.Status,
		"a deleted file is missing, not an io error")
}
