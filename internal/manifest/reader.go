package manifest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"treesum/internal/runner"
)

// Jobs returns a producer that reads the manifest at path line by line and
// emits one verify Job per entry. Relative paths are resolved against root.
// Comment lines (leading '#') and blank lines are skipped, as conventional
// checksum tools do. A malformed line becomes a pre-failed Job attributed to
// its file:line position instead of killing the run. Lines are read without a
// length cap so one pathological line cannot end the run either.
func Jobs(path, root string) runner.Producer {
	return func(ctx context.Context, jobs chan<- runner.Job) error {
		f, err := os.Open(path) // #nosec G304
		if err != nil {
			return fmt.Errorf("open manifest: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()

		br := bufio.NewReader(f)
		lineNo := 0
		for {
			line, rerr := br.ReadString('\n')
			if rerr != nil && rerr != io.EOF {
				return fmt.Errorf("read manifest: %w", rerr)
			}
			if line != "" {
				lineNo++
				if job, ok := lineJob(path, root, lineNo, line); ok {
					select {
					case jobs <- job:
					case <-ctx.Done():
						return nil
					}
				}
			}
			if rerr == io.EOF {
				return nil
			}
		}
	}
}

func lineJob(path, root string, lineNo int, raw string) (runner.Job, bool) {
	line := strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
		slog.Debug("skipping manifest line", "file", path, "line", lineNo)
		return runner.Job{}, false
	}

	digest, rel, err := ParseLine(line)
	if err != nil {
		return runner.Job{
			Path: fmt.Sprintf("%s:%d", path, lineNo),
			Mode: runner.ModeVerify,
			Err:  err,
		}, true
	}

	return runner.Job{
		Path:     rel,
		AbsPath:  resolve(root, rel),
		Expected: digest,
		Mode:     runner.ModeVerify,
	}, true
}

// CountEntries counts the manifest lines that produce a Job: everything but
// blanks and comments, malformed lines included.
func CountEntries(path string) (int, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return 0, fmt.Errorf("open manifest: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	br := bufio.NewReader(f)
	n := 0
	for {
		line, rerr := br.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return 0, fmt.Errorf("read manifest: %w", rerr)
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) != "" && !strings.HasPrefix(line, "#") {
			n++
		}
		if rerr == io.EOF {
			return n, nil
		}
	}
}

func resolve(root, rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(root, rel)
}
