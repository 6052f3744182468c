package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"treesum/internal/manifest"
	"treesum/internal/metrics"
	"treesum/internal/progress"
	"treesum/internal/runner"
	"treesum/internal/walker"
)

func createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Hash every file under a directory into a checksum manifest",
		ArgsUsage: "<directory>",
		Description: `Walk the directory tree, hash each regular file with a bounded pool of
workers, and write one "<digest>  <path>" line per file. The manifest is
readable by the conventional single-threaded checksum tools (md5sum -c and
friends). Line order follows worker completion, not traversal; sort afterwards
if you want stable diffs:

  sort -k2 -o tree.md5 tree.md5

Hidden files, *.md5/*.md5sum files, and the output manifest itself are
skipped. Files that cannot be read are reported as failures and left out of
the manifest; the run still completes.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output manifest path (default: <directory-basename>.md5)",
			},
			&cli.BoolFlag{
				Name:  "hidden",
				Usage: "Include hidden files and directories",
			},
			&cli.BoolFlag{
				Name:  "no-strip-prefix",
				Usage: "Prefix each manifest path with ./",
			},
			algFlag(),
			workersFlag(),
			readSizeFlag(),
			progressFlag(),
		},
		Action: runCreate,
	}
}

func runCreate(ctx context.Context, cmd *cli.Command) error {
	root, err := rootArg(cmd)
	if err != nil {
		return cli.Exit(err, exitUsage)
	}

	cfg := resolveSettings(cmd)
	if err := cfg.validate(); err != nil {
		return cli.Exit(err, exitUsage)
	}
	chunk := cfg.chunkSize(root)

	outPath := cmd.String("out")
	if outPath == "" {
		outPath = filepath.Base(root) + ".md5"
	}
	absOut, err := filepath.Abs(outPath)
	if err != nil {
		return cli.Exit(fmt.Errorf("resolve %q: %w", outPath, err), exitUsage)
	}

	slog.Info("hashing directory", "root", root, "out", absOut,
		"alg", cfg.Algorithm, "workers", cfg.Workers, "readSize", chunk)

	f, err := os.Create(absOut) // #nosec G304
	if err != nil {
		return cli.Exit(fmt.Errorf("create manifest: %w", err), exitUsage)
	}

	stats := &metrics.Stats{}
	stats.Start()

	var bar *progress.Bar
	if cmd.Bool("progress") {
		bar = progress.New(-1, "hashing", statsSnapshot(stats))
	}

	w := manifest.NewWriter(f)
	// OnResult runs on the single aggregation goroutine, so plain state is
	// fine here.
	var writeErr error

	r := &runner.Runner{
		Workers:   cfg.Workers,
		QueueSize: cfg.Workers * createQueueFactor,
		// Unreadable files are recorded, never a reason to stop; a create
		// run always finishes once enumeration starts.
		ContinueOnError: true,
		Executor: &runner.HashExecutor{
			Algorithm: cfg.Algorithm,
			ChunkSize: chunk,
			OnBytes:   countBytes(stats, bar),
		},
		OnResult: func(res runner.Result) {
			stats.Record(res)
			if res.Status != runner.StatusOK {
				slog.Warn("file failed",
					"path", res.Job.Path, "status", res.Status.String(), "error", res.Err)
				return
			}
			if err := w.Add(res.Digest, res.Job.Path); err != nil && writeErr == nil {
				writeErr = err
			}
			slog.Info(manifest.Format(res.Digest, res.Job.Path))
		},
	}

	out, runErr := r.Run(ctx, walker.Walk(walker.Options{
		Root:          root,
		IncludeHidden: cmd.Bool("hidden"),
		StripPrefix:   !cmd.Bool("no-strip-prefix"),
		ExcludePath:   absOut,
	}))

	flushErr := w.Flush()
	closeErr := f.Close()
	stats.Stop()
	if bar != nil {
		bar.Close()
	}

	if runErr != nil {
		return cli.Exit(runErr, exitUsage)
	}
	if writeErr != nil {
		return cli.Exit(fmt.Errorf("write manifest: %w", writeErr), exitUsage)
	}
	if flushErr != nil {
		return cli.Exit(fmt.Errorf("write manifest: %w", flushErr), exitUsage)
	}
	if closeErr != nil {
		return cli.Exit(fmt.Errorf("write manifest: %w", closeErr), exitUsage)
	}
	if ctx.Err() != nil {
		return cli.Exit("interrupted", 1)
	}

	summarize(stats, out, absOut)

	if out.FailCount() > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d files could not be hashed", out.FailCount(), out.Total), exitChecksum)
	}
	return nil
}

// countBytes fans hashed byte counts out to the stats and, when enabled, the
// progress bar. Called from worker goroutines.
func countBytes(stats *metrics.Stats, bar *progress.Bar) func(int64) {
	return func(n int64) {
		stats.AddBytes(n)
		if bar != nil {
			bar.AddBytes(n)
		}
	}
}

func statsSnapshot(stats *metrics.Stats) progress.SnapshotFn {
	return func() (processed, ok, failed, bytesHashed int64) {
		snap := stats.Snapshot()
		return snap.Processed, snap.OK, snap.FailCount(), snap.BytesHashed
	}
}

func summarize(stats *metrics.Stats, out *runner.Outcome, artifact string) {
	slog.Info("done",
		"took", stats.Duration().Round(time.Millisecond).String(),
		"files", out.Total,
		"ok", out.OK,
		"failed", out.FailCount(),
		"artifact", artifact)
	if slog.Default().Enabled(context.Background(), slog.LevelInfo) {
		metrics.Print(os.Stderr, stats)
	}
}
