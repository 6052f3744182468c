package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"treesum/internal/manifest"
	"treesum/internal/metrics"
	"treesum/internal/progress"
	"treesum/internal/runner"
	"treesum/internal/walker"
)

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Verify a directory against a checksum manifest",
		ArgsUsage: "<directory>",
		Description: `Read a "<digest>  <path>" manifest and re-hash every listed file under the
given directory. By default the run aborts on the first failure; with
--continue-on-error every file is checked and all failures are reported
before the process exits non-zero. A file listed in the manifest but absent
on disk is reported as missing, distinct from a read error.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "manifest",
				Aliases:  []string{"m"},
				Usage:    "Manifest file to verify against",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "continue-on-error",
				Aliases: []string{"k"},
				Usage:   "Keep checking after a failure and report everything at the end",
			},
			algFlag(),
			workersFlag(),
			readSizeFlag(),
			progressFlag(),
		},
		Action: runVerify,
	}
}

func runVerify(ctx context.Context, cmd *cli.Command) error {
	root, err := rootArg(cmd)
	if err != nil {
		return cli.Exit(err, exitUsage)
	}

	manifestPath, err := filepath.Abs(cmd.String("manifest"))
	if err != nil {
		return cli.Exit(fmt.Errorf("resolve manifest path: %w", err), exitUsage)
	}
	if _, err := os.Stat(manifestPath); err != nil {
		return cli.Exit(fmt.Errorf("stat manifest: %w", err), exitUsage)
	}

	cfg := resolveSettings(cmd)
	if err := cfg.validate(); err != nil {
		return cli.Exit(err, exitUsage)
	}
	chunk := cfg.chunkSize(root)
	keepGoing := cmd.Bool("continue-on-error")

	slog.Info("verifying directory", "root", root, "manifest", manifestPath,
		"alg", cfg.Algorithm, "workers", cfg.Workers, "readSize", chunk,
		"continueOnError", keepGoing)

	stats := &metrics.Stats{}
	stats.Start()

	var bar *progress.Bar
	if cmd.Bool("progress") {
		bar = progress.New(-1, "verifying", statsSnapshot(stats))
	}

	r := &runner.Runner{
		Workers:         cfg.Workers,
		QueueSize:       cfg.Workers * verifyQueueFactor,
		ContinueOnError: keepGoing,
		Executor: &runner.HashExecutor{
			Algorithm: cfg.Algorithm,
			ChunkSize: chunk,
			OnBytes:   countBytes(stats, bar),
		},
		OnResult: func(res runner.Result) {
			stats.Record(res)
			if res.Status == runner.StatusOK {
				slog.Info(res.Job.Path + ": OK")
				return
			}
			// Failures go straight to stderr so they are visible as
			// they happen, whatever the log level.
			if res.Status == runner.StatusMismatch {
				fmt.Fprintf(os.Stderr, "%s: FAILED (expected=%s computed=%s)\n",
					res.Job.Path, res.Job.Expected, res.Digest)
				return
			}
			fmt.Fprintf(os.Stderr, "%s: FAILED (%s: %v)\n",
				res.Job.Path, res.Status.String(), res.Err)
		},
	}

	out, runErr := r.Run(ctx, manifest.Jobs(manifestPath, root))

	stats.Stop()
	if bar != nil {
		bar.Close()
	}

	if runErr != nil {
		return cli.Exit(runErr, exitUsage)
	}
	if ctx.Err() != nil {
		return cli.Exit("interrupted", 1)
	}

	summarize(stats, out, manifestPath)
	warnCountDrift(root, manifestPath, out)

	if out.FailCount() > 0 {
		return cli.Exit(fmt.Sprintf("checksum validation failed: %d of %d entries", out.FailCount(), out.Total), exitChecksum)
	}
	return nil
}

// warnCountDrift flags the divergences a verify run can otherwise carry
// silently: the manifest listing more entries than were processed, or the
// tree holding a different number of files than the manifest describes. Extra
// files on disk are not failures, but the operator should hear about them.
func warnCountDrift(root, manifestPath string, out *runner.Outcome) {
	if entries, err := manifest.CountEntries(manifestPath); err == nil && entries != out.Total {
		slog.Warn("processed entry count differs from manifest",
			"entries", entries, "processed", out.Total)
	}
	if onDisk, err := walker.CountFiles(root); err == nil && onDisk != out.Total {
		slog.Warn("file count on disk differs from manifest",
			"onDisk", onDisk, "entries", out.Total)
	}
}
