package walker

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"treesum/internal/manifest"
	"treesum/internal/runner"
)

// Options controls tree enumeration for a create run.
type Options struct {
	Root          string
	IncludeHidden bool
	// StripPrefix emits bare root-relative paths; when false each path
	// carries a leading "./" so the manifest matches md5sum -c expectations
	// for tools that record it.
	StripPrefix bool
	// ExcludePath is the absolute path of the manifest being written, so a
	// run never hashes its own output.
	ExcludePath string
}

// Walk returns a lazy producer over the tree at opts.Root. Files are emitted
// as they are discovered; the tree is never materialized. Traversal order is
// not stable and nothing downstream may rely on it. Unreadable entries become
// pre-failed jobs rather than aborting the walk.
func Walk(opts Options) runner.Producer {
	return func(ctx context.Context, jobs chan<- runner.Job) error {
		root := filepath.Clean(opts.Root)

		send := func(job runner.Job) error {
			select {
			case jobs <- job:
				return nil
			case <-ctx.Done():
				return fs.SkipAll
			}
		}

		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				rel, rerr := filepath.Rel(root, path)
				if rerr != nil {
					rel = path
				}
				return send(runner.Job{Path: prefix(rel, opts.StripPrefix), Mode: runner.ModeCreate, Err: err})
			}

			name := d.Name()
			hidden := strings.HasPrefix(name, ".") && path != root

			if d.IsDir() {
				if hidden && !opts.IncludeHidden {
					slog.Debug("skipping hidden directory", "path", path)
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if hidden && !opts.IncludeHidden {
				slog.Debug("skipping hidden file", "path", path)
				return nil
			}
			if manifest.IsManifestName(name) {
				slog.Warn("skipping probable manifest file", "path", path)
				return nil
			}
			if opts.ExcludePath != "" && path == opts.ExcludePath {
				return nil
			}

			rel, rerr := filepath.Rel(root, path)
			if rerr != nil {
				return send(runner.Job{Path: prefix(path, opts.StripPrefix), Mode: runner.ModeCreate, Err: rerr})
			}

			return send(runner.Job{
				Path:    prefix(rel, opts.StripPrefix),
				AbsPath: path,
				Mode:    runner.ModeCreate,
			})
		})
	}
}

// CountFiles counts the regular files under root, hidden files and manifests
// included. Verify runs use it to spot drift between a manifest and the tree
// it describes; unreadable subtrees are skipped rather than failing the count.
func CountFiles(root string) (int, error) {
	n := 0
	err := filepath.WalkDir(filepath.Clean(root), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == filepath.Clean(root) {
				return err
			}
			return nil
		}
		if d.Type().IsRegular() {
			n++
		}
		return nil
	})
	return n, err
}

func prefix(rel string, strip bool) string {
	if strip {
		return rel
	}
	return "./" + rel
}
