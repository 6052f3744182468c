package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"treesum/internal/logging"
)

// Exit codes. 42 is reserved for "one or more files failed their checksum" so
// scripts can tell a bad tree from a bad invocation.
const (
	exitUsage    = 2
	exitChecksum = 42
)

const (
	defaultWorkers = 5
	// Queue factors bound how far the enumerator can run ahead of the
	// workers. Create walks the filesystem and benefits from a deeper
	// backlog; verify reads a manifest, which is cheap to resume.
	createQueueFactor = 20
	verifyQueueFactor = 4
)

func Root(version string) *cli.Command {
	return &cli.Command{
		Name:    "treesum",
		Usage:   "Parallel checksum manifests for directory trees",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Turn on verbose logging",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Turn on debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.Setup(cmd.Bool("verbose"), cmd.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			createCmd(),
			verifyCmd(),
		},
	}
}

func workersFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "workers",
		Aliases: []string{"w"},
		Usage:   "Number of concurrent hash workers",
		Sources: cli.EnvVars("TREESUM_WORKERS"),
		Value:   defaultWorkers,
	}
}

func readSizeFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "read-size",
		Aliases: []string{"r"},
		Usage:   "File read chunk size in bytes; 0 probes the filesystem block size",
		Sources: cli.EnvVars("TREESUM_READ_SIZE"),
	}
}

func algFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "alg",
		Usage:   "Digest algorithm (md5, sha1, sha256, sha384, sha512)",
		Sources: cli.EnvVars("TREESUM_ALG"),
		Value:   "md5",
	}
}

func progressFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "progress",
		Usage: "Show a live progress bar on stderr",
	}
}

// rootArg validates the single positional directory argument shared by both
// subcommands.
func rootArg(cmd *cli.Command) (string, error) {
	root := cmd.Args().First()
	if root == "" {
		return "", fmt.Errorf("missing directory argument")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat %q: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%q is not a directory", abs)
	}
	return abs, nil
}
