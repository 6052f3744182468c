package cli

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"treesum/internal/checksum"
	"treesum/internal/walker"
)

const configName = ".treesum.yaml"

// fileConfig supplies defaults for the knobs people set once and forget.
// Discovered in the working directory, then $HOME; a flag or env var always
// wins over the file.
type fileConfig struct {
	Workers   int    `yaml:"workers"`
	ReadSize  int    `yaml:"readSize"`
	Algorithm string `yaml:"algorithm"`
}

func loadFileConfig() fileConfig {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}

	for _, dir := range dirs {
		p := filepath.Join(dir, configName)
		b, err := os.ReadFile(p) // #nosec G304
		if err != nil {
			continue
		}
		var c fileConfig
		if err := yaml.Unmarshal(b, &c); err != nil {
			slog.Warn("ignoring unreadable config file", "path", p, "error", err)
			continue
		}
		slog.Debug("loaded config file", "path", p)
		return c
	}
	return fileConfig{}
}

// settings is the resolved tuning for one run: flag > env > config file >
// built-in default.
type settings struct {
	Workers   int
	ReadSize  int
	Algorithm string
}

func resolveSettings(cmd *cli.Command) settings {
	fc := loadFileConfig()

	s := settings{
		Workers:   int(cmd.Int("workers")),
		ReadSize:  int(cmd.Int("read-size")),
		Algorithm: cmd.String("alg"),
	}
	if !cmd.IsSet("workers") && fc.Workers > 0 {
		s.Workers = fc.Workers
	}
	if !cmd.IsSet("read-size") && fc.ReadSize > 0 {
		s.ReadSize = fc.ReadSize
	}
	if !cmd.IsSet("alg") && fc.Algorithm != "" {
		s.Algorithm = fc.Algorithm
	}
	return s
}

// chunkSize resolves the read size, probing the root's filesystem block size
// when unset.
func (s settings) chunkSize(root string) int {
	if s.ReadSize > 0 {
		return s.ReadSize
	}
	size := walker.BlockSize(root)
	slog.Debug("using probed read chunk size", "bytes", size)
	return size
}

func (s settings) validate() error {
	if _, err := checksum.New(s.Algorithm); err != nil {
		return err
	}
	return nil
}
