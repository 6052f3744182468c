package manifest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Separator is the two-space gap between digest and path, the convention the
// single-threaded md5sum/sha*sum family reads and writes.
const Separator = "  "

// Extensions that mark a file as a probable manifest; such files are skipped
// when hashing a tree so a manifest never lists itself or an older sibling.
var Extensions = []string{".md5", ".md5sum"}

func IsManifestName(name string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Format renders one manifest line, without the trailing newline.
func Format(digest, path string) string {
	return digest + Separator + path
}

// ParseLine splits a manifest line into digest and path. It rejects lines that
// do not have the two-field shape or whose digest is not plausible hex; the
// caller decides what a bad line costs the run.
func ParseLine(line string) (digest, path string, err error) {
	i := strings.Index(line, Separator)
	if i < 0 {
		return "", "", fmt.Errorf("manifest line has no %q separator", Separator)
	}

	digest = line[:i]
	path = line[i+len(Separator):]

	if path == "" {
		return "", "", fmt.Errorf("manifest line has empty path")
	}
	if err := checkDigest(digest); err != nil {
		return "", "", err
	}

	return strings.ToLower(digest), path, nil
}

func checkDigest(digest string) error {
	// hex lengths of md5, sha1, sha256, sha384, sha512
	switch len(digest) {
	case 32, 40, 64, 96, 128:
	default:
		return fmt.Errorf("digest has unexpected length %d", len(digest))
	}
	for _, c := range digest {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return fmt.Errorf("digest contains non-hex character %q", c)
		}
	}
	return nil
}

// Writer appends manifest lines to w. Lines arrive in whatever order the
// workers finish; the format carries no ordering, so none is imposed. Add is
// safe for one writer goroutine; the mutex covers the Flush-while-adding case
// in tests.
type Writer struct {
	mu sync.Mutex
	bw *bufio.Writer
	n  int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

func (w *Writer) Add(digest, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.bw.WriteString(Format(digest, path)); err != nil {
		return err
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		return err
	}
	w.n++
	return nil
}

// Lines reports how many entries have been added.
func (w *Writer) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bw.Flush()
}
