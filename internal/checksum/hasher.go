package checksum

import (
	"crypto/md5"  // #nosec G501 -- used for file integrity checksums only
	"crypto/sha1" // #nosec G505 -- used for file integrity checksums only
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// DefaultChunkSize is used when a caller passes a chunk size < 1.
const DefaultChunkSize = 8192

// progressFlushThreshold batches pending byte counts before reporting them so
// small read sizes do not turn into one callback per read.
const progressFlushThreshold = 1 << 20

func New(algorithm string) (hash.Hash, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "md5":
		return md5.New(), nil // #nosec G401 -- used for file integrity checksums only
	case "sha1":
		return sha1.New(), nil // #nosec G401 -- used for file integrity checksums only
	case "sha256":
		return sha256.New(), nil
	case "sha384":
		return sha512.New384(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported algorithm: %q", algorithm)
	}
}

// Supported reports whether algorithm names a usable digest.
func Supported(algorithm string) bool {
	_, err := New(algorithm)
	return err == nil
}

// File computes the hex digest of the file at path, reading it in chunkSize
// pieces. The chunk size changes syscall count only; any size >= 1 yields the
// same digest. onProgress, if non-nil, is called with byte counts as data is
// consumed, batched to at least progressFlushThreshold per call except for
// the final flush.
func File(path string, algorithm string, chunkSize int, onProgress func(n int64)) (string, error) {
	h, err := New(algorithm)
	if err != nil {
		return "", err
	}

	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}

	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, chunkSize)
	var pending int64
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, werr := h.Write(buf[:n]); werr != nil {
				return "", werr
			}
			if onProgress != nil {
				pending += int64(n)
				if pending >= progressFlushThreshold {
					onProgress(pending)
					pending = 0
				}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return "", rerr
		}
	}
	if onProgress != nil && pending > 0 {
		onProgress(pending)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
