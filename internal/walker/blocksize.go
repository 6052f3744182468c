package walker

import "golang.org/x/sys/unix"

const fallbackBlockSize = 1024

// BlockSize probes the filesystem block size of path, the best default read
// size when the caller did not pick one. Falls back to 1024 when the stat
// fails.
func BlockSize(path string) int {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil || st.Blksize <= 0 {
		return fallbackBlockSize
	}
	return int(st.Blksize)
}
