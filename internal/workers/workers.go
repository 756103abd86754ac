package workers

import (
	"os"
	"runtime"
	"strconv"
)

// mixedLoadFactor sizes the pool slightly above the core count because
// thumbnail generation alternates between CPU-heavy decode/resize work
// and disk reads/writes.
const mixedLoadFactor = 1.5

// PoolSize returns how many goroutines a thumbnail batch should use for
// the given number of jobs. The count derives from GOMAXPROCS so
// container CPU limits are respected, never exceeds jobs (when jobs is
// positive), and the THUMBNAIL_WORKERS environment variable pins it
// outright.
func PoolSize(jobs int) int {
	size := int(float64(runtime.GOMAXPROCS(0)) * mixedLoadFactor)

	if override := os.Getenv("THUMBNAIL_WORKERS"); override != "" {
		if n, err := strconv.Atoi(override); err == nil && n > 0 {
			size = n
		}
	}

	if jobs > 0 && size > jobs {
		size = jobs
	}
	if size < 1 {
		size = 1
	}
	return size
}
