package dupes

import (
	"context"
	"sync/atomic"
	"time"
)

// ProgressFunc receives the number of files and bytes processed so far.
type ProgressFunc func(files int64, bytes uint64)

// counter tracks progress of a stage and is safe for concurrent use.
type counter struct {
	files atomic.Int64
	bytes atomic.Uint64
}

func (c *counter) add(size uint64) {
	c.files.Add(1)
	c.bytes.Add(size)
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
func startProgressReporter(ctx context.Context, c *counter, hook ProgressFunc, interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.files.Load(), c.bytes.Load())
			case <-ctx.Done():
				return
			}
		}
	}()
}
