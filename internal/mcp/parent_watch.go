package mcp

import (
	"context"
	"os"
	"time"

	"doitip/internal/logging"
)

// DefaultParentPollInterval is how often WatchParent checks the parent PID.
var DefaultParentPollInterval = 2 * time.Second

// WatchParent calls cancelFn once the parent process goes away, so a server
// started by an editor does not outlive it. It must not read stdin: the
// stdio transport owns it. The goroutine exits when ctx is canceled.
func WatchParent(ctx context.Context, cancelFn context.CancelFunc) {
	ppid := os.Getppid()
	logger := logging.New("mcp")
	go func() {
		ticker := time.NewTicker(DefaultParentPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if os.Getppid() != ppid {
					logger.Warn("parent process exited, shutting down", "ppid", ppid)
					cancelFn()
					return
				}
			}
		}
	}()
}
