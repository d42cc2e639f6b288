package gcal

import (
	"context"
	"time"

	"github.com/gsyncapp/gsync/internal/metrics"
)

func observeRemote(ctx context.Context, operation string) func() {
	start := time.Now()
	return func() {
		metrics.ObserveRemoteLatency(ctx, operation, start)
	}
}
