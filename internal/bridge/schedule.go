package bridge

import (
	"context"
	"time"
)

// ScheduleRefetch batches bursts of push notifications into one refetch.
// The first call schedules the refetch after a short delay; calls landing
// while one is pending are absorbed by it.
func (b *Bridge) ScheduleRefetch(ctx context.Context) {
	b.mu.Lock()
	b.pendingRefetches++
	if b.pendingRefetches > 1 {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	time.AfterFunc(b.settings.RefetchDelay, func() {
		b.mu.Lock()
		absorbed := b.pendingRefetches - 1
		b.pendingRefetches = 0
		b.mu.Unlock()

		if absorbed > 0 {
			b.logger.Debugw("coalesced push notifications into one refetch", "absorbed", absorbed)
		}

		if err := b.refetch.Refetch(ctx); err != nil {
			b.logger.Errorw("refetch after push notifications failed", "err", err)
			return
		}

		b.notifier.ItemsChanged()
	})
}
