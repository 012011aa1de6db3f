package cache

import (
	"time"

	"go.uber.org/zap"
)

// refreshWindow is how close to expiry an entry must be before the
// background refresher refetches it.
const refreshWindow = 30 * time.Second

// refreshLoop runs the periodic background refresh until the cache is
// stopped.
func (c *Cache) refreshLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.refreshExpiring()
		}
	}
}

// refreshExpiring refetches cache entries that are within refreshWindow of
// expiry. Entries keyed by a subject identifier are skipped: the identifier
// space is unbounded, and refresh cost must stay proportional to distinct
// flags. A key's refresh failure leaves its entry stale and never aborts
// the cycle.
func (c *Cache) refreshExpiring() {
	if !c.refreshInProgress.CompareAndSwap(false, true) {
		c.logger.Debug("refresh cycle still running, skipping tick")
		return
	}
	defer c.refreshInProgress.Store(false)

	start := time.Now()

	// Snapshot keys under lock, then do all network I/O without it.
	keys := c.store.Keys()

	now := time.Now()
	refreshed, failed := 0, 0

	for _, key := range keys {
		if key.HasTarget() {
			continue
		}

		entry, ok := c.store.Peek(key)
		if !ok || entry.ExpiresAt.Sub(now) > refreshWindow {
			continue
		}

		select {
		case <-c.ctx.Done():
			return
		default:
		}

		value, err := c.client.FetchFlag(c.ctx, key.FlagKey, "")
		if err != nil {
			failed++
			c.logger.Debug("refresh fetch failed, keeping stale entry",
				zap.String("flag", key.FlagKey),
				zap.Error(err))
			continue
		}

		c.store.Refresh(key, value)
		refreshed++
	}

	c.telemetry.RecordRefresh(c.ctx, failed == 0, time.Since(start), refreshed)

	if refreshed > 0 || failed > 0 {
		c.logger.Info("background refresh cycle finished",
			zap.Int("refreshed", refreshed),
			zap.Int("failed", failed),
			zap.Duration("took", time.Since(start)))
	}
}
