package integration

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/storebridge/backend/internal/domain/integration"
)

// EntitySyncer pushes a single entity identified by its storefront id.
type EntitySyncer func(ctx context.Context, id int64) integration.SyncResult

// MemoryGuard stops long batch runs before they exhaust the process heap.
type MemoryGuard struct {
	// ThresholdPercent is the allowed share of LimitBytes, 1..100
	ThresholdPercent int
	// LimitBytes is the soft heap budget
	LimitBytes uint64
	// readMem is swapped in tests
	readMem func() uint64
}

// NewMemoryGuard creates a guard with the given threshold and limit in MB.
func NewMemoryGuard(thresholdPercent int, limitMB int) *MemoryGuard {
	return &MemoryGuard{
		ThresholdPercent: thresholdPercent,
		LimitBytes:       uint64(limitMB) * 1024 * 1024,
		readMem: func() uint64 {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			return m.HeapAlloc
		},
	}
}

// OK reports whether the heap is still under the budget.
func (g *MemoryGuard) OK() bool {
	if g == nil || g.LimitBytes == 0 || g.ThresholdPercent <= 0 {
		return true
	}
	budget := g.LimitBytes / 100 * uint64(g.ThresholdPercent)
	return g.readMem() < budget
}

// BatchRunner processes explicit id lists in chunks, checking the memory
// guard between chunks. Per-entity failures never stop the run; only memory
// pressure or context cancellation do.
type BatchRunner struct {
	syncers map[integration.SyncType]EntitySyncer
	guard   *MemoryGuard
	log     *zap.Logger
}

// NewBatchRunner creates a BatchRunner over the given per-type syncers.
func NewBatchRunner(syncers map[integration.SyncType]EntitySyncer, guard *MemoryGuard, log *zap.Logger) *BatchRunner {
	return &BatchRunner{syncers: syncers, guard: guard, log: log}
}

// Process syncs the given ids of one entity type in chunks of chunkSize.
func (r *BatchRunner) Process(ctx context.Context, entityType integration.SyncType, ids []int64, chunkSize int) (integration.BatchRunReport, error) {
	report := integration.BatchRunReport{Total: len(ids)}

	syncer, ok := r.syncers[entityType]
	if !ok {
		return report, fmt.Errorf("no syncer registered for entity type %q", entityType)
	}
	if chunkSize <= 0 {
		chunkSize = 20
	}

	for start := 0; start < len(ids); start += chunkSize {
		if err := ctx.Err(); err != nil {
			report.Stopped = true
			return report, err
		}
		if !r.guard.OK() {
			report.Stopped = true
			r.log.Warn("Batch stopped on memory pressure",
				zap.String("entity_type", entityType.String()),
				zap.Int("processed", report.Processed),
				zap.Int("total", report.Total),
			)
			return report, nil
		}

		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		for _, id := range ids[start:end] {
			res := syncer(ctx, id)
			report.Processed++
			if res.Status == integration.SyncStatusError {
				report.Errors++
			}
		}
	}

	r.log.Info("Batch finished",
		zap.String("entity_type", entityType.String()),
		zap.Int("processed", report.Processed),
		zap.Int("errors", report.Errors),
	)
	return report, nil
}
