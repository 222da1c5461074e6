package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storebridge/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Run records
// ---------------------------------------------------------------------------

// RunStatus is the outcome of one scheduled pass.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusPartial RunStatus = "PARTIAL"
	RunStatusFailed  RunStatus = "FAILED"
	RunStatusSkipped RunStatus = "SKIPPED"
)

// Run is one completed scheduled pass, kept for monitoring.
type Run struct {
	ID          uuid.UUID
	Task        string
	Status      RunStatus
	Error       string
	StartedAt   time.Time
	CompletedAt time.Time

	Total   int
	Synced  int
	Failed  int
	Skipped int
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// BulkSyncer runs a full sweep of one entity type.
type BulkSyncer func(ctx context.Context) (integration.BatchResult, error)

// ConnectionProber re-probes the remote connection.
type ConnectionProber interface {
	Check(ctx context.Context) (bool, error)
	IsValid(ctx context.Context) bool
}

// CacheRefresher repopulates the reference data cache.
type CacheRefresher interface {
	Refresh(ctx context.Context) error
}

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

// Config holds the scheduled task intervals. A zero interval disables the
// corresponding task.
type Config struct {
	Enabled bool
	// InventoryInterval is how often stock and prices are reconciled
	InventoryInterval time.Duration
	// OrderInterval is how often pending orders are swept
	OrderInterval time.Duration
	// CustomerInterval is how often customers are swept
	CustomerInterval time.Duration
	// ConnectionCheckInterval is how often the remote is probed
	ConnectionCheckInterval time.Duration
	// CacheRefreshInterval is how often reference data is repopulated
	CacheRefreshInterval time.Duration
	// TaskTimeout bounds a single pass
	TaskTimeout time.Duration
}

// DefaultConfig returns the default scheduling intervals.
func DefaultConfig() Config {
	return Config{
		Enabled:                 true,
		InventoryInterval:       15 * time.Minute,
		OrderInterval:           5 * time.Minute,
		CustomerInterval:        30 * time.Minute,
		ConnectionCheckInterval: time.Hour,
		CacheRefreshInterval:    24 * time.Hour,
		TaskTimeout:             10 * time.Minute,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.TaskTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.InventoryInterval < 0 || c.OrderInterval < 0 || c.CustomerInterval < 0 ||
		c.ConnectionCheckInterval < 0 || c.CacheRefreshInterval < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// SyncScheduler
// ---------------------------------------------------------------------------

// SyncScheduler runs the recurring sync tasks on fixed intervals. Sync
// sweeps are gated on the connection probe so a dead remote does not burn
// a request per entity.
type SyncScheduler struct {
	config  Config
	prober  ConnectionProber
	cache   CacheRefresher
	syncers map[string]BulkSyncer
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	historyMu  sync.RWMutex
	history    []*Run
	maxHistory int
}

// NewSyncScheduler creates a scheduler over the given sweeps. The syncers
// map keys name the tasks: "orders", "customers", "inventory".
func NewSyncScheduler(config Config, prober ConnectionProber, cache CacheRefresher, syncers map[string]BulkSyncer, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SyncScheduler{
		config:     config,
		prober:     prober,
		cache:      cache,
		syncers:    syncers,
		logger:     logger,
		history:    make([]*Run, 0, 100),
		maxHistory: 100,
	}, nil
}

// Start launches the ticker loops.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	tasks := []struct {
		name     string
		interval time.Duration
		run      func(ctx context.Context)
	}{
		{"orders", s.config.OrderInterval, func(ctx context.Context) { s.runSweep(ctx, "orders") }},
		{"customers", s.config.CustomerInterval, func(ctx context.Context) { s.runSweep(ctx, "customers") }},
		{"inventory", s.config.InventoryInterval, func(ctx context.Context) { s.runSweep(ctx, "inventory") }},
		{"connection_check", s.config.ConnectionCheckInterval, s.runConnectionCheck},
		{"cache_refresh", s.config.CacheRefreshInterval, s.runCacheRefresh},
	}

	started := 0
	for _, task := range tasks {
		if task.interval <= 0 {
			continue
		}
		started++
		s.wg.Add(1)
		go s.loop(ctx, task.name, task.interval, task.run)
	}

	s.logger.Info("Sync scheduler started", zap.Int("tasks", started))
	return nil
}

// Stop stops the loops and waits for in-flight passes.
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *SyncScheduler) loop(ctx context.Context, name string, interval time.Duration, run func(ctx context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Debug("Scheduler loop started",
		zap.String("task", name),
		zap.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Scheduler loop stopping", zap.String("task", name))
			return
		case <-ticker.C:
			taskCtx, cancel := context.WithTimeout(ctx, s.config.TaskTimeout)
			run(taskCtx)
			cancel()
		}
	}
}

// RunNow executes one named sweep immediately, outside its schedule.
func (s *SyncScheduler) RunNow(ctx context.Context, task string) error {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running {
		return ErrSchedulerNotRunning
	}
	s.runSweep(ctx, task)
	return nil
}

func (s *SyncScheduler) runSweep(ctx context.Context, task string) {
	syncer, ok := s.syncers[task]
	if !ok {
		return
	}

	run := &Run{ID: uuid.New(), Task: task, StartedAt: time.Now()}

	if !s.prober.IsValid(ctx) {
		run.Status = RunStatusSkipped
		run.Error = "remote connection is not available"
		run.CompletedAt = time.Now()
		s.addToHistory(run)
		s.logger.Warn("Scheduled sweep skipped, remote unavailable",
			zap.String("task", task),
			zap.String("run_id", run.ID.String()),
		)
		return
	}

	batch, err := syncer(ctx)
	run.CompletedAt = time.Now()
	run.Total = batch.Total
	run.Synced = batch.Synced
	run.Failed = batch.Errors
	run.Skipped = batch.Skipped

	switch {
	case err != nil:
		run.Status = RunStatusFailed
		run.Error = err.Error()
		s.logger.Error("Scheduled sweep failed",
			zap.String("task", task),
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
	case batch.Errors > 0:
		run.Status = RunStatusPartial
	default:
		run.Status = RunStatusSuccess
	}
	s.addToHistory(run)

	if err == nil {
		s.logger.Info("Scheduled sweep completed",
			zap.String("task", task),
			zap.String("run_id", run.ID.String()),
			zap.String("status", string(run.Status)),
			zap.Int("total", run.Total),
			zap.Int("synced", run.Synced),
			zap.Int("failed", run.Failed),
			zap.Int("skipped", run.Skipped),
		)
	}
}

func (s *SyncScheduler) runConnectionCheck(ctx context.Context) {
	run := &Run{ID: uuid.New(), Task: "connection_check", StartedAt: time.Now()}

	valid, err := s.prober.Check(ctx)
	run.CompletedAt = time.Now()
	if err != nil {
		run.Error = err.Error()
	}
	if valid {
		run.Status = RunStatusSuccess
	} else {
		run.Status = RunStatusFailed
	}
	s.addToHistory(run)

	s.logger.Info("Scheduled connection check completed",
		zap.String("run_id", run.ID.String()),
		zap.Bool("valid", valid),
	)
}

func (s *SyncScheduler) runCacheRefresh(ctx context.Context) {
	if s.cache == nil {
		return
	}
	run := &Run{ID: uuid.New(), Task: "cache_refresh", StartedAt: time.Now()}

	err := s.cache.Refresh(ctx)
	run.CompletedAt = time.Now()
	if err != nil {
		run.Status = RunStatusFailed
		run.Error = err.Error()
		s.logger.Error("Scheduled cache refresh failed",
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
	} else {
		run.Status = RunStatusSuccess
		s.logger.Info("Scheduled cache refresh completed", zap.String("run_id", run.ID.String()))
	}
	s.addToHistory(run)
}

func (s *SyncScheduler) addToHistory(run *Run) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*Run{run}, s.history...)
	if len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}
}

// History returns the most recent runs, newest first.
func (s *SyncScheduler) History(limit int) []*Run {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]*Run, limit)
	copy(result, s.history[:limit])
	return result
}
