// ABOUTME: Refresh worker reloads every stored feed on a cron schedule in the background
// ABOUTME: Keeps search results current while the search screen is open

package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rss-reader-app/core/home"
	"rss-reader-app/core/interfaces"

	"github.com/robfig/cron/v3"
)

// Refresher reloads stored feeds
type Refresher interface {
	RefreshAll(ctx context.Context) ([]home.RefreshResult, error)
}

// Summary counts the outcome of one refresh run
type Summary struct {
	Feeds  int
	Failed int
	Posts  int
}

// WorkerConfig holds configuration for the refresh worker
type WorkerConfig struct {
	// Schedule is a cron expression or descriptor such as "@every 30m"
	Schedule string

	// Timeout bounds a single run
	Timeout time.Duration
}

// DefaultWorkerConfig returns the default worker configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Schedule: "@every 30m",
		Timeout:  2 * time.Minute,
	}
}

// RefreshWorker runs RefreshAll on a schedule. A run that is still going when the
// next one is due makes the next one skip.
type RefreshWorker struct {
	refresher Refresher
	logger    interfaces.Logger
	schedule  cron.Schedule
	expr      string
	timeout   time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

// NewRefreshWorker creates a refresh worker. It fails when the schedule cannot be parsed.
func NewRefreshWorker(refresher Refresher, logger interfaces.Logger, config WorkerConfig) (*RefreshWorker, error) {
	defaults := DefaultWorkerConfig()
	if config.Schedule == "" {
		config.Schedule = defaults.Schedule
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	schedule, err := scheduleParser.Parse(config.Schedule)
	if err != nil {
		return nil, &WorkerError{Message: fmt.Sprintf("invalid refresh schedule %q: %v", config.Schedule, err)}
	}

	return &RefreshWorker{
		refresher: refresher,
		logger:    logger,
		schedule:  schedule,
		expr:      config.Schedule,
		timeout:   config.Timeout,
	}, nil
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Start schedules refresh runs. Runs inherit ctx values such as feature flags and
// stop when ctx is cancelled.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{w.logger})))
	c.Schedule(w.schedule, cron.FuncJob(func() {
		_, _ = w.RunOnce(runCtx)
	}))
	c.Start()

	w.cron = c
	w.cancel = cancel
	w.running = true

	w.info("Refresh worker started", map[string]interface{}{
		"schedule": w.expr,
	})
	return nil
}

// Stop cancels a run in progress and waits for it to return
func (w *RefreshWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return ErrWorkerNotRunning
	}
	c, cancel := w.cron, w.cancel
	w.running = false
	w.cron, w.cancel = nil, nil
	w.mu.Unlock()

	cancel()
	<-c.Stop().Done()

	w.info("Refresh worker stopped", nil)
	return nil
}

// Running reports whether the schedule is active
func (w *RefreshWorker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunOnce refreshes every feed now, bounded by the worker timeout
func (w *RefreshWorker) RunOnce(ctx context.Context) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	results, err := w.refresher.RefreshAll(ctx)
	if err != nil {
		w.logError("Refresh run failed", map[string]interface{}{
			"error": err.Error(),
		})
		return Summary{}, err
	}

	summary := Summary{Feeds: len(results)}
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			continue
		}
		summary.Posts += r.Posts
	}

	w.info("Refresh run completed", map[string]interface{}{
		"feeds":       summary.Feeds,
		"failed":      summary.Failed,
		"posts":       summary.Posts,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return summary, nil
}

func (w *RefreshWorker) info(msg string, fields map[string]interface{}) {
	if w.logger != nil {
		w.logger.Info(msg, fields)
	}
}

func (w *RefreshWorker) logError(msg string, fields map[string]interface{}) {
	if w.logger != nil {
		w.logger.Error(msg, fields)
	}
}

// cronLogger adapts the reader logger to cron's key/value logger
type cronLogger struct {
	logger interfaces.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(msg, toFields(keysAndValues))
	}
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		fields := toFields(keysAndValues)
		fields["error"] = err.Error()
		l.logger.Error(msg, fields)
	}
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

// Error definitions
var (
	ErrWorkerNotRunning = &WorkerError{Message: "refresh worker is not running"}
)

// WorkerError represents a worker-specific error
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}
