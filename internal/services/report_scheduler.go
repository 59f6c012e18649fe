package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finmodel/internal/log"
	"finmodel/internal/source"
	"finmodel/internal/sink"
)

// ReportSchedulerConfig holds configuration for the report scheduler
type ReportSchedulerConfig struct {
	// Interval is how often the model is rebuilt and published (default: 1h)
	Interval time.Duration
}

// DefaultReportSchedulerConfig returns sensible defaults
func DefaultReportSchedulerConfig() ReportSchedulerConfig {
	return ReportSchedulerConfig{Interval: time.Hour}
}

// ReportScheduler regenerates and publishes a report on a fixed interval.
// Every tick rebuilds the model from a fresh read of the source.
type ReportScheduler struct {
	service *ReportService
	source  source.TransactionSource
	sink    sink.ReportSink
	config  ReportSchedulerConfig
	logger  *log.Logger

	// Lifecycle management
	mu      sync.Mutex
	running  bool
	runs     int
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce *sync.Once
}

func NewReportScheduler(service *ReportService, src source.TransactionSource, out sink.ReportSink, config ReportSchedulerConfig) *ReportScheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultReportSchedulerConfig().Interval
	}
	logger := log.New(log.DefaultConfig())
	if service != nil {
		logger = service.logger
	}
	return &ReportScheduler{
		service: service,
		source:  src,
		sink:    out,
		config:  config,
		logger:  logger,
	}
}

// Start begins the scheduling loop. Returns an error if already running.
func (p *ReportScheduler) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("report scheduler is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.stopOnce = new(sync.Once)
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	go p.runLoop(ctx, stopCh, doneCh)

	p.logger.InfoContext(ctx, "Report scheduler started", "interval", p.config.Interval)
	return nil
}

// Stop signals the loop and waits for the current run. It is safe to call
// again after a timeout or concurrently.
func (p *ReportScheduler) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh, stopOnce := p.stopCh, p.doneCh, p.stopOnce
	p.mu.Unlock()

	stopOnce.Do(func() { close(stopCh) })

	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Report scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Report scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is currently running
func (p *ReportScheduler) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Runs returns how many runs have completed, successful or not.
func (p *ReportScheduler) Runs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}

// runLoop clears running before signalling done, whether it was stopped or
// its context ended.
func (p *ReportScheduler) runLoop(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(doneCh)
	}()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Run immediately on startup
	p.runOnce(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *ReportScheduler) runOnce(ctx context.Context) {
	if p.service != nil {
		if _, err := p.service.Run(ctx, p.source, p.sink); err != nil {
			p.logger.ErrorContext(ctx, "Scheduled report run failed",
				log.NewFields().WithOperation(log.OpGenerate).WithError(err, ErrorTypeFor(err)).ToSlice()...)
		}
	}
	p.mu.Lock()
	p.runs++
	p.mu.Unlock()
}
