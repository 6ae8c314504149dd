package monitoring

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// GoroutineMonitor samples the goroutine count of a long running process
// and warns when it passes a threshold
type GoroutineMonitor struct {
	mu             sync.RWMutex
	logger         zerolog.Logger
	baseline       int
	current        int
	peak           int
	checkInterval  time.Duration
	alertThreshold int
	lastAlert      time.Time
	alertCooldown  time.Duration
	stopOnce       sync.Once
	stopChan       chan struct{}
	sample         func() int
}

// Options tune a GoroutineMonitor; zero values select the defaults
type Options struct {
	CheckInterval  time.Duration
	AlertThreshold int
	AlertCooldown  time.Duration
}

// NewGoroutineMonitor creates a new goroutine monitor
func NewGoroutineMonitor(logger zerolog.Logger, opts Options) *GoroutineMonitor {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 30 * time.Second
	}
	if opts.AlertThreshold <= 0 {
		opts.AlertThreshold = 1000
	}
	if opts.AlertCooldown <= 0 {
		opts.AlertCooldown = 5 * time.Minute
	}
	baseline := runtime.NumGoroutine()
	return &GoroutineMonitor{
		logger:         logger.With().Str("component", "goroutine_monitor").Logger(),
		baseline:       baseline,
		current:        baseline,
		peak:           baseline,
		checkInterval:  opts.CheckInterval,
		alertThreshold: opts.AlertThreshold,
		alertCooldown:  opts.AlertCooldown,
		stopChan:       make(chan struct{}),
		sample:         runtime.NumGoroutine,
	}
}

// Start begins monitoring goroutines
func (gm *GoroutineMonitor) Start() {
	go gm.monitor()
	gm.logger.Info().
		Int("baseline", gm.baseline).
		Dur("interval", gm.checkInterval).
		Msg("Started goroutine monitoring")
}

// Stop stops the monitor; calling it again is a no-op
func (gm *GoroutineMonitor) Stop() {
	gm.stopOnce.Do(func() { close(gm.stopChan) })
}

func (gm *GoroutineMonitor) monitor() {
	ticker := time.NewTicker(gm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gm.Check()
		case <-gm.stopChan:
			return
		}
	}
}

// Check samples the goroutine count once and reports whether it alerted
func (gm *GoroutineMonitor) Check() bool {
	current := gm.sample()

	gm.mu.Lock()
	gm.current = current
	if current > gm.peak {
		gm.peak = current
	}
	growth := current - gm.baseline
	growthRate := 0.0
	if gm.baseline > 0 {
		growthRate = float64(growth) / float64(gm.baseline) * 100
	}
	shouldAlert := current > gm.alertThreshold &&
		time.Since(gm.lastAlert) > gm.alertCooldown
	if shouldAlert {
		gm.lastAlert = time.Now()
	}
	peak := gm.peak
	gm.mu.Unlock()

	gm.logger.Debug().
		Int("current", current).
		Int("baseline", gm.baseline).
		Int("peak", peak).
		Float64("growth_rate", growthRate).
		Msg("Goroutine metrics")

	if shouldAlert {
		gm.logger.Warn().
			Int("current", current).
			Int("threshold", gm.alertThreshold).
			Float64("growth_rate", growthRate).
			Msg("High goroutine count detected - possible leak")
	}
	return shouldAlert
}

// GetMetrics returns current goroutine metrics
func (gm *GoroutineMonitor) GetMetrics() GoroutineMetrics {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	return GoroutineMetrics{
		Current:  gm.current,
		Baseline: gm.baseline,
		Peak:     gm.peak,
		Growth:   gm.current - gm.baseline,
	}
}

// GoroutineMetrics contains goroutine statistics
type GoroutineMetrics struct {
	Current  int `json:"current"`
	Baseline int `json:"baseline"`
	Peak     int `json:"peak"`
	Growth   int `json:"growth"`
}
