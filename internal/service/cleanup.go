package service

import (
	"context"
	"log"
	"sync"
	"time"

	"concerthub-api/internal/kvstore"
)

// CleanupConfig holds configuration for the cleanup scheduler.
type CleanupConfig struct {
	// CleanupInterval is how often expired sessions are swept.
	// Default: 10 minutes
	CleanupInterval time.Duration

	// InitialDelay postpones the first sweep after Start.
	InitialDelay time.Duration

	// Timeout bounds one sweep.
	Timeout time.Duration
}

// DefaultCleanupConfig returns default cleanup configuration.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		CleanupInterval: 10 * time.Minute,
		InitialDelay:    1 * time.Minute,
		Timeout:         1 * time.Minute,
	}
}

// CleanupScheduler periodically removes expired session rows from
// backends that do not expire keys on their own.
type CleanupScheduler struct {
	sweeper   kvstore.Sweeper
	config    CleanupConfig
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewCleanupScheduler creates a new cleanup scheduler.
func NewCleanupScheduler(sweeper kvstore.Sweeper, config CleanupConfig) *CleanupScheduler {
	def := DefaultCleanupConfig()
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if config.InitialDelay < 0 {
		config.InitialDelay = def.InitialDelay
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}

	return &CleanupScheduler{
		sweeper: sweeper,
		config:  config,
		stopCh:  make(chan struct{}),
	}
}

// Start begins the cleanup scheduler.
func (s *CleanupScheduler) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.config.CleanupInterval)
	s.mu.Unlock()

	log.Printf("[CleanupScheduler] Started - Interval: %v", s.config.CleanupInterval)

	go func() {
		select {
		case <-time.After(s.config.InitialDelay):
			s.runCleanup()
		case <-s.stopCh:
		}
	}()

	go s.run()
}

// run is the main cleanup loop.
func (s *CleanupScheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.runCleanup()
		case <-s.stopCh:
			log.Printf("[CleanupScheduler] Stopped")
			return
		}
	}
}

// runCleanup performs the actual cleanup.
func (s *CleanupScheduler) runCleanup() {
	deleted, err := s.RunNow()
	if err != nil {
		log.Printf("[CleanupScheduler] Error during cleanup: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("[CleanupScheduler] Removed %d expired keys", deleted)
	}
}

// Stop stops the cleanup scheduler.
func (s *CleanupScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
	})
}

// RunNow triggers an immediate cleanup run.
func (s *CleanupScheduler) RunNow() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	return s.sweeper.DeleteExpired(ctx)
}
