package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Pass is one provider's detection pass.
type Pass interface {
	Name() string
	Run(ctx context.Context) error
}

// PassFunc adapts a function to Pass.
type PassFunc struct {
	ID string
	Fn func(ctx context.Context) error
}

func (p PassFunc) Name() string { return p.ID }
func (p PassFunc) Run(ctx context.Context) error { return p.Fn(ctx) }

// ErrorHandler receives the error of a failed pass.
type ErrorHandler func(name string, err error)

// Config holds poller configuration.
type Config struct {
	Interval    time.Duration // Time between cycles (default: 5m)
	Concurrency int           // Max passes running at once (default: 1)
	Timeout     time.Duration // Per-pass timeout (default: 5m)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    5 * time.Minute,
		Concurrency: 1,
		Timeout:     5 * time.Minute,
	}
}

// Poller periodically runs a set of passes.
type Poller struct {
	cfg     Config
	passes  []Pass
	onError ErrorHandler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller. A nil onError logs failures.
func New(cfg Config, passes []Pass, onError ErrorHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if onError == nil {
		onError = func(name string, err error) {
			logger.Error("pass failed", "pass", name, "error", err)
		}
	}
	return &Poller{
		cfg:     cfg,
		passes:  passes,
		onError: onError,
		logger:  logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("poller started",
		"interval", p.cfg.Interval,
		"passes", len(p.passes),
		"concurrency", p.cfg.Concurrency,
	)

	return nil
}

// Stop cancels the loop and waits for running passes to return.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.pollAll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.pollAll()
		}
	}
}

// pollAll runs every pass once, bounded by Concurrency.
func (p *Poller) pollAll() {
	start := time.Now()

	sem := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup
	var succeeded, failed atomic.Int64

	for _, pass := range p.passes {
		wg.Add(1)
		go func(pass Pass) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-p.ctx.Done():
				return
			}

			if err := p.runPass(pass); err != nil {
				p.onError(pass.Name(), err)
				failed.Add(1)
				return
			}
			succeeded.Add(1)
		}(pass)
	}

	wg.Wait()

	p.logger.Info("poll cycle complete",
		"passes", len(p.passes),
		"succeeded", succeeded.Load(),
		"failed", failed.Load(),
		"duration", time.Since(start),
	)
}

func (p *Poller) runPass(pass Pass) error {
	ctx := p.ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(p.ctx, p.cfg.Timeout)
		defer cancel()
	}
	return pass.Run(ctx)
}
