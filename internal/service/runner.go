package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sendlater/internal/biz/usecase"
)

// SweepRunner periodically invokes the delivery sweep. Optional: when
// the interval is zero the sweep runs only via its HTTP trigger.
type SweepRunner struct {
	sweepUC *usecase.SweepUsecase

	interval time.Duration
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewSweepRunner creates a new sweep runner
func NewSweepRunner(sweepUC *usecase.SweepUsecase, interval time.Duration) *SweepRunner {
	return &SweepRunner{
		sweepUC:  sweepUC,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start starts the runner
func (r *SweepRunner) Start() {
	if r.running || r.interval <= 0 {
		return
	}
	r.running = true
	r.wg.Add(1)
	go r.loop()
	fmt.Printf("[SweepRunner] Started with interval %v\n", r.interval)
}

// Stop stops the runner
func (r *SweepRunner) Stop() {
	if !r.running {
		return
	}
	r.running = false
	close(r.stopCh)
	r.wg.Wait()
	fmt.Println("[SweepRunner] Stopped")
}

func (r *SweepRunner) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runOnce()
		case <-r.stopCh:
			return
		}
	}
}

func (r *SweepRunner) runOnce() {
	ctx := context.Background()

	sent, err := r.sweepUC.Run(ctx, time.Now().UTC())
	if err != nil {
		fmt.Printf("[SweepRunner] Sweep error: %v\n", err)
		return
	}
	if sent > 0 {
		fmt.Printf("[SweepRunner] Delivered %d messages\n", sent)
	}
}
