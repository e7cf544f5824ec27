package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/Kamar-Folarin/repostats/internal/config"
	"github.com/Kamar-Folarin/repostats/internal/models"
)

// Processor runs independent items with at most Concurrency of them in flight.
// A new item starts as soon as any running one finishes.
type Processor struct {
	config     *config.FetchConfig
	statusChan chan *models.BatchProgress
	mu         sync.Mutex
}

// NewProcessor creates a new processor
func NewProcessor(cfg *config.FetchConfig) *Processor {
	return &Processor{
		config:     cfg,
		statusChan: make(chan *models.BatchProgress, 1),
	}
}

// ItemError is the failure of one item
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// ProcessItems calls processFn once for every index in [0, total). Item
// failures do not stop the others; they are returned after all work has
// drained. If ctx ends, no further items are started and ctx.Err() is
// returned alongside the failures collected so far.
func (p *Processor) ProcessItems(ctx context.Context, total int, processFn func(ctx context.Context, index int) error) ([]*ItemError, error) {
	if total == 0 {
		return nil, nil
	}

	workers := p.config.Concurrency
	if workers <= 0 {
		workers = config.DefaultConcurrency
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	progress := &models.BatchProgress{
		TotalItems:     total,
		StartTime:      time.Now(),
		LastUpdateTime: time.Now(),
	}
	p.updateProgress(progress)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []*ItemError
	)

	start := func() {
		mu.Lock()
		defer mu.Unlock()
		progress.InFlight++
		p.updateProgress(progress)
	}

	record := func(index int, err error, started bool) {
		mu.Lock()
		defer mu.Unlock()
		if started {
			progress.InFlight--
		}
		if err != nil {
			failures = append(failures, &ItemError{Index: index, Err: err})
			progress.FailedItems++
			progress.Errors = append(progress.Errors, err)
		} else {
			progress.ProcessedItems++
		}
		progress.LastUpdateTime = time.Now()
		p.updateProgress(progress)
	}

	var ctxErr error
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}

		index := i
		wg.Add(1)

		// Submit blocks while every worker is busy.
		err := pool.Submit(func() {
			defer wg.Done()
			start()
			var itemErr error
			defer func() {
				if r := recover(); r != nil {
					itemErr = fmt.Errorf("panic: %v", r)
				}
				record(index, itemErr, true)
			}()
			itemErr = p.processWithRetry(ctx, index, processFn)
		})
		if err != nil {
			wg.Done()
			record(index, fmt.Errorf("failed to schedule item: %w", err), false)
		}
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if ctxErr != nil {
		progress.Errors = append(progress.Errors, ctxErr)
		p.updateProgress(progress)
	}
	return failures, ctxErr
}

// GetProgress returns the current progress channel
func (p *Processor) GetProgress() <-chan *models.BatchProgress {
	return p.statusChan
}

// processWithRetry runs one item with linear backoff between attempts
func (p *Processor) processWithRetry(ctx context.Context, index int, processFn func(ctx context.Context, index int) error) error {
	var lastErr error
	for retry := 0; retry <= p.config.MaxRetries; retry++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := processFn(ctx, index)
		if err == nil {
			return nil
		}

		lastErr = err
		if retry < p.config.MaxRetries && p.config.RetryDelay > 0 {
			backoff := time.Duration(float64(p.config.RetryDelay) * float64(retry+1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if p.config.MaxRetries > 0 {
		return fmt.Errorf("failed after %d retries: %w", p.config.MaxRetries, lastErr)
	}
	return lastErr
}

// updateProgress publishes a snapshot, replacing any unread one
func (p *Processor) updateProgress(progress *models.BatchProgress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := *progress
	snapshot.Errors = append([]error(nil), progress.Errors...)

	select {
	case p.statusChan <- &snapshot:
	default:
		select {
		case <-p.statusChan:
		default:
		}
		p.statusChan <- &snapshot
	}
}
