package core

import (
	"context"
	"sync"
)

// AsyncEngine provides asynchronous engine operations.
//
// It wraps the synchronous Engine and executes learning and analysis in
// separate goroutines, matching the fire-and-forget contract of the
// background path: enqueueing never blocks the reply path, and results
// arrive on buffered channels.
//
// Example:
//
//	asyncEngine, _ := core.NewAsyncEngine(config)
//	defer asyncEngine.Close()
//
//	resultChan := asyncEngine.LearnAsync(ctx, "user_001", "오늘 헬스 다녀왔어")
//	// ... produce the reply without waiting ...
//	outcome := <-resultChan
//	if outcome.Error != nil {
//	    log.Println(outcome.Error)
//	}
type AsyncEngine struct {
	*Engine
	wg sync.WaitGroup
}

// NewAsyncEngine creates a new asynchronous engine.
func NewAsyncEngine(cfg *Config, opts ...Option) (*AsyncEngine, error) {
	engine, err := NewEngine(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &AsyncEngine{Engine: engine}, nil
}

// LearnOutcome is the result of an asynchronous learning pass.
type LearnOutcome struct {
	// Result is the learning result, nil on error.
	Result *LearnResult

	// Error is the error that occurred, if any.
	Error error
}

// ProfileOutcome is the result of an asynchronous pattern analysis.
type ProfileOutcome struct {
	// Profile is the recomputed profile, nil on error or insufficient
	// history.
	Profile *PatternProfile

	// Error is the error that occurred, if any.
	Error error
}

// LearnAsync runs a learning pass in a separate goroutine.
//
// The returned channel is buffered, so the result can be ignored without
// leaking the goroutine.
func (ae *AsyncEngine) LearnAsync(ctx context.Context, userID, utterance string) <-chan *LearnOutcome {
	resultChan := make(chan *LearnOutcome, 1)
	ae.wg.Add(1)

	go func() {
		defer ae.wg.Done()
		result, err := ae.Learn(ctx, userID, utterance)
		resultChan <- &LearnOutcome{
			Result: result,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// AnalyzePatternsAsync recomputes a user's pattern profile in a separate
// goroutine.
func (ae *AsyncEngine) AnalyzePatternsAsync(ctx context.Context, userID string) <-chan *ProfileOutcome {
	resultChan := make(chan *ProfileOutcome, 1)
	ae.wg.Add(1)

	go func() {
		defer ae.wg.Done()
		profile, err := ae.AnalyzePatterns(ctx, userID)
		resultChan <- &ProfileOutcome{
			Profile: profile,
			Error:   err,
		}
		close(resultChan)
	}()

	return resultChan
}

// Wait blocks until all in-flight asynchronous operations complete.
func (ae *AsyncEngine) Wait() {
	ae.wg.Wait()
}

// Close waits for in-flight operations and closes the underlying engine.
func (ae *AsyncEngine) Close() error {
	ae.wg.Wait()
	return ae.Engine.Close()
}
