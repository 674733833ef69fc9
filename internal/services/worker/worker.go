// Package worker provides a background job processing system using goroutines.
//
// Go Pattern: Goroutines and channels are Go's concurrency primitives.
// A goroutine is like a lightweight thread (thousands are fine), and
// channels are typed pipes for communication between goroutines.
//
// This worker pool pattern is very common in Go:
// 1. Create a buffered channel as a job queue
// 2. Spawn N worker goroutines that read from the channel
// 3. Send jobs to the channel from your HTTP handlers
// 4. Workers process jobs concurrently
//
// One job is one whole batch. Batches may run in parallel on different
// workers, but candidates inside a batch are always processed sequentially
// by the importer, so two workers never touch the same scope folders in an
// interleaved order.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Shimizu-Technology/certificate-import-api/internal/database"
	"github.com/Shimizu-Technology/certificate-import-api/internal/models"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/importer"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/pdfops"
)

// Job represents one batch import queued for processing.
type Job struct {
	Batch     importer.Batch
	CreatedAt time.Time
}

// Pool manages a pool of worker goroutines.
type Pool struct {
	// Go Pattern: Channels are the backbone of Go concurrency.
	// This buffered channel acts as our job queue.
	// Buffered means it can hold `queueSize` jobs before blocking.
	jobs     chan Job
	workers  int
	db       *database.DB
	importer *importer.Service

	// process handles one dequeued job. It defaults to processBatch; tests
	// swap it to observe queue behavior without a database.
	process func(Job) error

	// Go Pattern: sync.WaitGroup tracks running goroutines.
	// We call wg.Add(1) when starting a worker, wg.Done() when it finishes,
	// and wg.Wait() blocks until all workers are done (used for graceful shutdown).
	wg sync.WaitGroup

	// Go Pattern: context.Context with cancel for graceful shutdown.
	// When we call cancel(), all workers' contexts are cancelled.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool creates a new worker pool.
func NewPool(workers, queueSize int, db *database.DB, imp *importer.Service) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:     make(chan Job, queueSize), // Buffered channel
		workers:  workers,
		db:       db,
		importer: imp,
		ctx:      ctx,
		cancel:   cancel,
	}
	p.process = p.processBatch
	return p
}

// Start launches the worker goroutines.
// Go Pattern: The `go` keyword starts a new goroutine (lightweight thread).
// Each worker runs in its own goroutine, reading from the shared jobs channel.
func (p *Pool) Start() {
	log.Printf("🚀 Starting %d background workers", p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i) // Launch worker goroutine
	}
}

// Stop gracefully shuts down all workers.
// Go Pattern: Close the channel, wait for the drain, then cancel.
// Closing first lets the workers finish every queued batch, so a job that
// made it into the queue is never dropped. The context is cancelled only
// after the drain; in-flight imports are not interrupted mid-batch.
func (p *Pool) Stop() {
	log.Println("⏹️  Stopping workers...")
	close(p.jobs) // Workers drain remaining jobs, then their loops exit
	p.wg.Wait()   // Wait for all workers to finish
	p.cancel()    // Release the shared context
	log.Println("✅ All workers stopped")
}

// Submit adds a job to the queue.
// Returns an error if the queue is full (non-blocking).
func (p *Pool) Submit(job Job) error {
	// Go Pattern: `select` with `default` makes channel operations non-blocking.
	// Without default, sending to a full channel would block the HTTP handler.
	select {
	case p.jobs <- job:
		log.Printf("📥 Batch queued: %s (%s)", job.Batch.ID, job.Batch.OriginalName)
		return nil
	default:
		return fmt.Errorf("job queue is full; try again later")
	}
}

// QueueSize returns the current number of jobs in the queue.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

// WorkerCount returns the number of workers.
func (p *Pool) WorkerCount() int {
	return p.workers
}

// worker is the main loop for each worker goroutine.
// It reads jobs from the channel and processes them.
func (p *Pool) worker(id int) {
	defer p.wg.Done() // Signal completion when this worker exits

	log.Printf("👷 Worker %d started", id)

	// Go Pattern: `range` over a channel reads values until the channel is closed.
	// This is the idiomatic way to consume from a channel. The loop only ends
	// once the closed queue is empty, which is what makes Stop's drain hold.
	for job := range p.jobs {
		log.Printf("👷 Worker %d processing batch: %s", id, job.Batch.ID)

		if err := p.process(job); err != nil {
			log.Printf("❌ Worker %d: batch %s failed: %v", id, job.Batch.ID, err)
		} else {
			log.Printf("✅ Worker %d: batch %s completed", id, job.Batch.ID)
		}
	}

	log.Printf("👷 Worker %d stopped", id)
}

// processBatch runs one import and folds the outcome into the batch row.
func (p *Pool) processBatch(job Job) error {
	ctx := p.ctx

	b, err := p.db.GetImportBatch(ctx, job.Batch.ID)
	if err != nil {
		return fmt.Errorf("failed to get batch: %w", err)
	}

	if err := p.db.UpdateImportBatchStatus(ctx, b.ID, models.StatusProcessing, ""); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	result, runErr := p.importer.ProcessBatch(ctx, job.Batch)

	// The result counts saved and failed candidates separately; the batch
	// row's denormalized total is their sum.
	messages, _ := json.Marshal(result.Errors)
	b.TotalCandidates = result.TotalCandidates + result.FailedCandidates
	b.SucceededCount = result.TotalCandidates
	b.FailedCount = result.FailedCandidates
	b.Messages = messages
	b.SourceFile = "" // Staged upload is gone once the run finishes

	if runErr != nil {
		b.Status = models.StatusFailed
		b.ErrorMessage = runErr.Error()
		b.SourceFile = job.Batch.SourcePath // Keep the staged path for a retry

		kind := models.ErrUnhandledException
		if errors.Is(runErr, pdfops.ErrMalformedDocument) {
			kind = models.ErrMalformedDocument
		}
		importErr := &models.ImportError{
			Kind:       kind,
			Message:    runErr.Error(),
			Session:    job.Batch.Session,
			UploaderID: job.Batch.UploaderID,
		}
		if err := p.db.CreateImportError(ctx, importErr); err != nil {
			log.Printf("⚠️  Failed to record batch-level error for %s: %v", b.ID, err)
		}
	} else {
		b.Status = models.StatusCompleted
		b.ErrorMessage = ""
	}

	if err := p.db.FinishImportBatch(ctx, b); err != nil {
		return fmt.Errorf("failed to finalize batch: %w", err)
	}
	return runErr
}
