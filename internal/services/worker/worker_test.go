package worker

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Shimizu-Technology/certificate-import-api/internal/services/importer"
)

func TestStop_DrainsQueuedJobs(t *testing.T) {
	const queued = 8

	pool := NewPool(2, 16, nil, nil)

	var mu sync.Mutex
	seen := make(map[string]bool)
	pool.process = func(job Job) error {
		time.Sleep(time.Millisecond) // Keep some jobs buffered when Stop runs
		mu.Lock()
		seen[job.Batch.ID] = true
		mu.Unlock()
		return nil
	}

	for i := 0; i < queued; i++ {
		job := Job{Batch: importer.Batch{ID: fmt.Sprintf("batch-%d", i)}}
		if err := pool.Submit(job); err != nil {
			t.Fatalf("Submit(batch-%d) error = %v", i, err)
		}
	}

	pool.Start()
	pool.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != queued {
		t.Fatalf("processed %d jobs after Stop, want all %d queued jobs drained", len(seen), queued)
	}
	for i := 0; i < queued; i++ {
		id := fmt.Sprintf("batch-%d", i)
		if !seen[id] {
			t.Errorf("job %s was queued but never processed", id)
		}
	}
}

func TestSubmit_QueueFull(t *testing.T) {
	// No workers started, so the single buffer slot is all the capacity there is.
	pool := NewPool(1, 1, nil, nil)

	if err := pool.Submit(Job{Batch: importer.Batch{ID: "first"}}); err != nil {
		t.Fatalf("first Submit() error = %v, want nil", err)
	}
	if err := pool.Submit(Job{Batch: importer.Batch{ID: "second"}}); err == nil {
		t.Fatal("second Submit() error = nil, want queue-full error")
	}
	if got := pool.QueueSize(); got != 1 {
		t.Errorf("QueueSize() = %d, want 1", got)
	}
}
