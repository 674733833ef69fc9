// retry.go — bounded retry for filesystem operations.
package filestore

import "time"

// WithRetry runs op up to attempts times, sleeping delay between failed
// attempts, then runs it one final time and lets that error propagate.
//
// The retries exist to absorb transient OS-level file locks — antivirus
// scanners and search indexers briefly hold freshly written files open,
// and a delete or rename during that window fails spuriously. The helper
// is generic: it works for any fallible operation, not just file I/O.
func WithRetry(attempts int, delay time.Duration, op func() error) error {
	for i := 0; i < attempts; i++ {
		if err := op(); err == nil {
			return nil
		}
		time.Sleep(delay)
	}
	return op()
}
