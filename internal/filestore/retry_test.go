package filestore

import (
	"errors"
	"testing"
	"time"
)

func TestWithRetry(t *testing.T) {
	errBusy := errors.New("resource busy")

	tests := []struct {
		name      string
		attempts  int
		failFirst int // how many leading calls fail
		wantErr   bool
		wantCalls int
	}{
		{name: "first attempt succeeds", attempts: 5, failFirst: 0, wantCalls: 1},
		{name: "succeeds mid-retry", attempts: 5, failFirst: 3, wantCalls: 4},
		{name: "succeeds on last loop attempt", attempts: 5, failFirst: 4, wantCalls: 5},
		{name: "succeeds on final uncounted call", attempts: 5, failFirst: 5, wantCalls: 6},
		{name: "exhausted", attempts: 5, failFirst: 99, wantErr: true, wantCalls: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(tt.attempts, time.Microsecond, func() error {
				calls++
				if calls <= tt.failFirst {
					return errBusy
				}
				return nil
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("WithRetry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errBusy) {
				t.Errorf("WithRetry() error = %v, want the operation's own error", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("op called %d times, want %d", calls, tt.wantCalls)
			}
		})
	}
}
