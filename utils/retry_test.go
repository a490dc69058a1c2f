package utils

import (
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger()}

	calls := 0
	err := r.Do("page-load", func() error {
		calls++
		if calls < 3 {
			return errors.New("timeout")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d; want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: NewLogger()}

	wantErr := errors.New("blocked")
	calls := 0
	err := r.Do("page-load", func() error {
		calls++
		return wantErr
	})

	if calls != 2 {
		t.Errorf("calls = %d; want 2", calls)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v; want wrapped %v", err, wantErr)
	}
}
