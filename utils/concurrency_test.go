package utils

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestLinkSetNoDuplicates(t *testing.T) {
	s := NewLinkSet()

	added := s.Add("https://otodom.pl/oferta/1")
	if !added {
		t.Error("first Add should return true")
	}

	added = s.Add("https://otodom.pl/oferta/1")
	if added {
		t.Error("second Add of same link should return false")
	}

	if !s.Contains("https://otodom.pl/oferta/1") {
		t.Error("Contains should report a tracked link")
	}
	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestLinkSetConcurrency(t *testing.T) {
	s := NewLinkSet()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		link := "https://otodom.pl/oferta/same"
		pool.Submit(func() {
			if s.Add(link) {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolRateLimit(t *testing.T) {
	rateLimitMs := 100
	pool := NewWorkerPool(1, rateLimitMs)

	var timestamps []time.Time
	mu := make(chan struct{}, 1)
	mu <- struct{}{}

	for i := 0; i < 3; i++ {
		pool.Submit(func() {
			<-mu
			timestamps = append(timestamps, time.Now())
			mu <- struct{}{}
		})
	}
	pool.Wait()

	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		min := time.Duration(rateLimitMs) * time.Millisecond
		if gap < min {
			t.Errorf("gap between job %d and %d: %v < minimum %v", i-1, i, gap, min)
		}
	}
}

func TestLoggerCountsWarnings(t *testing.T) {
	l := NewLogger()
	if l.Warnings() != 0 {
		t.Fatalf("fresh logger reports %d warnings", l.Warnings())
	}
	l.Warn("first")
	l.Warn("second %d", 2)
	if l.Warnings() != 2 {
		t.Errorf("Warnings = %d; want 2", l.Warnings())
	}
}
