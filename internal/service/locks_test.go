package service

import (
	"sync"
	"testing"
	"time"
)

func TestPositionLocks(t *testing.T) {
	t.Run("serializes holders of the same stock", func(t *testing.T) {
		locks := NewPositionLocks()

		var mu sync.Mutex
		inside, maxInside := 0, 0

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locks.Lock("stock-a")
				defer unlock()

				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
			}()
		}
		wg.Wait()

		if maxInside != 1 {
			t.Errorf("Expected at most 1 concurrent holder, got %d", maxInside)
		}
	})

	t.Run("different stocks do not block each other", func(t *testing.T) {
		locks := NewPositionLocks()

		unlockA := locks.Lock("stock-a")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlock := locks.Lock("stock-b")
			unlock()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Lock on stock-b blocked behind stock-a")
		}
	})

	t.Run("released entries are removed", func(t *testing.T) {
		locks := NewPositionLocks()

		unlock := locks.Lock("stock-a")
		if locks.size() != 1 {
			t.Errorf("Expected 1 entry while held, got %d", locks.size())
		}
		unlock()

		if locks.size() != 0 {
			t.Errorf("Expected 0 entries after release, got %d", locks.size())
		}
	})
}
