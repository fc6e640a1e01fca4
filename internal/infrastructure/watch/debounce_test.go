package watch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	var (
		count atomic.Int32
		mu    sync.Mutex
		last  int
	)
	d := NewDebouncer(50*time.Millisecond, func(v int) {
		count.Add(1)
		mu.Lock()
		last = v
		mu.Unlock()
	})
	defer d.Stop()

	for i := 1; i <= 10; i++ {
		d.Trigger(i)
		time.Sleep(5 * time.Millisecond)
	}
	if !d.Pending() {
		t.Error("expected a pending callback")
	}

	time.Sleep(150 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 callback invocation, got %d", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if last != 10 {
		t.Errorf("expected latest value 10, got %d", last)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	var count atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func(string) {
		count.Add(1)
	})

	d.Trigger("x")
	d.Stop()
	if d.Pending() {
		t.Error("expected nothing pending after stop")
	}

	time.Sleep(100 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected 0 callback invocations after stop, got %d", got)
	}
}
