package media

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsEveryJob(t *testing.T) {
	p := NewPool(3, 16)
	defer p.Close()

	var done atomic.Int64
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			done.Add(1)
		})
	}
	wg.Wait()

	if got := done.Load(); got != 20 {
		t.Errorf("jobs run = %d, expected 20", got)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const workers = 2
	p := NewPool(workers, 32)
	defer p.Close()

	var active, peak atomic.Int64
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			n := active.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			active.Add(-1)
		})
	}
	wg.Wait()

	if got := peak.Load(); got > workers {
		t.Errorf("peak concurrency = %d, expected at most %d", got, workers)
	}
}
