package dispatch

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSameUserRunsInOrder(t *testing.T) {
	d := New(testLogger())

	var mu sync.Mutex
	var trace []string

	const jobs = 10
	for i := 0; i < jobs; i++ {
		i := i
		ok := d.Enqueue(1, func() {
			mu.Lock()
			trace = append(trace, fmt.Sprintf("start %d", i))
			mu.Unlock()

			time.Sleep(2 * time.Millisecond)

			mu.Lock()
			trace = append(trace, fmt.Sprintf("end %d", i))
			mu.Unlock()
		})
		if !ok {
			t.Fatalf("Enqueue(job %d) dropped", i)
		}
	}

	d.Close()

	if len(trace) != 2*jobs {
		t.Fatalf("trace has %d entries, want %d", len(trace), 2*jobs)
	}
	for i := 0; i < jobs; i++ {
		wantStart := fmt.Sprintf("start %d", i)
		wantEnd := fmt.Sprintf("end %d", i)
		if trace[2*i] != wantStart || trace[2*i+1] != wantEnd {
			t.Fatalf("jobs interleaved at %d: trace = %v", i, trace)
		}
	}
}

func TestDifferentUsersRunConcurrently(t *testing.T) {
	d := New(testLogger())
	defer d.Close()

	release := make(chan struct{})
	done := make(chan struct{})

	// User 1 blocks until user 2's job signals. This only completes if the
	// two users run on separate workers.
	d.Enqueue(1, func() {
		<-release
		close(done)
	})
	d.Enqueue(2, func() {
		close(release)
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("users did not run concurrently")
	}
}

func TestCloseDrainsQueuedJobs(t *testing.T) {
	d := New(testLogger())

	var mu sync.Mutex
	ran := 0

	for i := 0; i < 5; i++ {
		d.Enqueue(7, func() {
			time.Sleep(time.Millisecond)
			mu.Lock()
			ran++
			mu.Unlock()
		})
	}

	d.Close()

	if ran != 5 {
		t.Errorf("ran = %d jobs after Close, want 5", ran)
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	d := New(testLogger())
	d.Close()

	if d.Enqueue(1, func() {}) {
		t.Error("Enqueue() after Close = true, want false")
	}
}

func TestFullQueueDropsJob(t *testing.T) {
	d := NewWithConfig(1, DefaultIdleTTL, testLogger())

	blocked := make(chan struct{})
	started := make(chan struct{})
	d.Enqueue(1, func() { close(started); <-blocked })
	<-started

	// Worker is busy; one slot buffers, the next must drop.
	first := d.Enqueue(1, func() {})
	second := d.Enqueue(1, func() {})

	close(blocked)
	d.Close()

	if !first {
		t.Error("Enqueue() into free buffer slot = false, want true")
	}
	if second {
		t.Error("Enqueue() into full queue = true, want false")
	}
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	d := New(testLogger())

	ran := false
	d.Enqueue(1, func() { panic("boom") })
	d.Enqueue(1, func() { ran = true })

	d.Close()

	if !ran {
		t.Error("job after panic did not run")
	}
}

func TestIdleWorkerReaped(t *testing.T) {
	d := NewWithConfig(DefaultQueueCap, 20*time.Millisecond, testLogger())
	defer d.Close()

	d.Enqueue(1, func() {})

	deadline := time.Now().Add(2 * time.Second)
	for {
		d.mu.Lock()
		n := len(d.queues)
		d.mu.Unlock()
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("worker not reaped, %d queues still tracked", n)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// A reaped user gets a fresh worker on the next update.
	ran := make(chan struct{})
	if !d.Enqueue(1, func() { close(ran) }) {
		t.Fatal("Enqueue() after reap dropped")
	}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job after reap did not run")
	}
}
