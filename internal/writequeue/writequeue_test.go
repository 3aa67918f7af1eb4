package writequeue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
)

type recorder struct {
	mu     sync.Mutex
	writes []string
	values map[string]int
}

func (r *recorder) flush(_ context.Context, key string, value int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, key)
	if r.values == nil {
		r.values = map[string]int{}
	}
	r.values[key] = value
}

func (r *recorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, w := range r.writes {
		if w == key {
			n++
		}
	}
	return n
}

func (r *recorder) value(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values[key]
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatal(err)
	}
	return log
}

func TestCoalescesRapidWrites(t *testing.T) {
	rec := &recorder{}
	q := New[int](testLogger(t), Options{
		Debounce: 30 * time.Millisecond,
		MaxWait:  time.Second,
		Tick:     5 * time.Millisecond,
	}, rec.flush)
	q.Start(context.Background())
	defer q.Stop(context.Background())

	for i := 1; i <= 5; i++ {
		q.Enqueue("resp-1", i)
		time.Sleep(2 * time.Millisecond)
	}

	deadline := time.Now().Add(time.Second)
	for rec.count("resp-1") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := rec.count("resp-1"); got != 1 {
		t.Fatalf("writes = %d, want 1 coalesced write", got)
	}
	if got := rec.value("resp-1"); got != 5 {
		t.Fatalf("flushed value = %d, want the latest (5)", got)
	}
}

func TestMaxWaitBoundsStaleness(t *testing.T) {
	rec := &recorder{}
	q := New[int](testLogger(t), Options{
		Debounce: time.Hour, // never quiet enough
		MaxWait:  50 * time.Millisecond,
		Tick:     5 * time.Millisecond,
	}, rec.flush)
	q.Start(context.Background())
	defer q.Stop(context.Background())

	stop := time.Now().Add(120 * time.Millisecond)
	i := 0
	for time.Now().Before(stop) {
		i++
		q.Enqueue("resp-1", i)
		time.Sleep(2 * time.Millisecond)
	}
	if rec.count("resp-1") == 0 {
		t.Fatal("max wait did not force a flush under continuous updates")
	}
}

func TestExplicitFlush(t *testing.T) {
	rec := &recorder{}
	q := New[int](testLogger(t), Options{Debounce: time.Hour, MaxWait: time.Hour}, rec.flush)

	q.Enqueue("resp-1", 7)
	q.Flush(context.Background(), "resp-1")
	if rec.count("resp-1") != 1 || rec.value("resp-1") != 7 {
		t.Fatalf("explicit flush: writes=%d value=%d", rec.count("resp-1"), rec.value("resp-1"))
	}

	// Flushing a key with nothing pending is a no-op.
	q.Flush(context.Background(), "resp-1")
	if rec.count("resp-1") != 1 {
		t.Fatal("empty flush wrote again")
	}
}

func TestStopFlushesPending(t *testing.T) {
	rec := &recorder{}
	q := New[int](testLogger(t), Options{Debounce: time.Hour, MaxWait: time.Hour}, rec.flush)
	q.Start(context.Background())

	q.Enqueue("a", 1)
	q.Enqueue("b", 2)
	q.Stop(context.Background())

	if rec.count("a") != 1 || rec.count("b") != 1 {
		t.Fatalf("stop did not flush pending writes: %v", rec.writes)
	}
	if q.Len() != 0 {
		t.Fatalf("pending after stop = %d", q.Len())
	}
}
