package diyredis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBLPopImmediateOnNonEmptyList(t *testing.T) {
	e := NewEngine()
	_, err := e.RPush("q", byteSlices("x"))
	require.NoError(t, err)

	val, ok, err := e.BLPop(context.Background(), "q", 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "x", string(val))
}

func TestBLPopTimesOut(t *testing.T) {
	e := NewEngine()
	start := time.Now()
	_, ok, err := e.BLPop(context.Background(), "q", 0.05)
	require.NoError(t, err)
	require.False(t, ok)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestBLPopServedByLaterRPush(t *testing.T) {
	e := NewEngine()

	type result struct {
		val []byte
		ok  bool
	}
	done := make(chan result, 1)
	go func() {
		v, ok, _ := e.BLPop(context.Background(), "q", 0)
		done <- result{v, ok}
	}()

	require.Eventually(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return len(e.listQueues["q"]) == 1
	}, time.Second, time.Millisecond)

	_, err := e.RPush("q", byteSlices("donated"))
	require.NoError(t, err)

	select {
	case r := <-done:
		require.True(t, r.ok)
		require.Equal(t, "donated", string(r.val))
	case <-time.After(time.Second):
		t.Fatal("BLPOP was never served")
	}
}

// TestBLPopFIFOOrder parks several waiters on the same key and checks a
// single multi-value RPUSH serves them in park order (spec.md §4.E/§8):
// the i-th parked waiter receives the i-th pushed value.
func TestBLPopFIFOOrder(t *testing.T) {
	e := NewEngine()
	const n = 5

	got := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, ok, _ := e.BLPop(context.Background(), "q", 0)
			if ok {
				got[i] = string(v)
			}
		}()
		// Ensure waiters register in a deterministic order before the next
		// one is spawned.
		require.Eventually(t, func() bool {
			e.mu.Lock()
			defer e.mu.Unlock()
			return len(e.listQueues["q"]) == i+1
		}, time.Second, time.Millisecond)
	}

	values := byteSlices("v0", "v1", "v2", "v3", "v4")
	_, err := e.RPush("q", values)
	require.NoError(t, err)

	wg.Wait()

	require.Equal(t, []string{"v0", "v1", "v2", "v3", "v4"}, got)
}

func TestBLPopCancelledByContext(t *testing.T) {
	e := NewEngine()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok, _ := e.BLPop(ctx, "q", 0)
		done <- ok
	}()

	require.Eventually(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return len(e.listQueues["q"]) == 1
	}, time.Second, time.Millisecond)

	cancel()

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("cancellation did not unblock BLPOP")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	require.Empty(t, e.listQueues["q"], "cancelled waiter must be removed from the queue")
}

func TestXReadBlockWakesOnXAdd(t *testing.T) {
	e := NewEngine()
	_, err := e.XAdd("s", "1-1", []string{"f", "v"})
	require.NoError(t, err)

	type result struct {
		results []XReadStreamResult
		ok      bool
	}
	done := make(chan result, 1)
	go func() {
		res, ok, _ := e.XRead(context.Background(), []string{"s"}, []string{"$"}, true, 0)
		done <- result{res, ok}
	}()

	time.Sleep(20 * time.Millisecond) // give the reader time to resolve its watermark and start waiting

	_, err = e.XAdd("s", "2-1", []string{"f2", "v2"})
	require.NoError(t, err)

	select {
	case r := <-done:
		require.True(t, r.ok)
		require.Len(t, r.results, 1)
		require.Len(t, r.results[0].Entries, 1)
		require.Equal(t, "2-1", r.results[0].Entries[0].Key.String())
	case <-time.After(time.Second):
		t.Fatal("XREAD BLOCK was never woken")
	}
}

func TestXReadBlockTimesOut(t *testing.T) {
	e := NewEngine()
	_, ok, err := e.XRead(context.Background(), []string{"s"}, []string{"$"}, true, 30)
	require.NoError(t, err)
	require.False(t, ok)
}
