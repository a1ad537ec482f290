package diyredis

import (
	"context"
	"time"
)

// --- 4.E Blocking coordinator -------------------------------------------
//
// List waiters are a FIFO queue per key (Engine.listQueues); stream waiters
// share one broadcast "bell" channel that is closed and replaced on every
// XADD (Engine.streamBell). A single global bell is explicitly permitted by
// spec.md §9 ("acceptable but causes thundering herds") and keeps a
// multi-key XREAD from needing to subscribe to N separate notifiers.

// listWaiter is one parked BLPOP connection. delivery is buffered(1) so
// serveListWaiters never blocks on a slow or abandoned receiver.
type listWaiter struct {
	delivery chan []byte
}

// registerListWaiter enqueues a new waiter for key. Caller must hold e.mu.
func (e *Engine) registerListWaiter(key string) *listWaiter {
	w := &listWaiter{delivery: make(chan []byte, 1)}
	e.listQueues[key] = append(e.listQueues[key], w)
	return w
}

// cancelListWaiter removes w from key's queue if it is still queued. It is
// called from the BLPOP timeout/cancellation path, which does not already
// hold e.mu, so it takes the lock itself.
func (e *Engine) cancelListWaiter(key string, w *listWaiter) {
	e.mu.Lock()
	defer e.mu.Unlock()

	queue := e.listQueues[key]
	for i, qw := range queue {
		if qw == w {
			e.listQueues[key] = append(queue[:i], queue[i+1:]...)
			break
		}
	}
}

// serveListWaiters dequeues waiters and hands them list elements one for
// one, front of queue to front of list, while both are non-empty. Caller
// must hold e.mu and must call this immediately after any mutation that
// grows the list (RPUSH, LPUSH), satisfying O3 (push-then-serve): the
// delivery is only sent once val.List has already been updated.
func (e *Engine) serveListWaiters(key string) {
	val, ok := e.values.Get(key)
	if !ok || val.Kind != KindList {
		return
	}
	queue := e.listQueues[key]
	i := 0
	for i < len(queue) && len(val.List) > 0 {
		w := queue[i]
		i++
		v := val.List[0]
		val.List = val.List[1:]
		w.delivery <- v
	}
	if i > 0 {
		e.listQueues[key] = queue[i:]
	}
}

// ringStreamBell wakes every XREAD BLOCK waiter, on every key, to
// re-evaluate its predicate. Caller must hold e.mu and must call this after
// the triggering XADD's entry is committed (O2: append-then-wake).
func (e *Engine) ringStreamBell() {
	close(e.streamBell)
	e.streamBell = make(chan struct{})
}

// BLPopNow makes a single non-blocking attempt: pop the head element if the
// list is non-empty, else report no match without ever parking a waiter.
// Used for BLPOP queued inside a transaction (spec.md §4.F forbids parking
// at EXEC time).
func (e *Engine) BLPopNow(key string) (value []byte, ok bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	val, exists := e.lookup(key)
	if exists && val.Kind != KindList {
		return nil, false, errWrongTypeNotList
	}
	if !exists || len(val.List) == 0 {
		return nil, false, nil
	}
	v := val.List[0]
	val.List = val.List[1:]
	return v, true, nil
}

// BLPop implements BLPOP key timeout_sec. A zero timeout waits forever.
// Returns ok=false on timeout or context cancellation (caller replies null
// bulk string); ctx cancellation happens when the owning connection's
// socket is torn down mid-wait (spec.md §5 cancellation requirement).
func (e *Engine) BLPop(ctx context.Context, key string, timeoutSec float64) (value []byte, ok bool, err error) {
	e.mu.Lock()
	val, exists := e.lookup(key)
	if exists && val.Kind != KindList {
		e.mu.Unlock()
		return nil, false, errWrongTypeNotList
	}
	if exists && len(val.List) > 0 {
		v := val.List[0]
		val.List = val.List[1:]
		e.mu.Unlock()
		return v, true, nil
	}
	w := e.registerListWaiter(key)
	e.mu.Unlock()

	var timeoutCh <-chan time.Time
	if timeoutSec > 0 {
		timer := time.NewTimer(time.Duration(timeoutSec * float64(time.Second)))
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case v := <-w.delivery:
		return v, true, nil
	case <-timeoutCh:
		e.cancelListWaiter(key, w)
		select {
		case v := <-w.delivery:
			return v, true, nil
		default:
			return nil, false, nil
		}
	case <-ctx.Done():
		e.cancelListWaiter(key, w)
		select {
		case v := <-w.delivery:
			return v, true, nil
		default:
			return nil, false, nil
		}
	}
}
