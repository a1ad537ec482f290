package diyredis

import "errors"

// --- 4.D List engine ----------------------------------------------------
//
// Lists are backed by a plain [][]byte slice on Value.List (see value.go).
// The spec does not mandate any particular structure and RPUSH/LPUSH/LPOP/
// LLEN/LRANGE are all expressible as slice operations; a container/list
// doubly-linked list would only pay off if the core needed O(1) middle
// insertion, which it never does.

var errNegativeCount = errors.New("ERR value is out of range, must be positive")

// listValue returns the list at key. If key is absent it creates an empty
// one when createIfAbsent is set, and otherwise returns (nil, nil). Returns
// an error if key holds a non-list value. Caller must hold e.mu.
func (e *Engine) listValue(key string, createIfAbsent bool) (*Value, error) {
	val, ok := e.lookup(key)
	if !ok {
		if !createIfAbsent {
			return nil, nil
		}
		val = newListValue()
		e.values.Set(key, val)
		return val, nil
	}
	if val.Kind != KindList {
		return nil, errWrongTypeNotList
	}
	return val, nil
}

// RPush implements RPUSH: append values in argument order, then attempt to
// serve any parked BLPOP waiters on key (§4.E).
func (e *Engine) RPush(key string, values [][]byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	val, err := e.listValue(key, true)
	if err != nil {
		return 0, err
	}
	val.List = append(val.List, values...)
	e.serveListWaiters(key)
	return len(val.List), nil
}

// LPush implements LPUSH: prepend each value in argument order, so the
// final order is the reverse of the argument list.
func (e *Engine) LPush(key string, values [][]byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	val, err := e.listValue(key, true)
	if err != nil {
		return 0, err
	}
	prepended := make([][]byte, 0, len(values)+len(val.List))
	for i := len(values) - 1; i >= 0; i-- {
		prepended = append(prepended, values[i])
	}
	val.List = append(prepended, val.List...)
	e.serveListWaiters(key)
	return len(val.List), nil
}

// LPop implements LPOP. hasCount distinguishes "LPOP key" (single bulk
// string or null) from "LPOP key count" (array, possibly empty).
func (e *Engine) LPop(key string, hasCount bool, count int) (values [][]byte, singular bool, err error) {
	if hasCount && count < 0 {
		return nil, false, errNegativeCount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	val, ok := e.lookup(key)
	if !ok {
		return nil, !hasCount, nil
	}
	if val.Kind != KindList {
		return nil, false, errWrongTypeNotList
	}

	if !hasCount {
		if len(val.List) == 0 {
			return nil, true, nil
		}
		v := val.List[0]
		val.List = val.List[1:]
		return [][]byte{v}, true, nil
	}

	n := count
	if n > len(val.List) {
		n = len(val.List)
	}
	popped := val.List[:n]
	val.List = val.List[n:]
	return popped, false, nil
}

// LLen implements LLEN.
func (e *Engine) LLen(key string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	val, ok := e.lookup(key)
	if !ok {
		return 0, nil
	}
	if val.Kind != KindList {
		return 0, errWrongTypeNotList
	}
	return len(val.List), nil
}

// LRange implements LRANGE: inclusive slicing with negative-index and
// clamping rules per spec.md §4.D.
func (e *Engine) LRange(key string, start, end int) ([][]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	val, ok := e.lookup(key)
	if !ok {
		return [][]byte{}, nil
	}
	if val.Kind != KindList {
		return nil, errWrongTypeNotList
	}

	n := len(val.List)
	if n == 0 {
		return [][]byte{}, nil
	}

	start = clampIndex(start, n)
	end = clampIndex(end, n)
	if end < start {
		return [][]byte{}, nil
	}
	out := make([][]byte, end-start+1)
	copy(out, val.List[start:end+1])
	return out, nil
}

// clampIndex resolves a possibly-negative LRANGE index (negative counts
// from the tail) and clamps it into [0, n-1] at both ends.
func clampIndex(idx, n int) int {
	if idx < 0 {
		idx = n + idx
	}
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}
