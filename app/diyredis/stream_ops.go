package diyredis

import (
	"context"
	"time"

	streams "github.com/flonle/diyredis/app/diyredis/streams"
)

// --- 4.C Stream engine ---------------------------------------------------

// XAdd implements XADD key id field value [field value ...]. fields is the
// flat alternating field/value list in insertion order (invariant: a
// stream entry's fields preserve insertion order, enforced simply by
// storing them as a slice rather than a map).
func (e *Engine) XAdd(key string, idSpec string, fields []string) (streams.Key, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	val, ok := e.lookup(key)
	if ok && val.Kind != KindStream {
		return streams.Key{}, errWrongTypeNotStream
	}

	var stream *streams.Stream
	if ok {
		stream = val.Stream
	}

	id, err := streams.NewKey(idSpec, stream)
	if err != nil {
		return streams.Key{}, errInvalidIDFormat
	}
	if id.IsMin() {
		return streams.Key{}, errIDTooSmall
	}
	if stream != nil && !id.GreaterThan(stream.LastEntry.Key) {
		return streams.Key{}, errIDNotIncreasing
	}

	if !ok {
		val = newStreamValue()
		e.values.Set(key, val)
		stream = val.Stream
	}
	if err := stream.Put(id, fields); err != nil {
		return streams.Key{}, errIDNotIncreasing
	}
	e.ringStreamBell()
	return id, nil
}

// XRange implements XRANGE key start end.
func (e *Engine) XRange(key, startSpec, endSpec string) ([]streams.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	val, ok := e.lookup(key)
	if !ok {
		return []streams.Entry{}, nil
	}
	if val.Kind != KindStream {
		return nil, errWrongTypeNotStream
	}

	start, err := streams.NewKey(startSpec, val.Stream)
	if err != nil {
		return nil, errInvalidIDFormat
	}
	end, err := streams.NewRangeEndKey(endSpec, val.Stream)
	if err != nil {
		return nil, errInvalidIDFormat
	}
	return val.Stream.Range(start, end), nil
}

// XReadStreamResult is one per-key entry of an XREAD reply.
type XReadStreamResult struct {
	Key     string
	Entries []streams.Entry
}

// resolveReadWatermarks resolves each stream's starting watermark once, at
// command entry, before any wait (spec.md §4.C: "$" resolution happens
// once). Subsequent re-scans during a BLOCK wait reuse these watermarks
// unchanged, so a waiter never observes entries committed before its
// resolved watermark.
func (e *Engine) resolveReadWatermarks(keys, ids []string) ([]streams.Key, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	watermarks := make([]streams.Key, len(keys))
	for i, key := range keys {
		val, ok := e.lookup(key)
		if ok && val.Kind != KindStream {
			return nil, errWrongTypeNotStream
		}
		var stream *streams.Stream
		if ok {
			stream = val.Stream
		}

		if ids[i] == "$" {
			if stream != nil {
				watermarks[i] = stream.LastEntry.Key
			} else {
				watermarks[i] = streams.MinKey
			}
			continue
		}

		id, err := streams.NewKey(ids[i], stream)
		if err != nil {
			return nil, errInvalidIDFormat
		}
		watermarks[i] = id
	}
	return watermarks, nil
}

// scanAfterWatermarks returns, per key, every entry strictly greater than
// its watermark, plus whether any key had a match.
func (e *Engine) scanAfterWatermarks(keys []string, watermarks []streams.Key) ([]XReadStreamResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	results := make([]XReadStreamResult, len(keys))
	anyMatch := false
	for i, key := range keys {
		entries := []streams.Entry{}
		val, ok := e.lookup(key)
		if ok && val.Kind == KindStream {
			exclusiveFrom, overflow := watermarks[i].Next()
			if !overflow {
				entries = val.Stream.Range(exclusiveFrom, streams.MaxKey)
			}
		}
		if len(entries) > 0 {
			anyMatch = true
		}
		results[i] = XReadStreamResult{Key: key, Entries: entries}
	}
	return results, anyMatch
}

// XRead implements XREAD [BLOCK ms] STREAMS key1..keyN id1..idN. ok is
// false only on a BLOCK timeout or ctx cancellation (caller replies null
// bulk string); err
// covers wrong-type/invalid-id failures, reported immediately without
// blocking.
func (e *Engine) XRead(ctx context.Context, keys, ids []string, block bool, blockMs int64) (results []XReadStreamResult, ok bool, err error) {
	watermarks, err := e.resolveReadWatermarks(keys, ids)
	if err != nil {
		return nil, false, err
	}

	results, anyMatch := e.scanAfterWatermarks(keys, watermarks)
	if anyMatch || !block {
		return results, true, nil
	}

	var timeoutCh <-chan time.Time
	if blockMs > 0 {
		timer := time.NewTimer(time.Duration(blockMs) * time.Millisecond)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	for {
		e.mu.Lock()
		bell := e.streamBell
		e.mu.Unlock()

		select {
		case <-bell:
			results, anyMatch = e.scanAfterWatermarks(keys, watermarks)
			if anyMatch {
				return results, true, nil
			}
		case <-timeoutCh:
			return nil, false, nil
		case <-ctx.Done():
			return nil, false, nil
		}
	}
}
