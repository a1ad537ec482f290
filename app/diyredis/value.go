package diyredis

import (
	"time"

	streams "github.com/flonle/diyredis/app/diyredis/streams"
)

// ValueKind tags which field of a Value is populated. Replaces the
// teacher's raw `any`/reflect.TypeOf dispatch (session.go's original TYPE
// handler) with an exhaustive-match tagged union, per spec.md §9's design
// note.
type ValueKind int

const (
	KindString ValueKind = iota
	KindList
	KindStream
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindStream:
		return "stream"
	default:
		return "none"
	}
}

// Value is the tagged variant stored per key. Exactly one of Str, List,
// Stream is meaningful, selected by Kind (invariant I1).
type Value struct {
	Kind ValueKind

	Str []byte

	List [][]byte

	Stream *streams.Stream
}

func newStringValue(b []byte) *Value {
	return &Value{Kind: KindString, Str: b}
}

func newListValue() *Value {
	return &Value{Kind: KindList}
}

func newStreamValue() *Value {
	return &Value{Kind: KindStream, Stream: &streams.Stream{}}
}

// expiryEntry is the bookkeeping record kept in the expiry table; string
// keys only carry a deadline (invariant I4).
type expiryEntry struct {
	deadline time.Time
}

func (e expiryEntry) expired(now time.Time) bool {
	return !now.Before(e.deadline)
}
