package diyredis

import (
	"strconv"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
)

// Engine is the process-wide keyspace plus the string/list/stream engines
// and the blocking coordinator built on top of them (spec.md §2 components
// B-E). One Engine is shared by every connection; the teacher's per-DB
// split (Server.dbs, Session.SwitchDB) was dead code reachable from no
// command, so it is dropped in favor of a single keyspace.
//
// mu serializes every compound read-modify-write sequence (spec.md §5: "a
// correct implementation MAY use a single global mutex"). values/expires
// are backed by a lock-free sharded map (haxmap) for the underlying storage
// itself, so single-key lookups outside of a held mu (none exist today, but
// future read-only commands could add them) still don't contend.
type Engine struct {
	mu      sync.Mutex
	values  *haxmap.Map[string, *Value]
	expires *haxmap.Map[string, expiryEntry]

	// listQueues/streamBell are the blocking-coordinator state (spec.md
	// §4.E, implemented in blocking.go). They are guarded by mu itself
	// rather than a separate lock: BLPOP's "check empty, then register as
	// waiter" and RPUSH's "mutate, then serve waiters" must be atomic with
	// respect to each other or a push can race a park and the waiter is
	// never woken (a lost wakeup, forbidden by invariant I6). Folding both
	// into one mutex is the simplest way to rule that out, and is exactly
	// what spec.md §5 allows ("a correct implementation MAY use a single
	// global mutex for simplicity").
	listQueues map[string][]*listWaiter
	streamBell chan struct{}
}

func NewEngine() *Engine {
	return &Engine{
		values:     haxmap.New[string, *Value](),
		expires:    haxmap.New[string, expiryEntry](),
		listQueues: make(map[string][]*listWaiter),
		streamBell: make(chan struct{}),
	}
}

// lookup returns the live value at key, applying lazy string expiry
// (invariant I4): an expired string key is deleted and treated as absent.
// Caller must hold mu.
func (e *Engine) lookup(key string) (*Value, bool) {
	val, ok := e.values.Get(key)
	if !ok {
		return nil, false
	}
	if val.Kind == KindString {
		if deadline, hasDeadline := e.expires.Get(key); hasDeadline && deadline.expired(time.Now()) {
			e.values.Del(key)
			e.expires.Del(key)
			return nil, false
		}
	}
	return val, true
}

// --- 4.B Keyspace -----------------------------------------------------

func (e *Engine) Set(key string, val []byte, pxMillis int64, havePx bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.values.Set(key, newStringValue(val))
	if havePx {
		e.expires.Set(key, expiryEntry{deadline: time.Now().Add(time.Duration(pxMillis) * time.Millisecond)})
	} else {
		e.expires.Del(key)
	}
	return nil
}

// Get returns (value, true), or (nil, false) if key is absent/expired. A key
// holding a non-string value yields errWrongTypeNotString.
func (e *Engine) Get(key string) ([]byte, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	val, ok := e.lookup(key)
	if !ok {
		return nil, false, nil
	}
	if val.Kind != KindString {
		return nil, false, errWrongTypeNotString
	}
	return val.Str, true, nil
}

// Incr implements INCR: absent keys start at 1 (invariant I5 only applies
// once a value exists).
func (e *Engine) Incr(key string) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	val, ok := e.lookup(key)
	if !ok {
		e.values.Set(key, newStringValue([]byte("1")))
		return 1, nil
	}
	if val.Kind != KindString {
		return 0, errWrongTypeNotString
	}
	n, err := strconv.ParseInt(string(val.Str), 10, 64)
	if err != nil {
		return 0, errNotInteger
	}
	n++
	val.Str = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

// Type implements TYPE: none/string/list/stream.
func (e *Engine) Type(key string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	val, ok := e.lookup(key)
	if !ok {
		return "none"
	}
	return val.Kind.String()
}

// Keys returns every live (non-expired) key. KEYS does not examine its
// pattern argument: every pattern lists all keys, as "*" would.
func (e *Engine) Keys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	keys := make([]string, 0)
	e.values.ForEach(func(key string, val *Value) bool {
		if val.Kind == KindString {
			if deadline, hasDeadline := e.expires.Get(key); hasDeadline && deadline.expired(now) {
				return true
			}
		}
		keys = append(keys, key)
		return true
	})
	return keys
}
