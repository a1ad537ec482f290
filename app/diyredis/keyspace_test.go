package diyredis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Set("x", []byte("hello"), 0, false))

	val, ok, err := e.Get("x")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", string(val))
}

func TestGetMissingKey(t *testing.T) {
	e := NewEngine()
	_, ok, err := e.Get("nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetWrongType(t *testing.T) {
	e := NewEngine()
	_, err := e.RPush("l", [][]byte{[]byte("a")})
	require.NoError(t, err)

	_, _, err = e.Get("l")
	require.ErrorIs(t, err, errWrongTypeNotString)
}

func TestSetPXExpiry(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Set("x", []byte("v"), 20, true))

	_, ok, err := e.Get("x")
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok, err = e.Get("x")
	require.NoError(t, err)
	require.False(t, ok, "key must read as absent once its PX deadline has passed")
}

func TestSetClearsPriorExpiry(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Set("x", []byte("v"), 10, true))
	require.NoError(t, e.Set("x", []byte("v2"), 0, false))

	time.Sleep(20 * time.Millisecond)

	val, ok, err := e.Get("x")
	require.NoError(t, err)
	require.True(t, ok, "a later SET without PX must clear the earlier expiry")
	require.Equal(t, "v2", string(val))
}

func TestIncrFromAbsent(t *testing.T) {
	e := NewEngine()
	n, err := e.Incr("counter")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = e.Incr("counter")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestIncrNonInteger(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Set("x", []byte("not-a-number"), 0, false))

	_, err := e.Incr("x")
	require.Error(t, err)

	// A failed INCR must not mutate the value.
	val, ok, err := e.Get("x")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "not-a-number", string(val))
}

func TestTypeReportsKinds(t *testing.T) {
	e := NewEngine()
	require.Equal(t, "none", e.Type("missing"))

	require.NoError(t, e.Set("s", []byte("v"), 0, false))
	require.Equal(t, "string", e.Type("s"))

	_, err := e.RPush("l", [][]byte{[]byte("a")})
	require.NoError(t, err)
	require.Equal(t, "list", e.Type("l"))

	_, err = e.XAdd("st", "*", []string{"f", "v"})
	require.NoError(t, err)
	require.Equal(t, "stream", e.Type("st"))
}

func TestKeysSkipsExpired(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Set("live", []byte("v"), 0, false))
	require.NoError(t, e.Set("dead", []byte("v"), 5, true))
	time.Sleep(15 * time.Millisecond)

	keys := e.Keys()
	require.Contains(t, keys, "live")
	require.NotContains(t, keys, "dead")
}
