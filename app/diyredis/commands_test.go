package diyredis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConcreteScenarios exercises the literal input/output pairs from
// spec.md §8.
func TestConcreteScenarios(t *testing.T) {
	s := newTestSession()

	require.Equal(t, "+PONG\r\n", s.runAndTakeReply([]string{"PING"}))

	require.Equal(t, "+OK\r\n", s.runAndTakeReply([]string{"SET", "x", "hello"}))
	require.Equal(t, "$5\r\nhello\r\n", s.runAndTakeReply([]string{"GET", "x"}))

	require.Equal(t, ":3\r\n", s.runAndTakeReply([]string{"RPUSH", "L", "a", "b", "c"}))
	require.Equal(t, "*3\r\n$1\r\na\r\n$1\r\nb\r\n$1\r\nc\r\n", s.runAndTakeReply([]string{"LRANGE", "L", "0", "-1"}))

	require.Equal(t, "$3\r\n1-1\r\n", s.runAndTakeReply([]string{"XADD", "st", "1-1", "k", "v"}))
	reply := s.runAndTakeReply([]string{"XADD", "st", "1-1", "k", "v"})
	require.Equal(t, "-"+errIDNotIncreasing.Error()+"\r\n", reply)

	s2 := newTestSession()
	require.Equal(t, "+OK\r\n", s2.runAndTakeReply([]string{"MULTI"}))
	require.Equal(t, "+QUEUED\r\n", s2.runAndTakeReply([]string{"INCR", "n"}))
	require.Equal(t, "+QUEUED\r\n", s2.runAndTakeReply([]string{"INCR", "n"}))
	require.Equal(t, "*2\r\n:1\r\n:2\r\n", s2.runAndTakeReply([]string{"EXEC"}))
}

func TestEchoRoundTrip(t *testing.T) {
	s := newTestSession()
	require.Equal(t, "$2\r\nhi\r\n", s.runAndTakeReply([]string{"ECHO", "hi"}))
}

func TestGetMissingReturnsNullBulk(t *testing.T) {
	s := newTestSession()
	require.Equal(t, "$-1\r\n", s.runAndTakeReply([]string{"GET", "missing"}))
}

func TestSetInvalidPX(t *testing.T) {
	s := newTestSession()
	reply := s.runAndTakeReply([]string{"SET", "x", "v", "PX", "not-a-number"})
	require.Equal(t, "-"+errInvalidPX.Error()+"\r\n", reply)
}

func TestUnknownCommand(t *testing.T) {
	s := newTestSession()
	reply := s.runAndTakeReply([]string{"FROBNICATE"})
	require.Equal(t, "-"+errUnknownCommand.Error()+"\r\n", reply)
}

func TestArityError(t *testing.T) {
	s := newTestSession()
	reply := s.runAndTakeReply([]string{"GET"})
	require.Equal(t, "-"+arityErr("get").Error()+"\r\n", reply)
}

func TestXAddBelowMinimumID(t *testing.T) {
	s := newTestSession()
	reply := s.runAndTakeReply([]string{"XADD", "st", "0-0", "k", "v"})
	require.Equal(t, "-"+errIDTooSmall.Error()+"\r\n", reply)
}

func TestXRangeAndXReadRoundTrip(t *testing.T) {
	s := newTestSession()
	s.runAndTakeReply([]string{"XADD", "st", "1-1", "a", "1"})
	s.runAndTakeReply([]string{"XADD", "st", "1-2", "b", "2"})

	reply := s.runAndTakeReply([]string{"XRANGE", "st", "-", "+"})
	require.Equal(t,
		"*2\r\n"+
			"*2\r\n$3\r\n1-1\r\n*2\r\n$1\r\na\r\n$1\r\n1\r\n"+
			"*2\r\n$3\r\n1-2\r\n*2\r\n$1\r\nb\r\n$1\r\n2\r\n",
		reply,
	)

	reply = s.runAndTakeReply([]string{"XREAD", "STREAMS", "st", "0"})
	require.Equal(t,
		"*1\r\n*2\r\n$2\r\nst\r\n"+
			"*2\r\n*2\r\n$3\r\n1-1\r\n*2\r\n$1\r\na\r\n$1\r\n1\r\n"+
			"*2\r\n$3\r\n1-2\r\n*2\r\n$1\r\nb\r\n$1\r\n2\r\n",
		reply,
	)
}

func TestTypeCommand(t *testing.T) {
	s := newTestSession()
	require.Equal(t, "+none\r\n", s.runAndTakeReply([]string{"TYPE", "missing"}))

	s.runAndTakeReply([]string{"SET", "x", "v"})
	require.Equal(t, "+string\r\n", s.runAndTakeReply([]string{"TYPE", "x"}))
}

func TestLPopNullAndEmptyArrayShapes(t *testing.T) {
	s := newTestSession()
	require.Equal(t, "$-1\r\n", s.runAndTakeReply([]string{"LPOP", "missing"}))
	require.Equal(t, "*0\r\n", s.runAndTakeReply([]string{"LPOP", "missing", "3"}))
}

func TestInfoReplicationSection(t *testing.T) {
	s := newTestSession()
	require.Equal(t, "$11\r\nrole:master\r\n", s.runAndTakeReply([]string{"INFO", "replication"}))
	require.Equal(t, "$0\r\n\r\n", s.runAndTakeReply([]string{"INFO", "somethingelse"}))
}
