package diyredis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	srv := NewServer(0)
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		server: srv,
		engine: srv.engine,
		log:    srv.log.WithField("test", true),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Session) runAndTakeReply(cmd []string) string {
	s.dispatch(cmd)
	return s.enc.StringAndReset()
}

func TestExecWithoutMultiErrors(t *testing.T) {
	s := newTestSession()
	reply := s.runAndTakeReply([]string{"EXEC"})
	require.Equal(t, "-"+errExecWithoutMulti.Error()+"\r\n", reply)
}

func TestDiscardWithoutMultiErrors(t *testing.T) {
	s := newTestSession()
	reply := s.runAndTakeReply([]string{"DISCARD"})
	require.Equal(t, "-"+errDiscardWithoutMulti.Error()+"\r\n", reply)
}

func TestMultiQueuesAndExecReplays(t *testing.T) {
	s := newTestSession()
	require.Equal(t, "+OK\r\n", s.runAndTakeReply([]string{"MULTI"}))
	require.Equal(t, "+QUEUED\r\n", s.runAndTakeReply([]string{"INCR", "n"}))
	require.Equal(t, "+QUEUED\r\n", s.runAndTakeReply([]string{"INCR", "n"}))
	require.Equal(t, "*2\r\n:1\r\n:2\r\n", s.runAndTakeReply([]string{"EXEC"}))
}

func TestExecWithEmptyQueueIsIdempotent(t *testing.T) {
	s := newTestSession()
	s.runAndTakeReply([]string{"MULTI"})
	reply := s.runAndTakeReply([]string{"EXEC"})
	require.Equal(t, "*0\r\n", reply)

	n, err := s.engine.Incr("untouched")
	require.NoError(t, err)
	require.EqualValues(t, 1, n, "an empty EXEC must not have mutated the keyspace before this probe incremented it")
}

func TestDiscardClearsQueue(t *testing.T) {
	s := newTestSession()
	s.runAndTakeReply([]string{"MULTI"})
	s.runAndTakeReply([]string{"SET", "x", "1"})
	require.Equal(t, "+OK\r\n", s.runAndTakeReply([]string{"DISCARD"}))

	_, ok, err := s.engine.Get("x")
	require.NoError(t, err)
	require.False(t, ok, "a discarded transaction must not apply its queued commands")
}

func TestNestedMultiResetsQueue(t *testing.T) {
	s := newTestSession()
	s.runAndTakeReply([]string{"MULTI"})
	s.runAndTakeReply([]string{"SET", "x", "1"})
	require.Equal(t, "+OK\r\n", s.runAndTakeReply([]string{"MULTI"}))
	reply := s.runAndTakeReply([]string{"EXEC"})
	require.Equal(t, "*0\r\n", reply, "a nested MULTI must reset the queue, per the source's permissive behavior")
}

func TestBlockingCommandInsideExecIsNonBlocking(t *testing.T) {
	s := newTestSession()
	s.runAndTakeReply([]string{"MULTI"})
	s.runAndTakeReply([]string{"BLPOP", "q", "0"})
	reply := s.runAndTakeReply([]string{"EXEC"})
	require.Equal(t, "*1\r\n$-1\r\n", reply, "BLPOP queued with timeout 0 must not block EXEC; it must reply null immediately")
}
