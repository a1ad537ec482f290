package diyredis

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"

	"github.com/sirupsen/logrus"

	resp3 "github.com/flonle/diyredis/app/diyredis/resp3"
)

// Session is one client connection. It runs a reader goroutine (frame
// decoding) paired with an executor goroutine (command dispatch), per
// SPEC_FULL.md's concurrency design: this gives blocking commands
// (BLPOP, XREAD BLOCK) a single, uniform cancellation point — the
// executor selects on "wait satisfied" vs "timeout expired" vs "socket
// torn down" — instead of juggling read deadlines.
//
// frames is buffered with exactly one slot: a second pipelined command
// arriving while the executor is parked in a blocking wait is held there
// (the reader blocks on the next send) rather than dropped or requiring an
// unbounded queue.
type Session struct {
	server *Server
	conn   net.Conn
	engine *Engine
	log    *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	enc resp3.Encoder
	tx  transaction
	// inExec is set for the duration of an EXEC's sequential replay, so
	// blocking commands queued inside a transaction run as single
	// non-blocking attempts instead of parking (spec.md §4.F).
	inExec bool
}

func newSession(server *Server, conn net.Conn) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		server: server,
		conn:   conn,
		engine: server.engine,
		log:    server.log.WithField("remote", conn.RemoteAddr().String()),
		ctx:    ctx,
		cancel: cancel,
	}
}

// HandleConnection runs the reader/executor pair until the connection
// closes. It blocks until both goroutines have exited.
func (s *Session) HandleConnection() {
	defer s.conn.Close()
	defer s.cancel()

	frames := make(chan []string, 1)
	readErrs := make(chan error, 1)
	go s.readFrames(frames, readErrs)

	for frame := range frames {
		if len(frame) == 0 {
			continue
		}
		s.dispatch(frame)
		if _, err := s.conn.Write([]byte(s.enc.StringAndReset())); err != nil {
			s.log.WithError(err).Debug("write failed, closing connection")
			return
		}
	}

	if err := <-readErrs; err != nil && !errors.Is(err, io.EOF) {
		s.log.WithError(err).Debug("connection closed after read error")
	}
}

// readFrames decodes frames off the wire and feeds them to the executor.
// A malformed frame is silently skipped per spec.md §7 ("no reply"); only
// an actual I/O error (including EOF) ends the connection.
func (s *Session) readFrames(frames chan<- []string, errs chan<- error) {
	defer close(frames)
	reader := bufio.NewReader(s.conn)
	for {
		cmd, err := ParseCommand(reader)
		if err != nil {
			if isConnectionError(err) {
				// Wake any goroutine parked on s.ctx (BLPOP/XREAD BLOCK with
				// no timeout) immediately: HandleConnection's own
				// defer s.cancel() can't run until the frames loop it's
				// blocked on below returns, which would otherwise leave the
				// waiter dangling until the whole connection object is torn
				// down.
				s.cancel()
				errs <- err
				return
			}
			// Malformed frame: spec.md §7 says skip silently and keep the
			// connection open. reader's buffer position has already moved
			// past the offending bytes (ReadString consumed up to the next
			// newline), so the next ReadString attempt resumes from there.
			continue
		}
		frames <- cmd
	}
}

// isConnectionError reports whether err signals the socket itself is gone,
// as opposed to one frame being malformed. EOF, io.ErrUnexpectedEOF (a read
// cut short mid-frame) and network errors from the socket read mean the
// stream itself ended; everything else ParseCommand returns (bad prefix
// byte, unparseable or negative length) is a malformed frame.
func isConnectionError(err error) bool {
	var netErr net.Error
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) || errors.As(err, &netErr)
}
