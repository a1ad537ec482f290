package diyredis

import (
	"errors"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
)

// Server owns the listener and the single shared Engine; every accepted
// connection gets its own Session running against that one Engine (spec.md
// §9: "a single owned keyspace passed by reference to each connection
// task"). The teacher's per-connection db slice (Server.dbs / Session.
// SwitchDB) addressed a feature this core doesn't have (SELECT-style
// multiple databases) and is dropped.
type Server struct {
	Port int

	// ConfigDir/ConfigDBFilename back the supplemental CONFIG GET
	// dir/dbfilename commands inherited from the teacher (see commands.go).
	// Durability itself is out of scope, so nothing ever reads or writes
	// these paths.
	ConfigDir        string
	ConfigDBFilename string

	listener net.Listener
	quitCh   chan os.Signal
	wg       sync.WaitGroup

	engine *Engine
	log    *logrus.Logger
}

func NewServer(port int) *Server {
	return &Server{
		Port:   port,
		quitCh: make(chan os.Signal, 1),
		engine: NewEngine(),
		log:    logrus.StandardLogger(),
	}
}

// Start binds the listener, serves connections in the background, and
// blocks until a shutdown signal arrives, then waits for in-flight
// connections to finish. Returns an error if the bind itself fails (caller
// maps that to exit code 1, per spec.md §6).
func (srv *Server) Start() error {
	listener, err := net.Listen("tcp", "0.0.0.0:"+strconv.Itoa(srv.Port))
	if err != nil {
		return err
	}
	srv.listener = listener
	defer listener.Close()

	go srv.serve()

	signal.Notify(srv.quitCh, syscall.SIGINT, syscall.SIGTERM)
	srv.log.WithField("port", srv.Port).Info("listening")

	<-srv.quitCh
	srv.log.Info("shutting down")
	listener.Close()
	srv.wg.Wait()
	srv.log.Info("shutdown complete")
	return nil
}

func (srv *Server) serve() {
	for {
		conn, err := srv.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			srv.log.WithError(err).Error("accept failed")
			return
		}

		srv.wg.Add(1)
		go func() {
			defer srv.wg.Done()
			newSession(srv, conn).HandleConnection()
		}()
	}
}
