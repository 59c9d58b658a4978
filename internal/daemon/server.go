package daemon

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"

	"orchestra/internal/daemon/protocol"
	"orchestra/internal/logging"
	"orchestra/internal/orcherr"
)

// Server accepts connections over the Unix-domain control socket and
// handles each one on its own goroutine: it reads one newline-delimited
// JSON request, dispatches by cmd, writes one response, and closes.
type Server struct {
	home       string
	socketPath string
	startedAt  time.Time
	cache      *RegistryCache
	jobs       chan<- Job
	group      singleflight.Group
	stopFn     func()
}

// NewServer builds a Server bound to <home>/daemon.sock, or to
// socketOverride when the config names one.
func NewServer(home, socketOverride string, cache *RegistryCache, jobs chan<- Job, stopFn func()) *Server {
	socketPath := socketOverride
	if socketPath == "" {
		socketPath = filepath.Join(home, "daemon.sock")
	}
	return &Server{
		home:       home,
		socketPath: socketPath,
		startedAt:  time.Now(),
		cache:      cache,
		jobs:       jobs,
		stopFn:     stopFn,
	}
}

// SocketPath returns the bound socket's filesystem path.
func (s *Server) SocketPath() string { return s.socketPath }

// Listen binds the socket, detecting and clearing a stale socket file
// left behind by a crashed prior daemon: a connect attempt that
// succeeds means a live daemon owns the socket; one that fails means
// the file is stale and safe to remove.
func (s *Server) Listen() (net.Listener, error) {
	if conn, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond); err == nil {
		conn.Close()
		return nil, orcherr.New(orcherr.KindProtocol, "socket already in use")
	}
	os.Remove(s.socketPath)

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return nil, orcherr.WrapPath(orcherr.KindIO, s.socketPath, err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		ln.Close()
		return nil, orcherr.WrapPath(orcherr.KindIO, s.socketPath, err)
	}
	return ln, nil
}

// Serve accepts connections until ctx is cancelled, at which point it
// closes ln and unlinks the socket file.
func (s *Server) Serve(ctx context.Context, ln net.Listener) {
	defer os.Remove(s.socketPath)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logging.Get(logging.CategorySocket).Error("accept error: %v", err)
				continue
			}
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	req, err := protocol.ReadRequest(reader)
	if err != nil {
		protocol.WriteResponse(writer, protocol.ErrString(err.Error()))
		return
	}

	resp := s.dispatch(req)
	if err := protocol.WriteResponse(writer, resp); err != nil {
		logging.Get(logging.CategorySocket).Error("write response: %v", err)
	}
}

func (s *Server) dispatch(req protocol.Request) protocol.Response {
	switch req.Cmd {
	case "status":
		return s.handleStatus()
	case "sync":
		return s.handleSync(req.Codebase)
	case "stop":
		if s.stopFn != nil {
			go s.stopFn()
		}
		return protocol.OK(protocol.StopData{Stopping: true})
	default:
		return protocol.ErrString("unknown cmd: " + req.Cmd)
	}
}

func (s *Server) handleStatus() protocol.Response {
	v, _, _ := s.group.Do("status", func() (interface{}, error) {
		names := s.cache.Names()
		return protocol.StatusData{
			Running:       true,
			Label:         "orchestra",
			StartedAtUnix: s.startedAt.Unix(),
			CodebaseCount: len(names),
			Codebases:     names,
			Socket:        s.socketPath,
			ProjectsRoot:  filepath.Join(s.home, "projects"),
		}, nil
	})
	return protocol.OK(v)
}

func (s *Server) handleSync(codebase string) protocol.Response {
	scope := scopeFromRequest(codebase)

	reply := make(chan SyncOutcome, 1)
	job := Job{Scope: scope, Source: "client", Reply: reply}

	select {
	case s.jobs <- job:
	default:
		return protocol.ErrString("sync queue full")
	}

	outcome := <-reply
	return protocol.OK(protocol.SyncSummary{
		JobID:      outcome.JobID,
		Target:     outcome.Target,
		Source:     outcome.Source,
		Codebases:  outcome.Codebases,
		Written:    outcome.Written,
		Unchanged:  outcome.Unchanged,
		DurationMs: outcome.Duration.Milliseconds(),
		Errors:     outcome.Errors,
	})
}
