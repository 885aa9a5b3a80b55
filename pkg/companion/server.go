package companion

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Enginex0/nomount-vfs/internal/errx"
	"github.com/Enginex0/nomount-vfs/pkg/ledger"
	"github.com/Enginex0/nomount-vfs/pkg/rule"
)

const (
	DefaultSocketPath = "/dev/socket/nomount_companion"
	socketMode        = 0o660
	recordTimeout     = 5 * time.Second
)

// Cred identifies the process on the other end of a connection.
type Cred struct {
	PID int32
	UID uint32
	GID uint32
}

// Recorder persists served sessions. *ledger.Ledger satisfies it.
type Recorder interface {
	Record(ctx context.Context, s ledger.Session) error
}

type ServerOption func(*Server)

func WithRecorder(r Recorder) ServerOption {
	return func(s *Server) { s.recorder = r }
}

func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// Server accepts clients on a unix stream socket and serves each connection
// on its own goroutine.
type Server struct {
	companion *Companion
	recorder  Recorder
	logger    *slog.Logger

	listener net.Listener
	wg       sync.WaitGroup
	mu       sync.Mutex
	stopped  bool
}

func NewServer(c *Companion, opts ...ServerOption) *Server {
	s := &Server{companion: c, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Server) Start(socketPath string) error {
	_ = os.Remove(socketPath)
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return errx.With(ErrListen, " %s: %w", socketPath, err)
	}
	if err := os.Chmod(socketPath, socketMode); err != nil {
		_ = listener.Close()
		return errx.With(ErrListen, " chmod %s: %w", socketPath, err)
	}
	s.listener = listener
	s.logger.Info("companion: listening", "socket", socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			stopped := s.stopped
			s.mu.Unlock()
			if stopped || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("companion: accept", "error", err)
			continue
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// Stop closes the listener and waits for in-flight connections.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
}

func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()

	sess := ledger.Session{ID: uuid.NewString(), Time: time.Now()}
	if cred, err := peerCred(conn); err == nil {
		sess.PeerPID = cred.PID
		sess.PeerUID = cred.UID
	} else {
		s.logger.Debug("companion: peer credentials", "session", sess.ID, "error", err)
	}

	err := s.companion.Serve(conn)
	sess.Mode = s.companion.Mode()
	if sess.Mode == rule.ModeHybrid {
		sess.Rules = len(s.companion.Rules())
	}
	if err != nil {
		sess.Err = err.Error()
	}
	s.logger.Info("companion: served",
		"session", sess.ID, "pid", sess.PeerPID, "uid", sess.PeerUID,
		"mode", sess.Mode, "rules", sess.Rules)

	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := s.recorder.Record(ctx, sess); err != nil {
		s.logger.Warn("companion: record session", "session", sess.ID, "error", err)
	}
}
