// Package server implements the collaborative-editing server core: the
// session registry, the TCP listener and per-connection readers, the
// single-dispatcher request pipeline, and the broadcast fan-out.
package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deepakn94/CollabTeX/internal/protocol"
	"github.com/deepakn94/CollabTeX/pkg/logger"
)

// Config holds all server configuration.
type Config struct {
	Port      int    // TCP port for the line protocol (default 4444)
	HTTPAddr  string // optional address for the WebSocket bridge, stats, and metrics; empty disables it
	QueueSize int    // request queue capacity (default 4096)
	Palette   []Color
}

// Server owns the registry, the request queue, and the transports.
type Server struct {
	cfg       Config
	registry  *Registry
	queue     chan queuedRequest
	metrics   *Metrics
	startTime time.Time
}

// New creates a server from the configuration, filling in defaults.
func New(cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = protocol.DefaultPort
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 4096
	}
	return &Server{
		cfg:       cfg,
		registry:  NewRegistry(cfg.Palette),
		queue:     make(chan queuedRequest, cfg.QueueSize),
		metrics:   newMetrics(),
		startTime: time.Now(),
	}
}

// Registry exposes the session registry, mainly for tests and stats.
func (s *Server) Registry() *Registry { return s.registry }

// Run binds the configured TCP port and serves until the context is
// canceled. A listener error is fatal and is returned to the caller.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}
	logger.Info("listening on %s", ln.Addr())
	return s.Serve(ctx, ln)
}

// Serve runs the dispatcher and the accept loop over an existing listener.
// It returns when the context is canceled or the listener fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.runDispatcher(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		ln.Close()
		s.registry.CloseAll()
		return nil
	})

	g.Go(func() error {
		var wg sync.WaitGroup
		defer wg.Wait()
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("accept: %w", err)
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.serveConn(ctx, conn)
			}()
		}
	})

	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

// serveConn is the per-connection reader: it registers the writer (which
// sends the id handshake to this connection only), then drains framed
// lines into the request queue until the socket breaks. On EOF or error
// the connection's user is force-logged-out and the writer removed; the
// failure never reaches the dispatcher.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	id := s.registry.Register(&tcpWriter{conn: conn}, protocol.IDResponse)
	s.metrics.ConnectionsTotal.Inc()
	s.metrics.ActiveConnections.Inc()
	logger.Info("connection %d accepted from %s", id, conn.RemoteAddr())

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		if !s.enqueue(ctx, id, line) {
			break
		}
	}

	user, wasBound := s.registry.Disconnect(id)
	conn.Close()
	s.metrics.ActiveConnections.Dec()
	s.metrics.OnlineUsers.Set(float64(s.registry.OnlineCount()))
	if wasBound {
		logger.Info("connection %d closed, user %q force-logged-out", id, user)
	} else {
		logger.Info("connection %d closed", id)
	}
}

// tcpWriter adapts a net.Conn to the LineWriter broadcast sink. Writes are
// blocking; a hung peer stalls broadcast until its socket breaks.
type tcpWriter struct {
	conn net.Conn
}

func (w *tcpWriter) WriteLine(line string) error {
	_, err := w.conn.Write([]byte(line + "\n"))
	return err
}

func (w *tcpWriter) Close() error {
	return w.conn.Close()
}
