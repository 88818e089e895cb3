package server

import (
	"context"

	"github.com/deepakn94/CollabTeX/internal/protocol"
	"github.com/deepakn94/CollabTeX/pkg/logger"
)

// queuedRequest is one raw wire line tagged with the connection it came
// from, waiting in the shared FIFO queue.
type queuedRequest struct {
	connID uint64
	line   string
}

// runDispatcher is the single serialization point: it drains the request
// queue, executes each handler against the model and registry, and fans
// the response out to every writer. Because it is the only consumer and
// broadcasts in a fixed iteration order, every client observes every
// response in the same global order.
func (s *Server) runDispatcher(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case qr := <-s.queue:
			req := protocol.Parse(qr.connID, qr.line)
			s.metrics.RequestsTotal.WithLabelValues(string(req.Kind)).Inc()
			logger.Debug("dispatch %s from connection %d", req.Kind, req.ConnID)

			resp := s.execute(req)
			n := s.registry.Broadcast(resp)
			s.metrics.BroadcastsTotal.Inc()
			s.metrics.BroadcastWrites.Add(float64(n))
			s.metrics.OnlineUsers.Set(float64(s.registry.OnlineCount()))
			s.metrics.Documents.Set(float64(len(s.registry.Documents())))
		}
	}
}

// enqueue places one raw line on the request queue, giving up if the
// server is shutting down.
func (s *Server) enqueue(ctx context.Context, connID uint64, line string) bool {
	select {
	case s.queue <- queuedRequest{connID: connID, line: line}:
		return true
	case <-ctx.Done():
		return false
	}
}
