package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"nhooyr.io/websocket"

	"github.com/deepakn94/CollabTeX/internal/protocol"
	"github.com/deepakn94/CollabTeX/pkg/logger"
)

// HTTPHandler exposes the optional HTTP surface: the WebSocket bridge for
// clients that cannot open a raw TCP socket, server statistics, and
// Prometheus metrics. A bridged connection is a full peer of a TCP one:
// same id space, same queue, same broadcast set.
func (s *Server) HTTPHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleSocket)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

// handleSocket upgrades the request and runs the same reader loop a TCP
// connection gets: every text message carries one or more request lines.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		logger.Error("websocket upgrade failed: %v", err)
		return
	}

	ctx := r.Context()
	id := s.registry.Register(&wsWriter{conn: conn}, protocol.IDResponse)
	s.metrics.ConnectionsTotal.Inc()
	s.metrics.ActiveConnections.Inc()
	logger.Info("websocket connection %d accepted", id)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimRight(line, "\r")
			if line == "" {
				continue
			}
			if !s.enqueue(ctx, id, line) {
				break
			}
		}
	}

	user, wasBound := s.registry.Disconnect(id)
	conn.Close(websocket.StatusNormalClosure, "")
	s.metrics.ActiveConnections.Dec()
	s.metrics.OnlineUsers.Set(float64(s.registry.OnlineCount()))
	if wasBound {
		logger.Info("websocket connection %d closed, user %q force-logged-out", id, user)
	} else {
		logger.Info("websocket connection %d closed", id)
	}
}

// Stats is the JSON body served at /api/stats.
type Stats struct {
	StartTime    int64 `json:"start_time"`
	NumDocuments int   `json:"num_documents"`
	OnlineUsers  int   `json:"online_users"`
	Connections  int   `json:"connections"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats := Stats{
		StartTime:    s.startTime.Unix(),
		NumDocuments: len(s.registry.Documents()),
		OnlineUsers:  s.registry.OnlineCount(),
		Connections:  s.registry.ConnectionCount(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// wsWriter adapts a WebSocket connection to the LineWriter broadcast sink.
// Each response travels as one text message; embedded newlines separate
// logical sub-responses exactly as on TCP.
type wsWriter struct {
	conn *websocket.Conn
}

func (w *wsWriter) WriteLine(line string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return w.conn.Write(ctx, websocket.MessageText, []byte(line))
}

func (w *wsWriter) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "")
}
