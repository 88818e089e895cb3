package server

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/deepakn94/CollabTeX/pkg/document"
	"github.com/deepakn94/CollabTeX/pkg/logger"
)

// Color is an RGB triple serialized as "R,G,B" on the wire.
type Color struct {
	R, G, B uint8
}

func (c Color) String() string {
	return strconv.Itoa(int(c.R)) + "," + strconv.Itoa(int(c.G)) + "," + strconv.Itoa(int(c.B))
}

// DefaultPalette is the fixed color rotation assigned to users in login
// order: red, blue, green, orange, magenta, light gray.
var DefaultPalette = []Color{
	{255, 0, 0},
	{0, 0, 255},
	{0, 255, 0},
	{255, 200, 0},
	{255, 0, 255},
	{192, 192, 192},
}

// LineWriter is the per-connection output sink a broadcast targets. A
// write covers one response, which may span several newline-separated
// wire lines.
type LineWriter interface {
	WriteLine(line string) error
	Close() error
}

type registeredWriter struct {
	id uint64
	w  LineWriter
}

// Registry tracks all process-wide session state: online user names,
// connection-to-user bindings, user colors, connection writers, and the
// documents. One mutex covers every mutation and every iteration over the
// writers, so broadcasts and disconnects never interleave.
type Registry struct {
	mu         sync.Mutex
	palette    []Color
	nextConnID uint64

	onlineUsers map[string]struct{}
	userColor   map[string]Color
	socketUser  map[uint64]string
	writers     []registeredWriter

	documents []*document.Document
	docIndex  map[string]*document.Document
}

// NewRegistry creates an empty registry using the given palette.
func NewRegistry(palette []Color) *Registry {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &Registry{
		palette:     palette,
		onlineUsers: make(map[string]struct{}),
		userColor:   make(map[string]Color),
		socketUser:  make(map[uint64]string),
		docIndex:    make(map[string]*document.Document),
	}
}

// Register claims the next connection id, registers the writer, and sends
// the id handshake to that writer only, all under the lock so no broadcast
// can interleave with the handshake.
func (r *Registry) Register(w LineWriter, handshake func(uint64) string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextConnID++
	id := r.nextConnID
	r.writers = append(r.writers, registeredWriter{id: id, w: w})
	if err := w.WriteLine(handshake(id)); err != nil {
		logger.Error("handshake write to connection %d failed: %v", id, err)
	}
	return id
}

// Disconnect removes the connection's writer and force-logs-out its bound
// user, if any. The color mapping is retained so the user gets the same
// color back on the next login. It reports the user that was logged out.
func (r *Registry) Disconnect(id uint64) (user string, wasBound bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, rw := range r.writers {
		if rw.id == id {
			r.writers = append(r.writers[:i], r.writers[i+1:]...)
			_ = rw.w.Close()
			break
		}
	}

	user, wasBound = r.socketUser[id]
	if wasBound {
		delete(r.socketUser, id)
		delete(r.onlineUsers, user)
	}
	return user, wasBound
}

// Login binds name to the connection if the name is not already online.
// A color is assigned on first login and reused afterwards.
func (r *Registry) Login(name string, connID uint64) (Color, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, online := r.onlineUsers[name]; online {
		return Color{}, false
	}
	r.onlineUsers[name] = struct{}{}
	r.socketUser[connID] = name

	color, ok := r.userColor[name]
	if !ok {
		color = r.palette[(len(r.onlineUsers)-1)%len(r.palette)]
		r.userColor[name] = color
	}
	return color, true
}

// Logout removes the user from the online set and unbinds the connection.
// The color mapping is retained.
func (r *Registry) Logout(name string, connID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.onlineUsers, name)
	delete(r.socketUser, connID)
}

// UserColor returns the color assigned to name, if any.
func (r *Registry) UserColor(name string) (Color, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.userColor[name]
	return c, ok
}

// User returns the user name bound to the connection, if any.
func (r *Registry) User(connID uint64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.socketUser[connID]
	return name, ok
}

// CreateDocument creates a document unless the name is taken.
func (r *Registry) CreateDocument(name, creator string) (*document.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.docIndex[name]; exists {
		return nil, fmt.Errorf("document %q already exists", name)
	}
	doc := document.New(name, creator)
	r.documents = append(r.documents, doc)
	r.docIndex[name] = doc
	return doc, nil
}

// GetDocument looks a document up by name.
func (r *Registry) GetDocument(name string) (*document.Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docIndex[name]
	return doc, ok
}

// Documents returns the documents in creation order.
func (r *Registry) Documents() []*document.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*document.Document, len(r.documents))
	copy(out, r.documents)
	return out
}

// OnlineCount returns the number of logged-in users.
func (r *Registry) OnlineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.onlineUsers)
}

// ConnectionCount returns the number of registered writers.
func (r *Registry) ConnectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writers)
}

// Broadcast writes the response to every currently registered writer, in
// registration order. A failed writer is logged and skipped; its reader
// will observe the broken socket and deregister it.
func (r *Registry) Broadcast(resp string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rw := range r.writers {
		if err := rw.w.WriteLine(resp); err != nil {
			logger.Error("broadcast write to connection %d failed: %v", rw.id, err)
		}
	}
	return len(r.writers)
}

// CloseAll closes every registered writer. Used during shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rw := range r.writers {
		_ = rw.w.Close()
	}
	r.writers = nil
}
