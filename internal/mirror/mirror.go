// Package mirror serves the current bar line over HTTP for debugging a bar
// without a renderer attached. It is read-only and never touches the poll
// state: it only sees finished frames.
package mirror

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Dicklesworthstone/statusline/internal/model"
)

const (
	sendBuffer   = 8
	writeTimeout = 5 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan model.Frame
}

// Mirror keeps the latest frame and streams new ones to websocket clients.
type Mirror struct {
	mu      sync.RWMutex
	latest  model.Frame
	have    bool
	clients map[*client]struct{}

	upgrader websocket.Upgrader
	log      *slog.Logger
}

func New(log *slog.Logger) *Mirror {
	if log == nil {
		log = slog.Default()
	}
	return &Mirror{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

// Publish stores f and offers it to every client. Slow clients miss frames.
func (m *Mirror) Publish(f model.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest, m.have = f, true
	for c := range m.clients {
		select {
		case c.send <- f:
		default:
		}
	}
}

// Latest returns the last published frame.
func (m *Mirror) Latest() (model.Frame, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.have
}

// Handler routes /status, /line and /ws.
func (m *Mirror) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), m.accessLog())

	r.GET("/status", m.getStatus)
	r.GET("/line", m.getLine)
	r.GET("/ws", m.stream)
	return r
}

// Serve listens on addr until ctx is done.
func (m *Mirror) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		m.log.Info("mirror listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.closeClients()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (m *Mirror) getStatus(c *gin.Context) {
	f, ok := m.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no frame yet"})
		return
	}
	c.JSON(http.StatusOK, f)
}

func (m *Mirror) getLine(c *gin.Context) {
	f, ok := m.Latest()
	if !ok {
		c.String(http.StatusServiceUnavailable, "no frame yet\n")
		return
	}
	c.String(http.StatusOK, f.Line+"\n")
}

func (m *Mirror) stream(c *gin.Context) {
	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		m.log.Warn("websocket upgrade failed", "client", c.ClientIP(), "err", err)
		return
	}
	cl := &client{conn: conn, send: make(chan model.Frame, sendBuffer)}

	m.mu.Lock()
	if m.have {
		cl.send <- m.latest
	}
	m.clients[cl] = struct{}{}
	m.mu.Unlock()
	m.log.Debug("websocket client connected", "client", c.ClientIP())

	go m.writePump(cl)
	m.readPump(cl)
}

// readPump only exists to notice the client going away.
func (m *Mirror) readPump(cl *client) {
	defer m.drop(cl)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.log.Debug("websocket read", "err", err)
			}
			return
		}
	}
}

func (m *Mirror) writePump(cl *client) {
	defer cl.conn.Close()
	for f := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := cl.conn.WriteJSON(f); err != nil {
			m.drop(cl)
			return
		}
	}
	_ = cl.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

func (m *Mirror) drop(cl *client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[cl]; ok {
		delete(m.clients, cl)
		close(cl.send)
	}
}

func (m *Mirror) closeClients() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for cl := range m.clients {
		delete(m.clients, cl)
		close(cl.send)
	}
}

func (m *Mirror) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.log.Debug("mirror request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}
