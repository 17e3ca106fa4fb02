// Package bridge receives hand landmarks from a browser page over a
// websocket.
//
// The page served at "/" opens the webcam, runs MediaPipe Hands with the
// options pushed by the server and forwards every result to "/ws". The
// server is a pose.Source: Start binds the listener synchronously so a busy
// port is reported before the render loop starts.
package bridge

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iburimskiy/sunflower/internal/pose"
)

//go:embed static
var staticFiles embed.FS

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second

	// maxMessage bounds one landmark frame; 21 points per hand is tiny.
	maxMessage = 64 << 10
)

// envelope is the wire format of every message in both directions.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Config configures the bridge.
type Config struct {
	Addr    string
	Options pose.Options
	Width   int
	Height  int
}

// captureSettings is sent to the page alongside the detector options.
type captureSettings struct {
	pose.Options
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Server is a websocket landmark bridge.
type Server struct {
	cfg    Config
	logger *slog.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	current  *websocket.Conn
	listener net.Listener
	srv      *http.Server
	onResult func(pose.Result)
}

// New creates a bridge server. Nothing is bound until Start.
func New(cfg Config, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger.With("component", "bridge"),
		upgrader: websocket.Upgrader{
			// the detector page is served by this process; any local origin is fine
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler serving the page and the websocket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	sub, _ := fs.Sub(staticFiles, "static")
	mux.Handle("/", http.FileServer(http.FS(sub)))
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Start binds the listener and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, onResult func(pose.Result)) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln, onResult)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, onResult func(pose.Result)) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.mu.Lock()
	s.listener = ln
	s.srv = srv
	s.onResult = onResult
	s.mu.Unlock()

	s.logger.Info("landmark bridge listening", "url", "http://"+ln.Addr().String()+"/")

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("bridge server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		s.close()
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) close() {
	s.mu.Lock()
	srv, conn := s.srv, s.current
	s.current = nil
	s.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	s.logger.Info("landmark bridge stopped")
}

// handleWS upgrades a detector page. A new page replaces the previous one.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	prev := s.current
	s.current = conn
	onResult := s.onResult
	s.mu.Unlock()
	if prev != nil {
		s.logger.Info("replacing detector client", "remote_addr", prev.RemoteAddr().String())
		_ = prev.Close()
	}
	s.logger.Info("detector client connected", "remote_addr", r.RemoteAddr)

	if err := s.sendOptions(conn); err != nil {
		s.logger.Warn("sending options failed", "remote_addr", r.RemoteAddr, "error", err)
		s.drop(conn)
		return
	}

	done := make(chan struct{})
	go s.keepalive(conn, done)
	s.readLoop(conn, r.RemoteAddr, onResult)
	close(done)
	s.drop(conn)
}

func (s *Server) sendOptions(conn *websocket.Conn) error {
	data, err := json.Marshal(captureSettings{
		Options: s.cfg.Options,
		Width:   s.cfg.Width,
		Height:  s.cfg.Height,
	})
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	msg, err := json.Marshal(envelope{Type: "options", Data: data})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, msg)
}

// keepalive pings the page so a closed tab is noticed by readLoop.
func (s *Server) keepalive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) readLoop(conn *websocket.Conn, remote string, onResult func(pose.Result)) {
	conn.SetReadLimit(maxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				s.logger.Info("detector client closed", "remote_addr", remote, "code", ce.Code, "reason", ce.Text)
			} else {
				s.logger.Info("detector client gone", "remote_addr", remote, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		res, ok, err := decode(msg)
		if err != nil {
			// one bad frame is dropped, the connection stays
			s.logger.Debug("bad landmark message", "remote_addr", remote, "error", err)
			continue
		}
		if ok && onResult != nil {
			onResult(res)
		}
	}
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	if s.current == conn {
		s.current = nil
	}
	s.mu.Unlock()
	_ = conn.Close()
}

// decode parses one inbound message. ok is false for message types that
// carry no result.
func decode(msg []byte) (pose.Result, bool, error) {
	var env envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return pose.Result{}, false, fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Type {
	case "results":
		var res pose.Result
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &res); err != nil {
				return pose.Result{}, false, fmt.Errorf("decode results: %w", err)
			}
		}
		res.At = time.Now()
		return res, true, nil
	case "hello", "status":
		return pose.Result{}, false, nil
	default:
		return pose.Result{}, false, fmt.Errorf("unknown message type %q", env.Type)
	}
}
