// Package remote bridges touch input from a browser to the touch engine
// over a websocket.
//
// Every connection gets its own demo scene and engine. The client sends
// native touch, gesture and orientation events as JSON; the server answers
// with one JSON message per synthesized mouse event and per session,
// gesture or failure event published by the engine.
package remote

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/touchemu/internal/config"
	"github.com/dshills/touchemu/internal/logging"
	"github.com/dshills/touchemu/internal/touch"
)

// EngineHook is called with every new engine before input flows. The
// returned function, if any, runs when the connection closes.
type EngineHook func(e *touch.Engine) (cleanup func(), err error)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEngineHook installs a hook run for every connection's engine.
func WithEngineHook(h EngineHook) Option {
	return func(s *Server) {
		s.hook = h
	}
}

// Server accepts websocket clients and runs one engine per connection.
type Server struct {
	cfg       config.RemoteConfig
	engineCfg atomic.Pointer[touch.Config]
	logger    *logging.Logger
	hook      EngineHook
	upgrader  websocket.Upgrader

	mu    sync.Mutex
	conns map[*conn]struct{}

	accepted atomic.Int64
}

// NewServer creates a server. engineCfg applies to connections accepted
// later; see SetEngineConfig.
func NewServer(cfg config.RemoteConfig, engineCfg touch.Config, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logging.Nop(),
		conns:  make(map[*conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("remote")
	s.engineCfg.Store(&engineCfg)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// SetEngineConfig replaces the engine settings for new connections and
// pushes touch scrolling and new draggable types to the live ones.
func (s *Server) SetEngineConfig(cfg touch.Config) {
	s.engineCfg.Store(&cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.engine.SetTouchScrolling(cfg.TouchScrolling)
		for _, dt := range cfg.DraggableTypes {
			c.engine.AddDraggableType(dt.Kind, dt.Appearances...)
		}
	}
}

// Connections returns the number of open connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Accepted returns the number of connections accepted so far.
func (s *Server) Accepted() int64 { return s.accepted.Load() }

// Handler returns the HTTP handler serving the websocket endpoint at the
// configured path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.serveWS)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on ws://%s%s", ln.Addr(), s.cfg.Path)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeAll()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade from %s: %v", r.RemoteAddr, err)
		return
	}

	c, err := newConn(s, ws, *s.engineCfg.Load())
	if err != nil {
		s.logger.Error("connection setup: %v", err)
		_ = ws.Close()
		return
	}
	s.track(c, true)
	s.accepted.Add(1)
	defer s.track(c, false)

	c.run()
}

func (s *Server) track(c *conn, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if open {
		s.conns[c] = struct{}{}
	} else {
		delete(s.conns, c)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.close()
	}
}

// checkOrigin accepts requests without an Origin header (non-browser
// clients), then applies the allow-list. An empty list means same host.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.cfg.AllowedOrigins) == 0 {
		return sameHost(origin, r.Host)
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func sameHost(origin, host string) bool {
	_, rest, ok := strings.Cut(origin, "://")
	if !ok {
		return false
	}
	return strings.EqualFold(rest, host)
}
