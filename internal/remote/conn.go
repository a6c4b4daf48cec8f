package remote

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/event"
	"github.com/dshills/touchemu/internal/logging"
	"github.com/dshills/touchemu/internal/scene"
	"github.com/dshills/touchemu/internal/touch"
)

const sendBuffer = 256

// conn is one client. All engine calls happen on the read goroutine.
type conn struct {
	id     string
	server *Server
	ws     *websocket.Conn
	logger *logging.Logger

	scene  *scene.Scene
	engine *touch.Engine
	bus    *event.Bus

	cleanup func()

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newConn(s *Server, ws *websocket.Conn, cfg touch.Config) (*conn, error) {
	c := &conn{
		id:     uuid.NewString(),
		server: s,
		ws:     ws,
		scene:  scene.New(),
		bus:    event.NewBus(),
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	c.logger = s.logger.WithField("conn", c.id[:8])

	engine, err := c.scene.Attach(cfg,
		touch.WithBus(c.bus),
		touch.WithLogger(c.logger),
		touch.WithAlerter(dom.AlerterFunc(c.alert)),
	)
	if err != nil {
		return nil, err
	}
	c.engine = engine

	for _, pattern := range []event.Topic{"mouse.*", "touch.**"} {
		if _, err := c.bus.Subscribe(pattern, c.forward); err != nil {
			return nil, err
		}
	}

	if s.hook != nil {
		cleanup, err := s.hook(engine)
		if err != nil {
			return nil, err
		}
		c.cleanup = cleanup
	}
	return c, nil
}

// run pumps messages until the client goes away.
func (c *conn) run() {
	c.logger.Info("client connected from %s", c.ws.RemoteAddr())

	hello, err := EncodeHello(c.id, scene.Width, scene.Height)
	if err == nil {
		c.enqueue(hello)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writePump()
	}()

	c.readPump()
	c.close()
	wg.Wait()

	if err := c.engine.Detach(); err != nil {
		c.logger.Warn("detach: %v", err)
	}
	if c.cleanup != nil {
		c.cleanup()
	}
	c.logger.Info("client disconnected")
}

func (c *conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

func (c *conn) pongWait() time.Duration {
	return 2 * c.server.cfg.PingInterval.Std()
}

func (c *conn) readPump() {
	c.ws.SetReadLimit(c.server.cfg.ReadLimit)
	if wait := c.pongWait(); wait > 0 {
		_ = c.ws.SetReadDeadline(time.Now().Add(wait))
		c.ws.SetPongHandler(func(string) error {
			return c.ws.SetReadDeadline(time.Now().Add(wait))
		})
	}

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read error: %v", err)
			}
			return
		}

		msg, err := DecodeMessage(data)
		if err != nil {
			c.logger.Debug("rejected message: %v", err)
			if b, encErr := EncodeError(err.Error()); encErr == nil {
				c.enqueue(b)
			}
			continue
		}
		c.dispatch(msg)
	}
}

// dispatch feeds msg to the scene. Only the first touch point is used;
// the engine follows a single finger.
func (c *conn) dispatch(m Message) {
	switch m.Class {
	case ClassTouch:
		p, ok := m.Point()
		switch {
		case m.Touch == dom.TouchCancel:
			c.scene.Cancel()
		case !ok:
			c.logger.Debug("%s without touch points", m.Touch)
		case m.Touch == dom.TouchStart:
			c.scene.Down(p.ClientX, p.ClientY)
		case m.Touch == dom.TouchMove:
			c.scene.Move(p.ClientX, p.ClientY)
		case m.Touch == dom.TouchEnd:
			c.scene.Up(p.ClientX, p.ClientY)
		}
	case ClassGesture:
		c.scene.Gesture(m.Gesture, m.X, m.Y, m.Scale, m.Rotation)
	case ClassOrientation:
		c.scene.Doc.DispatchOrientation(&dom.OrientationEvent{Orientation: m.Orientation})
	}
}

func (c *conn) writePump() {
	var ping <-chan time.Time
	if interval := c.server.cfg.PingInterval.Std(); interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		ping = ticker.C
	}
	writeWait := c.server.cfg.WriteTimeout.Std()

	for {
		select {
		case <-c.done:
			return

		case msg := <-c.send:
			if writeWait > 0 {
				_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Warn("write error: %v", err)
				c.close()
				return
			}

		case <-ping:
			if writeWait > 0 {
				_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			}
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

// forward encodes bus events for the client.
func (c *conn) forward(ev event.Envelope) {
	b, err := EncodeEvent(ev)
	if err != nil {
		c.logger.Warn("encode %s: %v", ev.EventTopic(), err)
		return
	}
	if b != nil {
		c.enqueue(b)
	}
}

// enqueue never blocks the engine. A client that falls sendBuffer messages
// behind is disconnected.
func (c *conn) enqueue(b []byte) {
	select {
	case c.send <- b:
	case <-c.done:
	default:
		c.logger.Warn("%v, closing", ErrSlowClient)
		c.close()
	}
}

func (c *conn) alert(msg string) {
	if b, err := EncodeError(msg); err == nil {
		c.enqueue(b)
	}
}
