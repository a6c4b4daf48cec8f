package remote

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/event"
	"github.com/dshills/touchemu/internal/touch"
)

// Class groups client messages by the handler they go to.
type Class uint8

const (
	ClassTouch Class = iota
	ClassGesture
	ClassOrientation
)

// Message is a decoded client message.
//
//	{"type":"touchstart","touches":[{"id":0,"x":10,"y":20}],"changed":[...]}
//	{"type":"gesturechange","x":10,"y":20,"scale":1.5,"rotation":0}
//	{"type":"orientationchange","orientation":90}
type Message struct {
	Class Class

	Touch   dom.TouchType
	Gesture dom.GestureType

	Touches []dom.Touch
	Changed []dom.Touch

	// X and Y locate a gesture when it carries no touches.
	X, Y int

	Scale       float64
	Rotation    float64
	Orientation int
}

// Point returns the first active touch, falling back to the first changed
// touch.
func (m Message) Point() (dom.Touch, bool) {
	if len(m.Touches) > 0 {
		return m.Touches[0], true
	}
	if len(m.Changed) > 0 {
		return m.Changed[0], true
	}
	return dom.Touch{}, false
}

// DecodeMessage parses one client message.
func DecodeMessage(data []byte) (Message, error) {
	if !gjson.ValidBytes(data) {
		return Message{}, ErrMalformedMessage
	}
	root := gjson.ParseBytes(data)
	name := root.Get("type").String()
	if name == "" {
		return Message{}, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}

	m := Message{
		Touches:     decodeTouches(root.Get("touches")),
		Changed:     decodeTouches(root.Get("changed")),
		X:           int(root.Get("x").Int()),
		Y:           int(root.Get("y").Int()),
		Scale:       1,
		Orientation: int(root.Get("orientation").Int()),
	}
	if v := root.Get("scale"); v.Exists() {
		m.Scale = v.Float()
	}
	m.Rotation = root.Get("rotation").Float()

	if t, ok := dom.ParseTouchType(name); ok {
		m.Class, m.Touch = ClassTouch, t
		return m, nil
	}
	if t, ok := dom.ParseGestureType(name); ok {
		m.Class, m.Gesture = ClassGesture, t
		if p, ok := m.Point(); ok && !root.Get("x").Exists() {
			m.X, m.Y = p.ClientX, p.ClientY
		}
		return m, nil
	}
	if name == "orientationchange" {
		m.Class = ClassOrientation
		return m, nil
	}
	return Message{}, fmt.Errorf("%w: %q", ErrUnknownMessage, name)
}

func decodeTouches(v gjson.Result) []dom.Touch {
	if !v.IsArray() {
		return nil
	}
	items := v.Array()
	out := make([]dom.Touch, 0, len(items))
	for _, it := range items {
		out = append(out, dom.Touch{
			Identifier: int(it.Get("id").Int()),
			ClientX:    int(it.Get("x").Int()),
			ClientY:    int(it.Get("y").Int()),
		})
	}
	return out
}

// builder accumulates sjson writes and keeps the first error.
type builder struct {
	buf []byte
	err error
}

func newBuilder(kind string) *builder {
	b := &builder{buf: []byte(`{}`)}
	b.set("type", kind)
	return b
}

func (b *builder) set(path string, v any) *builder {
	if b.err == nil {
		b.buf, b.err = sjson.SetBytes(b.buf, path, v)
	}
	return b
}

func (b *builder) bytes() ([]byte, error) { return b.buf, b.err }

// EncodeHello announces the scene to a new client.
func EncodeHello(id string, width, height int) ([]byte, error) {
	return newBuilder("hello").
		set("session", id).
		set("width", width).
		set("height", height).
		bytes()
}

// EncodeMouse encodes a synthesized mouse event.
//
//	{"type":"click","target":"div#ok","x":5,"y":2,"session":"..."}
func EncodeMouse(info touch.MouseInfo) ([]byte, error) {
	return newBuilder(info.Type.String()).
		set("target", targetName(info.Target)).
		set("x", info.X).
		set("y", info.Y).
		set("session", info.SessionID).
		bytes()
}

// EncodeSession encodes a session lifecycle event. state is the last topic
// segment (started, ended, cancelled, escalated).
//
//	{"type":"session","state":"started","mode":"click","target":"div#ok",...}
func EncodeSession(state string, info touch.SessionInfo) ([]byte, error) {
	return newBuilder("session").
		set("state", state).
		set("mode", info.Mode).
		set("target", targetName(info.Target)).
		set("x", info.X).
		set("y", info.Y).
		set("clicked", info.Clicked).
		set("durationMs", info.Duration.Milliseconds()).
		set("session", info.SessionID).
		bytes()
}

// EncodeGesture encodes a gesture start or end.
func EncodeGesture(state string, info touch.GestureInfo) ([]byte, error) {
	return newBuilder("gesture").
		set("state", state).
		set("scale", info.Scale).
		set("rotation", info.Rotation).
		bytes()
}

// EncodeError encodes an error report.
func EncodeError(msg string) ([]byte, error) {
	return newBuilder("error").set("message", msg).bytes()
}

// EncodeEvent encodes a bus event. It returns nil for events the protocol
// does not carry.
func EncodeEvent(ev event.Envelope) ([]byte, error) {
	segs := ev.EventTopic().Segments()
	state := segs[len(segs)-1]

	switch e := ev.(type) {
	case event.Event[touch.MouseInfo]:
		return EncodeMouse(e.Payload)
	case event.Event[touch.SessionInfo]:
		return EncodeSession(state, e.Payload)
	case event.Event[touch.GestureInfo]:
		return EncodeGesture(state, e.Payload)
	case event.Event[touch.FailureInfo]:
		return EncodeError(e.Payload.Err.Error())
	}
	return nil, nil
}

func targetName(el dom.Element) string {
	switch v := el.(type) {
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	default:
		return strings.ToLower(v.TagName())
	}
}
