package web

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/taskboard/pkg/domain/reorder"
)

// dragMessage is a gesture event sent by the browser.
type dragMessage struct {
	Type string        `json:"type"`
	Key  string        `json:"key,omitempty"`
	Y    float64       `json:"y,omitempty"`
	Rows []reorder.Row `json:"rows,omitempty"`
}

// dragReply is sent back after every handled message and on timer updates.
type dragReply struct {
	Type  string         `json:"type"`
	State *reorder.State `json:"state,omitempty"`
	Error string         `json:"error,omitempty"`
}

var (
	errUnknownDragMessage = errors.New("unknown drag message")
	errEmptyLayout        = errors.New("layout message carries no rows")
)

// dragConn owns one websocket and the engine driving its gestures.
type dragConn struct {
	ws     *websocket.Conn
	wmu    sync.Mutex
	engine *reorder.Engine
}

func (c *dragConn) write(reply dragReply) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.ws.WriteJSON(reply)
}

func (c *dragConn) writeState(state reorder.State) error {
	return c.write(dragReply{Type: "state", State: &state})
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("drag upgrade failed", "error", err)
		return
	}
	defer func() { _ = ws.Close() }()

	conn := &dragConn{ws: ws}
	engine, err := s.svc.BeginDragWith(r.Context(), nil, func(state reorder.State) {
		if err := conn.writeState(state); err != nil {
			s.logger.Debug("drag state write failed", "error", err)
		}
	})
	if err != nil {
		_ = conn.write(dragReply{Type: "error", Error: err.Error()})
		return
	}
	conn.engine = engine
	defer func() {
		// A dropped connection must not leave a gesture half done.
		if st := engine.State(); st.Phase != reorder.PhaseIdle {
			if engine.Family() == reorder.FamilyTouch {
				_ = engine.TouchEnd()
			} else {
				_ = engine.Release()
			}
		}
	}()

	for {
		var msg dragMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("drag connection closed", "error", err)
			}
			return
		}
		if err := applyDrag(engine, msg); err != nil {
			if werr := conn.write(dragReply{Type: "error", Error: err.Error()}); werr != nil {
				return
			}
			continue
		}
		if err := conn.writeState(engine.State()); err != nil {
			return
		}
	}
}

func applyDrag(e *reorder.Engine, msg dragMessage) error {
	if len(msg.Rows) > 0 {
		layout, err := reorder.NewLayout(msg.Rows)
		if err != nil {
			return err
		}
		if err := e.SetLayout(layout); err != nil {
			return err
		}
	}

	switch msg.Type {
	case "layout":
		if len(msg.Rows) == 0 {
			return errEmptyLayout
		}
		return nil
	case "grab":
		return e.Grab(msg.Key)
	case "over":
		return e.Over(msg.Y)
	case "release":
		return e.Release()
	case "touchstart":
		return e.TouchStart(msg.Key, msg.Y)
	case "touchmove":
		return e.TouchMove(msg.Y)
	case "touchend":
		return e.TouchEnd()
	default:
		return errUnknownDragMessage
	}
}
