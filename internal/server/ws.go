package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/websocket"

	"foxie/internal/viewer"
)

// clientMessage is any event sent by a board page.
type clientMessage struct {
	Type        string   `json:"type"`
	Left        float64  `json:"left"`
	Width       float64  `json:"width"`
	ScrollLeft  float64  `json:"scrollLeft"`
	ClientX     float64  `json:"clientX"`
	Start       *float64 `json:"start"`
	CurrentTime float64  `json:"currentTime"`
	Key         string   `json:"key"`
	Checked     bool     `json:"checked"`
}

type needleMessage struct {
	Type string `json:"type"`
	viewer.NeedleUpdate
}

type boardMessage struct {
	Type   string `json:"type"`
	Board  string `json:"board"`
	Legend string `json:"legend"`
}

type progressMessage struct {
	Type    string `json:"type"`
	Percent int    `json:"percent"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func boardOf(sess *viewer.Session) boardMessage {
	return boardMessage{Type: "board", Board: sess.BoardSVG(), Legend: sess.LegendSVG()}
}

func needleOf(u viewer.NeedleUpdate) needleMessage {
	return needleMessage{Type: "needle", NeedleUpdate: u}
}

func progressOf(pct int) progressMessage {
	return progressMessage{Type: "progress", Percent: pct}
}

func errorOf(format string, args ...any) errorMessage {
	return errorMessage{Type: "error", Message: fmt.Sprintf(format, args...)}
}

// handleMessage applies one page event to sess and returns the reply, or
// nil when the page needs none.
func handleMessage(sess *viewer.Session, payload []byte) any {
	var msg clientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return errorOf("malformed message: %v", err)
	}
	switch msg.Type {
	case "viewport":
		sess.SetViewport(viewer.Viewport{Left: msg.Left, Width: msg.Width, ScrollLeft: msg.ScrollLeft})
		return nil
	case "click":
		return needleOf(sess.Click(msg.ClientX))
	case "time-link":
		start := math.NaN()
		if msg.Start != nil {
			start = *msg.Start
		}
		u, ok := sess.TimeLink(start)
		if !ok {
			return nil
		}
		return needleOf(u)
	case "timeupdate":
		return needleOf(sess.VideoTimeUpdate(msg.CurrentTime))
	case "option":
		if err := sess.SetOption(msg.Key, msg.Checked); err != nil {
			return errorOf("%v", err)
		}
		return boardOf(sess)
	}
	return errorOf("unknown message type %q", msg.Type)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "session", sess.ID, "err", err)
		return
	}
	defer conn.Close()
	p := &page{conn: conn}
	leave := s.pages.join(sess.ID, p)
	defer leave()
	log := s.logger.With("session", sess.ID)
	log.Debug("page connected", "remote", r.RemoteAddr)

	if err := p.send(boardOf(sess)); err != nil {
		return
	}
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			log.Debug("page disconnected", "err", err)
			return
		}
		if sess.Closed() {
			p.close(websocket.CloseGoingAway, "session closed")
			return
		}
		reply := handleMessage(sess, payload)
		if reply == nil {
			continue
		}
		if e, ok := reply.(errorMessage); ok {
			log.Warn("discarding page message", "err", e.Message)
		}
		if err := p.send(reply); err != nil {
			return
		}
	}
}
