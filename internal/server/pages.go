package server

import (
	"sync"

	"github.com/gorilla/websocket"
)

// page is one board page connected over websocket. Writes go through mu
// since progress updates come from upload requests.
type page struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *page) send(v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteJSON(v)
}

func (p *page) close(code int, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
}

// pageSet tracks the pages open on each session.
type pageSet struct {
	mu        sync.Mutex
	bySession map[string]map[*page]struct{}
}

func newPageSet() *pageSet {
	return &pageSet{bySession: make(map[string]map[*page]struct{})}
}

// join registers p under session id and returns the func that removes it.
func (ps *pageSet) join(id string, p *page) func() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	set, ok := ps.bySession[id]
	if !ok {
		set = make(map[*page]struct{})
		ps.bySession[id] = set
	}
	set[p] = struct{}{}
	return func() {
		ps.mu.Lock()
		defer ps.mu.Unlock()
		delete(set, p)
		if len(set) == 0 {
			delete(ps.bySession, id)
		}
	}
}

// broadcast sends v to every page of session id. Failed writes are left
// to the page's read loop, which sees the broken connection.
func (ps *pageSet) broadcast(id string, v any) {
	ps.mu.Lock()
	targets := make([]*page, 0, len(ps.bySession[id]))
	for p := range ps.bySession[id] {
		targets = append(targets, p)
	}
	ps.mu.Unlock()
	for _, p := range targets {
		p.send(v)
	}
}
