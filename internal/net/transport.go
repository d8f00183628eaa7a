// Package net synchronises animation frames between a host and its peers
// over websockets, and finds hosts on the local network with mDNS.
package net

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"AnimBoard/internal/logging"
	"AnimBoard/internal/state"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 32 << 20 // one encoded frame
)

// peer is one connected client. Writes go through send so that a slow peer
// never blocks the hub.
type peer struct {
	conn *websocket.Conn
	addr string
	send chan []byte
	once sync.Once
}

func (p *peer) close() {
	p.once.Do(func() { close(p.send) })
}

// Hub is run by the HOST. It owns the authoritative frame store, applies
// every peer update last-writer-wins and relays accepted updates to the
// other peers.
type Hub struct {
	store    *state.FrameStore
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	peers map[*peer]struct{}

	// OnChange is called after a peer update changed the store.
	OnChange func(m Message)
}

// NewHub creates a hub over store.
func NewHub(store *state.FrameStore) *Hub {
	return &Hub{
		store: store,
		peers: make(map[*peer]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  32 << 10,
			WriteBufferSize: 32 << 10,
			// peers are desktop apps on the LAN, not browsers
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Peers returns the number of connected peers.
func (h *Hub) Peers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	_, ok := h.peers[p]
	delete(h.peers, p)
	h.mu.Unlock()
	if ok {
		p.close()
		logging.Logger().Info("[HOST] peer disconnected", "addr", p.addr)
	}
}

// broadcast queues data for every peer except skip. A peer whose queue is
// full is dropped; it resynchronises from the snapshot when it reconnects.
func (h *Hub) broadcast(data []byte, skip *peer) {
	var lagging []*peer
	h.mu.RLock()
	for p := range h.peers {
		if p == skip {
			continue
		}
		select {
		case p.send <- data:
		default:
			lagging = append(lagging, p)
		}
	}
	h.mu.RUnlock()
	for _, p := range lagging {
		logging.Logger().Warn("[HOST] dropping lagging peer", "addr", p.addr)
		h.remove(p)
		_ = p.conn.Close()
	}
}

// Publish stores a local edit of frame i and sends it to every peer.
func (h *Hub) Publish(i int, data string) state.Layer {
	l := h.store.SetLocal(i, data)
	h.broadcast(encode(LayerMessage(i, l)), nil)
	return l
}

// PublishFrames grows the store to n frames and tells every peer.
func (h *Hub) PublishFrames(n int) {
	if h.store.Grow(n) {
		h.broadcast(encode(FramesMessage(h.store.Len())), nil)
	}
}

// ServeWS upgrades the request and serves the peer until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Warn("[HOST] websocket upgrade", "err", err)
		return
	}
	// snapshot and register together so no update falls between them
	h.mu.Lock()
	snap := snapshot(h.store)
	p := &peer{conn: conn, addr: r.RemoteAddr, send: make(chan []byte, len(snap)+sendBuffer)}
	for _, m := range snap {
		p.send <- encode(m)
	}
	h.peers[p] = struct{}{}
	h.mu.Unlock()
	logging.Logger().Info("[HOST] peer connected", "addr", p.addr, "frames", len(snap)-1)

	go h.writeLoop(p)
	h.readLoop(p)
}

func (h *Hub) readLoop(p *peer) {
	defer func() {
		h.remove(p)
		_ = p.conn.Close()
	}()
	p.conn.SetReadLimit(maxMessage)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Logger().Warn("[HOST] read", "addr", p.addr, "err", err)
			}
			return
		}
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			logging.Logger().Warn("[HOST] bad message", "addr", p.addr, "err", err)
			continue
		}
		if err := m.Validate(); err != nil {
			logging.Logger().Warn("[HOST] rejected message", "addr", p.addr, "err", err)
			continue
		}
		logging.Logger().Debug("[HOST] received", "type", m.Type, "frame", m.Frame, "addr", p.addr)
		if !m.Apply(h.store) {
			continue
		}
		h.broadcast(data, p)
		if h.OnChange != nil {
			h.OnChange(m)
		}
	}
}

func (h *Hub) writeLoop(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = p.conn.Close()
	}()
	for {
		select {
		case data, ok := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = p.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every peer.
func (h *Hub) Close() {
	h.mu.Lock()
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.peers = make(map[*peer]struct{})
	h.mu.Unlock()
	for _, p := range peers {
		p.close()
	}
}
