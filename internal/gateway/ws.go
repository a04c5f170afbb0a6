package gateway

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// connGuard tracks attached UI sockets. Writes go out under the lock so
// concurrent broadcasts never interleave on a single connection.
type connGuard struct {
	sync.Mutex
	conns map[*websocket.Conn]struct{}
}

type wsNotice struct {
	Type string `json:"type"`
	Item string `json:"item,omitempty"`
	User string `json:"user,omitempty"`
}

func (g *Gateway) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Errorw("can't upgrade connection",
			"addr", r.RemoteAddr,
			"error", err,
		)
		return
	}

	g.connsMu.Lock()
	g.connsMu.conns[conn] = struct{}{}
	g.connsMu.Unlock()

	go g.readLoop(conn)
}

// readLoop drains the socket so control frames are processed and drops
// the connection from the set once the client goes away.
func (g *Gateway) readLoop(conn *websocket.Conn) {
	defer func() {
		g.connsMu.Lock()
		delete(g.connsMu.conns, conn)
		g.connsMu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (g *Gateway) broadcast(notice wsNotice) {
	g.connsMu.Lock()
	defer g.connsMu.Unlock()

	for conn := range g.connsMu.conns {
		if err := conn.WriteJSON(notice); err != nil {
			g.logger.Debugw("dropping dead socket", "error", err)
			delete(g.connsMu.conns, conn)
			conn.Close()
		}
	}
}

// ItemUnlocked tells attached clients that an item they held was
// unlocked from elsewhere.
func (g *Gateway) ItemUnlocked(itemID string, byUser string) {
	g.broadcast(wsNotice{Type: "item:unlock", Item: itemID, User: byUser})
}

// ItemsChanged tells attached clients the cached item set was refreshed
// and views should re-render.
func (g *Gateway) ItemsChanged() {
	g.broadcast(wsNotice{Type: "items:changed"})
}
