package http

import (
	"encoding/json"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

const (
	feedWriteTimeout = 10 * time.Second
	feedIdleTimeout  = time.Minute
	// must stay below feedIdleTimeout
	feedPingInterval = feedIdleTimeout * 9 / 10

	// Inbound frames on the feed are ignored, so they stay small
	feedReadLimit = 512

	// files.add carries whole documents
	maxRPCMessageSize = 1 << 20
)

// feedClient is one browser subscribed to the event feed
type feedClient struct {
	id     string
	conn   *websocket.Conn
	events chan ports.UpdateEvent
	hub    *ConnectionManager
	logger *HTTPLogger
	closed func()
}

// ConnectedData is the payload of the first event a feed client receives
type ConnectedData struct {
	ClientID string         `json:"client_id"`
	Version  string         `json:"version"`
	Snapshot ports.Snapshot `json:"snapshot"`
}

func (s *Server) newUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.originAllowed,
	}
}

// handleFeed upgrades the request and streams session events until the peer leaves
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.newUpgrader().Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Feed upgrade failed: %v", err)
		return
	}
	s.metrics.WebSocketOpened("/ws")

	fc := &feedClient{
		id:     uuid.NewString(),
		conn:   conn,
		events: make(chan ports.UpdateEvent, clientBuffer),
		hub:    s.connMgr,
		logger: s.logger.With("ws"),
		closed: func() { s.metrics.WebSocketClosed("/ws") },
	}

	// Queued before Register so it always precedes live events
	fc.events <- ports.UpdateEvent{
		Type:      ports.EventTypeConnected,
		Timestamp: time.Now(),
		Data: ConnectedData{
			ClientID: fc.id,
			Version:  s.version,
			Snapshot: s.session.Snapshot(),
		},
	}
	s.connMgr.Register(&Connection{ID: fc.id, Send: fc.events})
	fc.logger.Debug("Feed client %s joined", fc.id)

	go fc.deliver()
	go fc.listen()
}

// listen consumes inbound frames until the connection drops, then leaves the hub
func (fc *feedClient) listen() {
	defer fc.leave()

	fc.conn.SetReadLimit(feedReadLimit)
	extend := func(string) error {
		return fc.conn.SetReadDeadline(time.Now().Add(feedIdleTimeout))
	}
	_ = extend("")
	fc.conn.SetPongHandler(extend)

	for {
		_, frame, err := fc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fc.logger.Error("Feed client %s dropped: %v", fc.id, err)
			}
			return
		}
		fc.ignore(frame)
	}
}

// ignore logs an inbound frame; control goes through the REST API or /rpc
func (fc *feedClient) ignore(frame []byte) {
	var msg struct {
		Type string `json:"type"`
	}
	if json.Unmarshal(frame, &msg) != nil {
		fc.logger.Debug("Dropping malformed frame from %s", fc.id)
		return
	}
	fc.logger.Debug("Dropping %q frame from %s", msg.Type, fc.id)
}

func (fc *feedClient) leave() {
	fc.hub.Unregister(fc.id)
	_ = fc.conn.Close()
	if fc.closed != nil {
		fc.closed()
	}
	fc.logger.Debug("Feed client %s left", fc.id)
}

// deliver writes queued events and pings until the hub closes the queue or a write fails
func (fc *feedClient) deliver() {
	keepalive := time.NewTicker(feedPingInterval)
	defer keepalive.Stop()
	defer fc.conn.Close()

	for {
		var err error
		select {
		case event, open := <-fc.events:
			_ = fc.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if !open {
				_ = fc.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			err = fc.conn.WriteJSON(event)
		case <-keepalive.C:
			_ = fc.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			err = fc.conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}

// originAllowed decides whether a cross-origin page may open /ws or /rpc.
// Requests without an Origin header, or from the control UI's own host, always pass.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		s.logger.Warn("Rejected WebSocket origin %q", origin)
		return false
	}
	if u.Host == r.Host {
		return true
	}

	if s.config.IsDevelopment() {
		return isLocalHost(u.Hostname())
	}

	allowed := s.config.GetCORSOrigins()
	if lo.SomeBy(allowed, func(pattern string) bool { return originMatches(pattern, u) }) {
		return true
	}
	s.logger.Warn("Rejected WebSocket origin %s, allowed: %v", u, allowed)
	return false
}

// originMatches supports "*", exact origins and "*.domain" wildcards
func originMatches(pattern string, u *url.URL) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(u.Hostname(), pattern[1:])
	default:
		return strings.TrimSuffix(pattern, "/") == u.Scheme+"://"+u.Host
	}
}

// isLocalHost reports loopback, unspecified and private network hosts
func isLocalHost(host string) bool {
	if host == "localhost" {
		return true
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified()
}
