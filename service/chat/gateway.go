package chat

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"WChat/logger"
	"WChat/tools/ids"
	"WChat/tools/security"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type GatewayConf struct {
	// JWT is used to verify the optional token handshake parameter. A
	// connection that presents a token must pass verification and the
	// subject must match the claimed userId. A connection without a
	// token is trusted as-is.
	// TODO make the token mandatory once every client sends one.
	JWT security.Options
}

// Gateway owns the live connections and mediates all presence and
// messaging events. It is the only writer of the Registry.
type Gateway struct {
	reg   Registry
	conns *ConnManager
	conf  GatewayConf
}

func NewGateway(reg Registry, conf GatewayConf) *Gateway {
	return &Gateway{
		reg:   reg,
		conns: NewConnManager(),
		conf:  conf,
	}
}

func (g *Gateway) Registry() Registry { return g.reg }

func (g *Gateway) Conns() *ConnManager { return g.conns }

// HandleWS runs the whole connection lifecycle:
// upgrade -> identify -> register+broadcast -> read loop -> unregister+broadcast.
func (g *Gateway) HandleWS(c *gin.Context) {
	userID := c.Query("userId")
	token := c.Query("token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade error: %v", err)
		return
	}

	// Identifying: a connection without a userId is torn down before any
	// registry mutation and without an error payload.
	if userID == "" {
		closeQuiet(ws)
		return
	}
	if token != "" {
		claims, verr := security.Verify(g.conf.JWT, token, "")
		if verr != nil || claims.UserID() != userID {
			logger.Infof("[ws] token rejected user=%s err=%v", userID, verr)
			closeQuiet(ws)
			return
		}
	}

	// Active
	connID := ids.GenerateString()
	w := g.conns.Add(connID, userID, ws)
	g.reg.Register(userID, connID)
	g.broadcastOnline()
	logger.Infof("[ws] connected user=%s conn=%s remote=%s", userID, connID, w.Remote)

	g.readLoop(w)

	// Closed: drop the connection first so the broadcast below skips it.
	g.conns.Remove(connID)
	// Only clear the slot if it still points at this connection; a newer
	// tab of the same user may have overwritten it.
	if cur, ok := g.reg.Lookup(userID); ok && cur == connID {
		g.reg.Unregister(userID)
	}
	g.broadcastOnline()
	closeQuiet(ws)
	logger.Infof("[ws] disconnected user=%s conn=%s", userID, connID)
}

func (g *Gateway) readLoop(w *WsConn) {
	for {
		mt, data, rerr := w.Conn.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed conn=%s", w.ConnID)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s err=%v", w.ConnID, rerr)
			} else {
				logger.Infof("[ws] read err conn=%s err=%v", w.ConnID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrameJSON(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[ws] bad frame conn=%s err=%v sample=%q", w.ConnID, perr, sample)
			continue
		}

		switch frame.Event {
		case EventTyping, EventStopTyping:
			var td TypingData
			if err := json.Unmarshal(frame.Data, &td); err != nil || td.ReceiverID == "" {
				logger.Infof("[ws] bad typing payload conn=%s err=%v", w.ConnID, err)
				continue
			}
			// Relayed verbatim; any inactivity timeout is the sending
			// client's job.
			g.EmitToUser(td.ReceiverID, frame.Event, td.SenderID)
		default:
			logger.Infof("[ws] no handler for event=%s conn=%s", frame.Event, w.ConnID)
		}
	}
}

// EmitToUser delivers one event to the target user's registered
// connection. An offline target is the expected case, not an error: the
// event is dropped without receipt.
func (g *Gateway) EmitToUser(targetUserID, event string, data any) {
	connID, ok := g.reg.Lookup(targetUserID)
	if !ok {
		return
	}
	w, ok := g.conns.Get(connID)
	if !ok {
		return
	}
	if err := w.WriteFrame(event, data); err != nil {
		logger.Infof("[ws] emit dropped user=%s event=%s err=%v", targetUserID, event, err)
	}
}

// BroadcastAll delivers one event to every live connection.
func (g *Gateway) BroadcastAll(event string, data any) {
	for _, w := range g.conns.Snapshot() {
		if err := w.WriteFrame(event, data); err != nil {
			logger.Infof("[ws] broadcast dropped conn=%s event=%s err=%v", w.ConnID, event, err)
		}
	}
}

func (g *Gateway) broadcastOnline() {
	g.BroadcastAll(EventOnlineUsers, g.reg.ListOnline())
}
