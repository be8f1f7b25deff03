package ws

import (
	"context"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Image payloads arrive as
	// data URLs, so this is generous.
	maxMessageSize = 1024 * 1024 * 4

	// Rate limiting: 20 messages per second with a burst of 30
	messagesPerSecond = 20
	burstLimit        = 30
)

func NewClient(conn *websocket.Conn, sessionId string, onMessage func(messageBytes []byte), onClose func()) *Client {
	return &Client{
		conn:      conn,
		sessionId: sessionId,
		onMessage: onMessage,
		onClose:   onClose,
		sendCh:    make(chan []byte, 128),
		limiter:   rate.NewLimiter(rate.Limit(messagesPerSecond), burstLimit),
	}
}

// Client is a middleman between the websocket connection and the engine.
type Client struct {
	conn      *websocket.Conn
	sessionId string
	onMessage func(messageBytes []byte)
	onClose   func()
	sendCh    chan []byte // Buffered channel of outbound messages.
	limiter   *rate.Limiter
}

// Send queues a message for the write pump. A session that cannot keep
// up loses messages rather than blocking the engine.
func (c *Client) Send(message []byte) {
	select {
	case c.sendCh <- message:
	default:
		log.Printf("Dropping message for slow session %s", c.sessionId)
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.onClose()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS close error: %v", err)
			}
			break
		}

		if !c.limiter.Allow() {
			log.Printf("Closing session %s: message rate limit exceeded", c.sessionId)
			break
		}

		c.onMessage(messageBytes)
	}
}

func (c *Client) WritePump(shutdownCtx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WS send error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-shutdownCtx.Done():
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Wally is shutting down"),
			)
			return
		}
	}
}
