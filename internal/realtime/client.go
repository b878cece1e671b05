package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"dikenang-service/internal/vote"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	sendBuffer = 256
)

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
)

// command is what clients send over the socket to manage their
// subscriptions.
type command struct {
	Action string `json:"action"`
	PostID string `json:"postId"`
	Kind   string `json:"kind"`
}

type errorFrame struct {
	Error string `json:"error"`
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string

	// topics the client is subscribed to, owned by the hub goroutine.
	topics map[string]bool
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		topics: make(map[string]bool),
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Error("websocket error", "user_id", c.userID, "error", err)
			}
			return
		}

		var cmd command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.sendError("invalid message format")
			continue
		}
		c.handleCommand(cmd)
	}
}

func (c *Client) handleCommand(cmd command) {
	topic, ok := voteTopic(cmd.PostID, cmd.Kind)
	if !ok {
		c.sendError("invalid subscription target")
		return
	}

	switch cmd.Action {
	case actionSubscribe:
		c.hub.subscribe <- subscription{client: c, topic: topic}
	case actionUnsubscribe:
		c.hub.unsubscribe <- subscription{client: c, topic: topic}
	default:
		c.sendError("unknown action")
	}
}

func voteTopic(postID, kind string) (string, bool) {
	k := vote.Kind(kind)
	if postID == "" || !k.Valid() {
		return "", false
	}
	return vote.Topic(postID, k), true
}

// sendError queues an error frame without ever blocking the read loop.
func (c *Client) sendError(msg string) {
	raw, err := json.Marshal(errorFrame{Error: msg})
	if err != nil {
		return
	}
	select {
	case c.send <- raw:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
