// SPDX-License-Identifier: GPL-2.0-or-later

package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte
}

// readPump pumps events from the websocket connection to the command
// queue. It is the only reader of the connection.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("monitor: %v", err)
			}
			break
		}
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("monitor: %v", err)
			continue
		}
		if err := c.hub.processEvent(c, event); err != nil {
			log.Printf("monitor: %v", err)
		}
	}
}

// processEvent turns client requests into console commands so they run
// on the frame loop.
func (h *Hub) processEvent(c *Client, event Event) error {
	switch event.Name {
	case "command":
		var in struct {
			Line string `mapstructure:"line"`
		}
		if err := mapstructure.Decode(event.Data, &in); err != nil {
			return err
		}
		line := strings.TrimSpace(in.Line)
		if line == "" {
			return nil
		}
		if h.history != nil {
			h.history.Add(line)
		}
		h.queue.AddText(line + "\n")
	case "history":
		var entries []string
		if h.history != nil {
			entries = h.history.Entries()
		}
		return h.sendTo(c, "history", historyEntries{entries})
	case "selectScene":
		var in struct {
			Name string `mapstructure:"name"`
		}
		if err := mapstructure.Decode(event.Data, &in); err != nil {
			return err
		}
		if in.Name == "" {
			h.queue.AddText("noscene\n")
			return nil
		}
		// console arguments are quoted verbatim, without escapes
		if strings.ContainsFunc(in.Name, func(r rune) bool { return r == '"' || r < ' ' }) {
			return errors.Errorf("invalid scene name %q", in.Name)
		}
		h.queue.AddText("scene \"" + in.Name + "\"\n")
	default:
		return errors.Errorf("unknown event %q", event.Name)
	}
	return nil
}

// writePump pumps messages from the hub to the websocket connection. It
// is the only writer of the connection.
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

// ServeWs handles websocket requests from the peer.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
