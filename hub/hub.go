// SPDX-License-Identifier: GPL-2.0-or-later

// Package hub serves a websocket endpoint streaming tracking state to
// monitor clients and accepting console commands from them.
package hub

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"ratcave/history"
)

// CommandQueue receives console text. It is drained on the frame loop.
type CommandQueue interface {
	AddText(text string)
}

// Hub maintains the set of active clients and broadcasts events to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound encoded events.
	broadcast chan []byte

	// Replies to a single client.
	reply chan reply

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	queue   CommandQueue
	history *history.History

	// Closed when Run returns.
	done chan struct{}
}

type reply struct {
	client *Client
	event  []byte
}

// New creates a hub queueing remote commands into q. Commands are added
// to hist when it is not nil.
func New(q CommandQueue, hist *history.History) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		reply:      make(chan reply, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		queue:      q,
		history:    hist,
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case r := <-h.reply:
			if _, ok := h.clients[r.client]; !ok {
				continue
			}
			select {
			case r.client.send <- r.event:
			default:
				close(r.client.send)
				delete(h.clients, r.client)
			}
		case event := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Publish queues an event for all clients. It never blocks: events are
// dropped while the hub is congested.
func (h *Hub) Publish(name string, data interface{}) error {
	b, err := json.Marshal(Event{name, data})
	if err != nil {
		return errors.Wrapf(err, "encode %s event", name)
	}
	select {
	case h.broadcast <- b:
	default:
	}
	return nil
}

func (h *Hub) sendTo(c *Client, name string, data interface{}) error {
	b, err := json.Marshal(Event{name, data})
	if err != nil {
		return errors.Wrapf(err, "encode %s event", name)
	}
	select {
	case h.reply <- reply{c, b}:
	default:
	}
	return nil
}

// LogSink forwards console output as "log" events.
func (h *Hub) LogSink(line string) {
	h.Publish("log", logLine{line})
}

func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWs)
	return mux
}

// ListenAndServe runs the hub and its http endpoint on addr until ctx is
// done.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: h.Handler(),
	}
	go h.Run(ctx)
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(sctx)
	}()
	log.Printf("Monitor listening on %s", addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return errors.Wrap(err, "monitor")
	}
	return nil
}
