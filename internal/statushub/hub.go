// Package statushub broadcasts controller.Status snapshots to any
// number of connected websocket clients.
//
// A join/leave/forward hub runs a single select loop so that a slow or
// stalled client can never block a broadcast; each client gets its own
// buffered outbound queue drained by a dedicated write pump.
package statushub

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skywardcontrols/aic-attitude/internal/controller"
)

const (
	socketBufferSize  = 1024
	messageBufferSize = 16

	writeWait = 10 * time.Second
)

var upgrader = &websocket.Upgrader{
	ReadBufferSize:  socketBufferSize,
	WriteBufferSize: socketBufferSize,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans a stream of Status snapshots out to every connected
// websocket client. The zero value is not usable; construct with New.
type Hub struct {
	forward chan controller.Status
	join    chan *client
	leave   chan *client
	clients map[*client]bool
}

// New returns a Hub ready to have Run called on it.
func New() *Hub {
	return &Hub{
		forward: make(chan controller.Status),
		join:    make(chan *client),
		leave:   make(chan *client),
		clients: make(map[*client]bool),
	}
}

// Run drains join/leave/forward until the process exits; callers
// typically run it in its own goroutine for the lifetime of the
// process.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.join:
			h.clients[c] = true
			log.Println("statushub: client joined")
		case c := <-h.leave:
			delete(h.clients, c)
			close(c.send)
			log.Println("statushub: client left")
		case status := <-h.forward:
			payload, err := json.Marshal(status)
			if err != nil {
				log.Printf("statushub: marshal status: %v", err)
				continue
			}
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					log.Println("statushub: slow client, dropping snapshot")
				}
			}
		}
	}
}

// Broadcast submits a new Status snapshot for delivery to all
// connected clients. It never blocks the caller: the host's tick loop
// must not stall on a slow or absent consumer.
func (h *Hub) Broadcast(status controller.Status) {
	select {
	case h.forward <- status:
	default:
	}
}

// ServeHTTP upgrades the request to a websocket and registers the
// resulting client with the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("statushub: upgrade failed: %v", err)
		return
	}
	c := &client{
		socket: socket,
		send:   make(chan []byte, messageBufferSize),
		hub:    h,
	}
	h.join <- c
	defer func() { h.leave <- c }()
	go c.write()
	c.read()
}

// client wraps one websocket connection: the read pump watches for
// disconnect via control frames, the write pump drains outbound
// Status payloads.
type client struct {
	socket *websocket.Conn
	send   chan []byte
	hub    *Hub
}

// read discards inbound frames; this socket is push-only, but a read
// loop is still required to notice the client closing the connection.
func (c *client) read() {
	defer c.socket.Close()
	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *client) write() {
	defer c.socket.Close()
	for msg := range c.send {
		c.socket.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.socket.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
