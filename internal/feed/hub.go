// Package feed broadcasts newly appended ledger entries and batches to
// websocket subscribers, adapted from the teacher's internal/api/websocket.go
// Hub. It is push-only and purely observational: nothing here feeds back
// into the store, and a disconnected or slow subscriber can never block a
// writer — the broadcast channel is bounded and drops the oldest pending
// message rather than applying backpressure.
package feed

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rawblock/feltledger/pkg/ledger"
)

// broadcastBufferSize bounds the hub's internal queue; once full,
// PublishEntry/PublishBatch drop the oldest queued message to make room rather than blocking the
// writer that triggered it.
const broadcastBufferSize = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub maintains the set of active websocket clients and fans out every
// published entry/batch to all of them.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mutex     sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast: make(chan []byte, broadcastBufferSize),
		clients:   make(map[*websocket.Conn]bool),
	}
}

// Run drains the broadcast queue and writes each message to every connected
// client. It must be started once, in its own goroutine, before
// PublishEntry/PublishBatch are called.
func (h *Hub) Run() {
	for message := range h.broadcast {
		h.mutex.Lock()
		for client := range h.clients {
			_ = client.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("feed: websocket write error: %v", err)
				client.Close()
				delete(h.clients, client)
			}
		}
		h.mutex.Unlock()
	}
}

// Subscribe upgrades an HTTP request to a websocket connection and registers
// it as a feed subscriber.
func (h *Hub) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("feed: failed to upgrade websocket: %v", err)
		return
	}

	h.mutex.Lock()
	h.clients[conn] = true
	h.mutex.Unlock()

	go func() {
		defer func() {
			h.mutex.Lock()
			delete(h.clients, conn)
			h.mutex.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) enqueue(payload []byte) {
	select {
	case h.broadcast <- payload:
	default:
		// Queue is full: drop the oldest message to make room rather than
		// blocking the caller that triggered this publish.
		select {
		case <-h.broadcast:
		default:
		}
		select {
		case h.broadcast <- payload:
		default:
		}
	}
}

type entryEvent struct {
	Type  string       `json:"type"`
	Entry ledger.Entry `json:"entry"`
}

type batchEvent struct {
	Type    string         `json:"type"`
	Batch   ledger.Batch   `json:"batch"`
	Entries []ledger.Entry `json:"entries"`
}

// PublishEntry announces a single entry appended outside of a batch (e.g. an
// adjustment or bonus).
func (h *Hub) PublishEntry(e ledger.Entry) {
	payload, err := json.Marshal(entryEvent{Type: "entry", Entry: e})
	if err != nil {
		return
	}
	h.enqueue(payload)
}

// PublishBatch announces a settlement/time-fee batch and its entries.
func (h *Hub) PublishBatch(b ledger.Batch, entries []ledger.Entry) {
	payload, err := json.Marshal(batchEvent{Type: "batch", Batch: b, Entries: entries})
	if err != nil {
		return
	}
	h.enqueue(payload)
}
