package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/lexvoice/lexvoice/internal/convo"
	"github.com/lexvoice/lexvoice/internal/legalqa"
)

// WSHandler serves the browser-facing conversation endpoint. Each
// connection gets its own orchestrator and session, with events
// streamed back as JSON. Spoken output is delegated to the client via
// "speak" events since synthesis happens browser-side.
type WSHandler struct {
	client         *legalqa.Client
	jurisdiction   string
	domain         string
	allowedOrigins map[string]bool
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a handler backed by the given legal Q&A client
func NewWSHandler(client *legalqa.Client, jurisdiction, domain string, allowedOrigins []string) *WSHandler {
	origins := make(map[string]bool)
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	h := &WSHandler{
		client:         client,
		jurisdiction:   jurisdiction,
		domain:         domain,
		allowedOrigins: origins,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *WSHandler) checkOrigin(r *http.Request) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // allow non-browser clients
	}
	return h.allowedOrigins[origin]
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events := make(chan Event, 16)
	done := make(chan struct{})

	orchestrator := convo.NewOrchestrator(h.client, &wsVoice{events: events}, h.jurisdiction, h.domain)
	orchestrator.SetListeners(convo.Listeners{
		OnMessage: func(msg convo.Message) {
			events <- Event{Type: EventMessage, Message: &msg}
		},
		OnProcessing: func(active bool) {
			events <- Event{Type: EventProcessing, Processing: active}
		},
		OnSuggestions: func(suggestions []string) {
			events <- Event{Type: EventSuggestions, Suggestions: suggestions}
		},
		OnTopic: func(topic string) {
			events <- Event{Type: EventTopic, Topic: topic}
		},
	})

	// Single writer goroutine; gorilla connections do not allow
	// concurrent writes.
	go func() {
		defer close(done)
		broken := false
		for ev := range events {
			if broken {
				continue // keep draining so senders never block
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("Failed to write to WebSocket: %v", err)
				broken = true
			}
		}
	}()
	var inflight sync.WaitGroup
	defer func() {
		inflight.Wait()
		close(events)
		<-done
	}()

	events <- Event{Type: EventConnected, SessionID: orchestrator.SessionID()}

	ctx := r.Context()
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket closed unexpectedly: %v", err)
			}
			return
		}

		var incoming Incoming
		if err := json.Unmarshal(message, &incoming); err != nil {
			events <- Event{Type: EventError, Text: "Invalid message format. Send JSON with 'type' and 'text' fields."}
			continue
		}

		switch incoming.Type {
		case IncomingAsk:
			if incoming.Text == "" {
				continue
			}
			inflight.Add(1)
			go func(text string) {
				defer inflight.Done()
				if !orchestrator.Turn(ctx, text) {
					events <- Event{Type: EventError, Text: "Still working on the previous question."}
				}
			}(incoming.Text)
		case IncomingReset:
			orchestrator.Reset()
			events <- Event{Type: EventReset, SessionID: orchestrator.SessionID()}
		default:
			events <- Event{Type: EventError, Text: "Unknown message type: " + incoming.Type}
		}
	}
}

// wsVoice forwards spoken output to the client as a speak event
type wsVoice struct {
	events chan<- Event
}

func (v *wsVoice) Speak(text string) {
	v.events <- Event{Type: EventSpeak, Text: text}
}
