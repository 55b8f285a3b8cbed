package convo

import (
	"sync"

	"github.com/lexvoice/lexvoice/internal/legalqa"
)

// maxContextExchanges caps how many completed turns travel with each
// question as a hint to the backend. The window is never persisted.
const maxContextExchanges = 4

// Exchange is one completed question/answer turn.
type Exchange struct {
	Question string
	Answer   string
}

// contextWindow is a bounded ordered sequence of completed exchanges.
type contextWindow struct {
	mu        sync.Mutex
	max       int
	exchanges []Exchange
}

func newContextWindow(max int) *contextWindow {
	if max <= 0 {
		max = maxContextExchanges
	}
	return &contextWindow{max: max}
}

// push appends an exchange, evicting the oldest beyond the cap.
func (w *contextWindow) push(e Exchange) {
	w.mu.Lock()
	w.exchanges = append(w.exchanges, e)
	if len(w.exchanges) > w.max {
		w.exchanges = w.exchanges[len(w.exchanges)-w.max:]
	}
	w.mu.Unlock()
}

// hint renders the window as role/content pairs for the backend.
func (w *contextWindow) hint() []legalqa.ContextMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]legalqa.ContextMessage, 0, len(w.exchanges)*2)
	for _, e := range w.exchanges {
		out = append(out,
			legalqa.ContextMessage{Role: "user", Content: e.Question},
			legalqa.ContextMessage{Role: "assistant", Content: e.Answer},
		)
	}
	return out
}

func (w *contextWindow) clear() {
	w.mu.Lock()
	w.exchanges = nil
	w.mu.Unlock()
}
