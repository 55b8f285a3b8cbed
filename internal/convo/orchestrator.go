package convo

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lexvoice/lexvoice/internal/legalqa"
)

// spokenApology is read aloud when the backend cannot answer.
const spokenApology = "I'm sorry, I ran into a problem answering that. Please try again."

// Answerer resolves a legal question into an answer. *legalqa.Client
// satisfies it.
type Answerer interface {
	Ask(ctx context.Context, req legalqa.AskRequest) (legalqa.AskResponse, error)
}

// Voice speaks text to the user. The orchestrator never blocks on it.
type Voice interface {
	Speak(text string)
}

// Listeners receive conversation events. All fields are optional and
// are invoked without the orchestrator lock held.
type Listeners struct {
	OnMessage     func(msg Message)
	OnSuggestions func(suggestions []string)
	OnTopic       func(topic string)
	OnProcessing  func(active bool)
}

// Orchestrator runs the question/answer loop: it takes a finalized
// transcript, appends it to the log, queries the backend with a bounded
// context window, records the response, and hands the spoken form to
// the voice.
type Orchestrator struct {
	answerer Answerer
	voice    Voice

	jurisdiction string
	domain       string

	mu          sync.Mutex
	sessionID   string
	log         *Log
	window      *contextWindow
	processing  bool
	suggestions []string
	topic       string

	listeners Listeners
}

// NewOrchestrator creates an orchestrator bound to the given backend
// client and voice. Either jurisdiction or domain may be empty.
func NewOrchestrator(answerer Answerer, voice Voice, jurisdiction, domain string) *Orchestrator {
	return &Orchestrator{
		answerer:     answerer,
		voice:        voice,
		jurisdiction: jurisdiction,
		domain:       domain,
		sessionID:    uuid.NewString(),
		log:          NewLog(),
		window:       newContextWindow(maxContextExchanges),
		topic:        "general legal questions",
	}
}

// SetListeners registers event callbacks. Call before the first Turn.
func (o *Orchestrator) SetListeners(l Listeners) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = l
}

// Turn processes one finalized transcript. It returns false without
// side effects when the text is empty or a previous turn is still in
// flight.
func (o *Orchestrator) Turn(ctx context.Context, transcript string) bool {
	question := strings.TrimSpace(transcript)
	if question == "" {
		return false
	}

	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return false
	}
	o.processing = true
	userMsg := newMessage(MessageUser, question)
	o.log.Append(userMsg)
	req := legalqa.AskRequest{
		Question:     question,
		SessionID:    o.sessionID,
		Jurisdiction: o.jurisdiction,
		Domain:       o.domain,
		Context:      o.window.hint(),
	}
	listeners := o.listeners
	o.mu.Unlock()

	notifyMessage(listeners, userMsg)
	notifyProcessing(listeners, true)

	resp, err := o.answerer.Ask(ctx, req)
	if err != nil {
		o.finishError(listeners, question, err)
		return true
	}

	o.mu.Lock()
	answerMsg := newMessage(MessageAssistant, resp.Answer)
	answerMsg.Confidence = resp.Confidence
	answerMsg.Sources = resp.Sources
	o.log.Append(answerMsg)
	o.window.push(Exchange{Question: question, Answer: resp.Answer})
	o.suggestions = SuggestFollowUps(question + " " + resp.Answer)
	o.topic = TopicFor(question + " " + resp.Answer)
	o.processing = false
	suggestions := o.suggestions
	topic := o.topic
	o.mu.Unlock()

	notifyMessage(listeners, answerMsg)
	notifyProcessing(listeners, false)
	notifySuggestions(listeners, suggestions)
	notifyTopic(listeners, topic)

	if o.voice != nil {
		o.voice.Speak(NormalizeForSpeech(resp.Answer))
	}
	return true
}

func (o *Orchestrator) finishError(listeners Listeners, question string, err error) {
	o.mu.Lock()
	errMsg := newMessage(MessageError, fmt.Sprintf("Failed to get an answer: %v", err))
	o.log.Append(errMsg)
	o.processing = false
	o.mu.Unlock()

	notifyMessage(listeners, errMsg)
	notifyProcessing(listeners, false)

	if o.voice != nil {
		o.voice.Speak(spokenApology)
	}
}

// Processing reports whether a turn is currently in flight.
func (o *Orchestrator) Processing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.processing
}

// Messages returns a copy of the conversation log.
func (o *Orchestrator) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.log.Messages()
}

// Suggestions returns the follow-up prompts from the latest turn.
func (o *Orchestrator) Suggestions() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.suggestions))
	copy(out, o.suggestions)
	return out
}

// Topic returns the practice area the conversation currently covers.
func (o *Orchestrator) Topic() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.topic
}

// SessionID identifies this conversation to the backend.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

// Reset clears the log and context window and starts a new session.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.log.Clear()
	o.window.clear()
	o.suggestions = nil
	o.topic = "general legal questions"
	o.sessionID = uuid.NewString()
}

func notifyMessage(l Listeners, msg Message) {
	if l.OnMessage != nil {
		l.OnMessage(msg)
	}
}

func notifyProcessing(l Listeners, active bool) {
	if l.OnProcessing != nil {
		l.OnProcessing(active)
	}
}

func notifySuggestions(l Listeners, suggestions []string) {
	if l.OnSuggestions != nil {
		l.OnSuggestions(suggestions)
	}
}

func notifyTopic(l Listeners, topic string) {
	if l.OnTopic != nil {
		l.OnTopic(topic)
	}
}
