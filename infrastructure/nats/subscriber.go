package nats

import (
	"encoding/json"
	"sync"

	"github.com/nats-io/nats.go"

	"taskhub/domain/ports"
	"taskhub/pkg/logger"
)

// EventHandler receives events seen on the event subjects
type EventHandler func(event ports.Event)

// Subscriber listens on the event subjects with core NATS, so every API
// instance relays all events to its own websocket clients
type Subscriber struct {
	conn       *nats.Conn
	sub        *nats.Subscription
	handlers   []EventHandler
	handlersMu sync.RWMutex
	running    bool
	runningMu  sync.Mutex
}

func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

func (s *Subscriber) OnEvent(handler EventHandler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.handlers = append(s.handlers, handler)
}

func (s *Subscriber) Start() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	if s.running {
		return nil
	}

	sub, err := s.conn.Subscribe(SubjectAll, s.handleMessage)
	if err != nil {
		return err
	}
	s.sub = sub
	s.running = true

	logger.Info("NATS subscriber started", "subject", SubjectAll)
	return nil
}

func (s *Subscriber) handleMessage(msg *nats.Msg) {
	var event ports.Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to parse event", "subject", msg.Subject, "error", err)
		return
	}
	if event.Type == "" {
		if t, ok := EventTypeFromSubject(msg.Subject); ok {
			event.Type = t
		}
	}
	s.dispatch(event)
}

// dispatch runs handlers in order; a panicking handler does not stop the
// others
func (s *Subscriber) dispatch(event ports.Event) {
	s.handlersMu.RLock()
	handlers := s.handlers
	s.handlersMu.RUnlock()

	for _, handler := range handlers {
		func(h EventHandler) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Event handler panicked", "type", event.Type, "error", r)
				}
			}()
			h(event)
		}(handler)
	}
}

func (s *Subscriber) Stop() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			logger.Warn("Failed to unsubscribe", "error", err)
		}
	}
	logger.Info("NATS subscriber stopped")
	return nil
}

func (s *Subscriber) IsRunning() bool {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	return s.running
}
