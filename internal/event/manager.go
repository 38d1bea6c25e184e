package event

import (
	"go.uber.org/zap"
	"sync"
)

type Listener struct {
	eventType Type
	channel   chan interface{}
}

// Manager fans events out to listeners. Each listener receives its events in
// emission order on its own goroutine.
type Manager struct {
	mu        sync.RWMutex
	listeners []*Listener
}

func NewManager() *Manager {
	return &Manager{listeners: make([]*Listener, 0)}
}

func (m *Manager) AddEventListener(eventType Type, callback func(msg interface{})) {
	zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: AddListener")

	listener := Listener{
		eventType: eventType,
		channel:   make(chan interface{}, 64),
	}

	m.mu.Lock()
	m.listeners = append(m.listeners, &listener)
	m.mu.Unlock()

	go func() {
		for msg := range listener.channel {
			callback(msg)
		}
	}()
}

func (m *Manager) EmitEvent(eventType Type, msg interface{}) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.listeners) == 0 {
		zap.L().Debug("No event listeners available")
	}
	for _, listener := range m.listeners {
		if listener.eventType == eventType {
			zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: Emitting event")
			listener.channel <- msg
		}
	}
}

// Close stops every listener goroutine once its queued events are handled.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, listener := range m.listeners {
		close(listener.channel)
	}
	m.listeners = nil
}
