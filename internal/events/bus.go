package events

import (
	"sync"
	"time"

	"expansion-monitor/internal/signals"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventSignalGenerated EventType = "SIGNAL_GENERATED"
	EventScanStarted     EventType = "SCAN_STARTED"
	EventScanCompleted   EventType = "SCAN_COMPLETED"
	EventSymbolSkipped   EventType = "SYMBOL_SKIPPED"
	EventMonitorStarted  EventType = "MONITOR_STARTED"
	EventMonitorStopped  EventType = "MONITOR_STOPPED"
	EventError           EventType = "ERROR"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber is a function that handles events
type Subscriber func(Event)

// EventBus manages event publishing and subscriptions
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber // Subscribers to all events
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]Subscriber),
		allSubs:     make([]Subscriber, 0),
	}
}

// Subscribe registers a subscriber for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
}

// SubscribeAll registers a subscriber for all events
func (eb *EventBus) SubscribeAll(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.allSubs = append(eb.allSubs, subscriber)
}

// Publish sends an event to all subscribers. Each subscriber runs in its own goroutine.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if subs, ok := eb.subscribers[event.Type]; ok {
		for _, sub := range subs {
			go sub(event)
		}
	}

	for _, sub := range eb.allSubs {
		go sub(event)
	}
}

// PublishSignal publishes a signal generated event
func (eb *EventBus) PublishSignal(scanID string, s signals.Signal) {
	eb.Publish(Event{
		Type: EventSignalGenerated,
		Data: map[string]interface{}{
			"scan_id":   scanID,
			"symbol":    s.Symbol,
			"timeframe": string(s.Timeframe),
			"action":    string(s.Action),
			"tier":      string(s.Tier),
			"reason":    s.Reason,
			"price":     s.Price,
			"volume":    s.Volume,
			"candle_at": s.Timestamp,
		},
	})
}

// PublishSymbolSkipped publishes a failed symbol evaluation
func (eb *EventBus) PublishSymbolSkipped(scanID string, s signals.Signal) {
	eb.Publish(Event{
		Type: EventSymbolSkipped,
		Data: map[string]interface{}{
			"scan_id":   scanID,
			"symbol":    s.Symbol,
			"timeframe": string(s.Timeframe),
			"failure":   string(s.Failure),
			"reason":    s.Reason,
		},
	})
}

// PublishScanStarted publishes the start of a watchlist scan
func (eb *EventBus) PublishScanStarted(scanID string, symbols int) {
	eb.Publish(Event{
		Type: EventScanStarted,
		Data: map[string]interface{}{
			"scan_id": scanID,
			"symbols": symbols,
		},
	})
}

// PublishScanCompleted publishes a scan summary
func (eb *EventBus) PublishScanCompleted(scanID string, symbols, signalCount, failures int, duration time.Duration) {
	eb.Publish(Event{
		Type: EventScanCompleted,
		Data: map[string]interface{}{
			"scan_id":     scanID,
			"symbols":     symbols,
			"signals":     signalCount,
			"failures":    failures,
			"duration_ms": duration.Milliseconds(),
		},
	})
}

// PublishMonitorStatus publishes a monitor started/stopped event
func (eb *EventBus) PublishMonitorStatus(running bool) {
	eventType := EventMonitorStopped
	if running {
		eventType = EventMonitorStarted
	}
	eb.Publish(Event{
		Type: eventType,
		Data: map[string]interface{}{
			"running": running,
		},
	})
}

// PublishError publishes an error event
func (eb *EventBus) PublishError(component string, err error) {
	eb.Publish(Event{
		Type: EventError,
		Data: map[string]interface{}{
			"component": component,
			"error":     err.Error(),
		},
	})
}
