// Package events publishes tenant-scoped change notifications to Kafka.
// Delivery is fire-and-forget: observers that miss an event re-fetch
// authoritative state instead of relying on notification history.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Topic is the Kafka topic carrying every platform change notification
const Topic = "platform-events"

// Event types emitted by the platform services
const (
	TypeTenantCreated       = "tenant_created"
	TypeTenantStatusChanged = "tenant_status_changed"
	TypeFeatureUpdated      = "feature_updated"
	TypePaymentRecorded     = "payment_recorded"
	TypeBackupCompleted     = "backup_completed"
	TypeDataRestored        = "data_restored"
)

// Event is one tenant-scoped change notification
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"event_type"`
	TenantID  string                 `json:"tenant_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEvent builds an event with id and timestamp filled in
func NewEvent(eventType string, tenantID uuid.UUID, payload map[string]interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		TenantID:  tenantID.String(),
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Emitter is the publish capability services depend on
type Emitter interface {
	Emit(event Event)
}

// Publisher writes events to Kafka through a buffered worker pool.
// Emit never blocks a request path: when the buffer is full the event is
// dropped and counted.
type Publisher struct {
	writer   *kafka.Writer
	eventCh  chan Event
	shutdown chan struct{}
	wg       sync.WaitGroup

	mu      sync.Mutex
	dropped int64
}

const (
	publishWorkers = 4
	publishBuffer  = 1000
)

// NewPublisher creates a publisher against the given broker and starts
// its worker pool.
func NewPublisher(broker string) *Publisher {
	p := &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(broker),
			Topic:        Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
		eventCh:  make(chan Event, publishBuffer),
		shutdown: make(chan struct{}),
	}

	for i := 0; i < publishWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Publisher) worker() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.eventCh:
			if err := p.send(event); err != nil {
				logrus.WithFields(logrus.Fields{
					"event_type": event.Type,
					"tenant_id":  event.TenantID,
					"error":      err,
				}).Warn("Failed to publish event")
			}
		case <-p.shutdown:
			return
		}
	}
}

func (p *Publisher) send(event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TenantID),
		Value: value,
	})
}

// Emit queues an event without blocking; full buffer drops the event
func (p *Publisher) Emit(event Event) {
	select {
	case p.eventCh <- event:
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		logrus.WithField("event_type", event.Type).Warn("Event buffer full, dropping event")
	}
}

// Dropped reports how many events were discarded due to backpressure
func (p *Publisher) Dropped() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Close stops the workers and flushes the Kafka writer
func (p *Publisher) Close() error {
	close(p.shutdown)
	p.wg.Wait()
	return p.writer.Close()
}

// Recorder is an Emitter that captures events in memory, for tests
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns the captured events in emission order
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByType filters captured events by type
func (r *Recorder) ByType(eventType string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
