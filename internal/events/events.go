package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/tsriharsha402/cleaning-booking-system/internal/calendar"
)

type Type string

const (
	BookingCreated Type = "booking.created"
	BookingUpdated Type = "booking.updated"
	BookingDeleted Type = "booking.deleted"
)

// BookingSnapshot is the booking state carried on an event.
type BookingSnapshot struct {
	ID            uuid.UUID `json:"id"`
	Start         time.Time `json:"startTime"`
	End           time.Time `json:"endTime"`
	DurationHours int       `json:"durationHours"`
	Customer      string    `json:"customer"`
	VehicleID     int64     `json:"vehicleId"`
	CleanerIDs    []int64   `json:"cleanerIds"`
}

func Snapshot(b calendar.Booking) *BookingSnapshot {
	return &BookingSnapshot{
		ID:            b.ID,
		Start:         b.Start,
		End:           b.End,
		DurationHours: b.DurationHours,
		Customer:      b.Customer,
		VehicleID:     b.VehicleID,
		CleanerIDs:    b.CleanerIDs,
	}
}

type BookingEvent struct {
	ID         uuid.UUID        `json:"eventId"`
	Type       Type             `json:"type"`
	BookingID  uuid.UUID        `json:"bookingId"`
	Booking    *BookingSnapshot `json:"booking,omitempty"` // nil for deletions
	OccurredAt time.Time        `json:"occurredAt"`
}

func NewBookingEvent(t Type, bookingID uuid.UUID, booking *BookingSnapshot) BookingEvent {
	return BookingEvent{
		ID:         uuid.New(),
		Type:       t,
		BookingID:  bookingID,
		Booking:    booking,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher ships booking events after the change is committed.
type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per event, keyed by booking id so a
// booking's events stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev BookingEvent) error {
	msg, err := Message(ev)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Message encodes ev as a kafka message with event_id and event_type headers.
func Message(ev BookingEvent) (kafka.Message, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(ev.BookingID.String()),
		Value: body,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.ID.String())},
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}, nil
}

// Nop drops events; used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, BookingEvent) error { return nil }
func (Nop) Close() error { return nil }
