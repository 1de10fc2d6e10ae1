// Package webhooks publishes booking lifecycle events to the outbox queue.
package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"

	"github.com/restylehq/booking-platform/internal/bookings"
	"github.com/restylehq/booking-platform/pkg/logging"
)

// sqsAPI is the slice of the SQS client the publisher uses.
type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// BookingEvent is the outbox message body for booking changes.
type BookingEvent struct {
	EventID    string    `json:"eventId"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`

	BookingID  string     `json:"bookingId"`
	CalendarID string     `json:"calendarId,omitempty"`
	ContactID  string     `json:"contactId,omitempty"`
	StaffID    string     `json:"staffId,omitempty"`
	StartTime  *time.Time `json:"startTime,omitempty"`
	EndTime    *time.Time `json:"endTime,omitempty"`
}

// SQSPublisher sends booking events to an SQS queue.
type SQSPublisher struct {
	client   sqsAPI
	queueURL string
	logger   *logging.Logger
	now      func() time.Time
}

func NewSQSPublisher(client sqsAPI, queueURL string, logger *logging.Logger) *SQSPublisher {
	if client == nil {
		panic("webhooks: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("webhooks: SQS queueURL cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SQSPublisher{client: client, queueURL: queueURL, logger: logger, now: time.Now}
}

// BookingCreated publishes a booking.created event.
func (p *SQSPublisher) BookingCreated(ctx context.Context, rec *bookings.Record) error {
	return p.publish(ctx, "booking.created", rec)
}

func (p *SQSPublisher) publish(ctx context.Context, eventType string, rec *bookings.Record) error {
	event := BookingEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		BookingID:  rec.ID,
		CalendarID: rec.CalendarID,
		ContactID:  rec.ContactID,
		StaffID:    rec.AssignedUserID,
		StartTime:  rec.StartTime,
		EndTime:    rec.EndTime,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhooks: marshal event: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("webhooks: send %s for %s: %w", eventType, rec.ID, err)
	}

	p.logger.Info("published booking event",
		"event_type", eventType, "booking_id", rec.ID, "event_id", event.EventID)
	return nil
}
