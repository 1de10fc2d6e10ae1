package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restylehq/booking-platform/internal/bookings"
	"github.com/restylehq/booking-platform/pkg/logging"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m1")}, nil
}

func TestBookingCreatedPublishesEvent(t *testing.T) {
	client := &fakeSQS{}
	pub := NewSQSPublisher(client, "https://sqs.test/queue", logging.New("error"))
	pub.now = func() time.Time { return time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC) }

	start := time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC)
	err := pub.BookingCreated(context.Background(), &bookings.Record{
		ID:             "appt_1",
		CalendarID:     "cal_9",
		ContactID:      "c1",
		AssignedUserID: "staff_7",
		StartTime:      &start,
	})
	require.NoError(t, err)

	require.Len(t, client.inputs, 1)
	assert.Equal(t, "https://sqs.test/queue", aws.ToString(client.inputs[0].QueueUrl))

	var event BookingEvent
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.inputs[0].MessageBody)), &event))
	assert.Equal(t, "booking.created", event.Type)
	assert.Equal(t, "appt_1", event.BookingID)
	assert.Equal(t, "staff_7", event.StaffID)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC), event.OccurredAt)
}

func TestBookingCreatedSendFailure(t *testing.T) {
	client := &fakeSQS{err: errors.New("queue unavailable")}
	pub := NewSQSPublisher(client, "https://sqs.test/queue", logging.New("error"))

	err := pub.BookingCreated(context.Background(), &bookings.Record{ID: "appt_1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "booking.created")
}

func TestNewSQSPublisherPanicsOnMissingQueue(t *testing.T) {
	assert.Panics(t, func() { NewSQSPublisher(&fakeSQS{}, "", nil) })
}
