package syncer

import (
	"context"
	"encoding/json"

	"github.com/MySundayS/employee-lita/internal/events"

	"github.com/segmentio/kafka-go"
)

type EventPublisher interface {
	PublishAttendanceSynced(ctx context.Context, event events.AttendanceSyncedEvent) error
}

type noopEventPublisher struct{}

func (noopEventPublisher) PublishAttendanceSynced(context.Context, events.AttendanceSyncedEvent) error {
	return nil
}

func NewNoopEventPublisher() EventPublisher {
	return noopEventPublisher{}
}

type kafkaEventPublisher struct {
	writer *kafka.Writer
}

func NewKafkaEventPublisher(writer *kafka.Writer) EventPublisher {
	return &kafkaEventPublisher{writer: writer}
}

func (p *kafkaEventPublisher) PublishAttendanceSynced(
	ctx context.Context,
	event events.AttendanceSyncedEvent,
) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: events.AttendanceSyncedTopic,
		Key:   []byte(event.DeviceIP),
		Value: payload,
	})
}
