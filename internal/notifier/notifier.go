// Package notifier publishes notification events to RabbitMQ.  Every
// publish is best effort: failures are logged and returned, never
// propagated into the booking flow, so a dead broker degrades to
// missing notifications rather than failed reservations.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/queue"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// Publish sends one event to the booking.notifications queue.  The
// queue is declared durable and the message persistent, so events
// survive a broker restart; a delivery attempt is still fire and
// forget from the caller's point of view.
func Publish(ctx context.Context, ev queue.NotificationEvent) error {
	conn, err := amqp.Dial(queue.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.NotificationQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.NotificationQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

func baseEvent(d repository.Detail, kind, message string) queue.NotificationEvent {
	return queue.NotificationEvent{
		UserID:        d.UserID,
		Phone:         d.UserPhone,
		Kind:          kind,
		Message:       message,
		ReservationID: d.ID,
		RoomName:      d.RoomName,
		Date:          d.Date,
		StartTime:     d.StartTime,
		EndTime:       d.EndTime,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

// ReservationConfirmed builds the event sent to a booking's owner
// right after a successful create.
func ReservationConfirmed(d repository.Detail) queue.NotificationEvent {
	msg := fmt.Sprintf("Your reservation of %s on %s from %s to %s is confirmed.",
		d.RoomName, d.Date, d.StartTime, d.EndTime)
	return baseEvent(d, model.NotifyReservation, msg)
}

// ReservationCancelled builds the event sent to the owner when a
// booking is cancelled, by themselves or by an admin.
func ReservationCancelled(d repository.Detail) queue.NotificationEvent {
	msg := fmt.Sprintf("Your reservation of %s on %s from %s to %s has been cancelled.",
		d.RoomName, d.Date, d.StartTime, d.EndTime)
	return baseEvent(d, model.NotifyCancellation, msg)
}

// ReservationBumped builds the event sent to an owner whose booking
// was displaced by a priority reservation.
func ReservationBumped(d repository.Detail) queue.NotificationEvent {
	msg := fmt.Sprintf("Your reservation of %s on %s from %s to %s was cancelled to make room for a priority booking. Please pick another slot.",
		d.RoomName, d.Date, d.StartTime, d.EndTime)
	return baseEvent(d, model.NotifyBumped, msg)
}

// RoomOutOfService builds the event sent to each owner whose upcoming
// booking was cancelled because the room went out of service.
func RoomOutOfService(d repository.Detail) queue.NotificationEvent {
	msg := fmt.Sprintf("Room %s is out of service; your reservation on %s from %s to %s has been cancelled.",
		d.RoomName, d.Date, d.StartTime, d.EndTime)
	return baseEvent(d, model.NotifyRoomOutage, msg)
}
