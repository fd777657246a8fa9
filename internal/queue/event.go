// Package queue defines the booking lifecycle events and moves them over
// RabbitMQ: a publisher used by the booking service and a consumer that
// appends every event to an audit log file.
package queue

// Routing keys, also carried in the AMQP Type header.
const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"
)

// QueueName is the durable queue all booking events are routed to.
const QueueName = "booking.events"

// BookingEvent describes one lifecycle transition of a booking.  It carries
// enough to write an audit line without reading the store again.
type BookingEvent struct {
	BookingID     string `json:"booking_id"`
	Date          string `json:"date"`
	PrimaryBooker string `json:"primary_booker"`
	PrimaryPhone  string `json:"primary_phone"`
	PartySize     int    `json:"party_size"`
	OccurredAt    string `json:"occurred_at"`
}
