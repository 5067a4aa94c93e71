// Package queue defines message payloads exchanged over the message broker.
package queue

// Email template kinds understood by the dispatch consumer.  Each
// maps to a template on the mail provider side.
const (
	EmailRequested = "reservation.requested" // ask the party to confirm, carries the code link
	EmailConfirmed = "reservation.confirmed"
	EmailCancelled = "reservation.cancelled"
	EmailRejected  = "reservation.rejected" // waiting list declined, no slot offered
	EmailLoginCode = "admin.login-code"     // second-step verification code for operators
)

// EmailQueueName is the durable queue email events travel through.
const EmailQueueName = "reservation.email"

// EmailEvent is published whenever a state transition should notify a
// party by mail.  Dispatch is fire-and-forget: the engine never waits
// for, or rolls back on, delivery failures.
type EmailEvent struct {
	Kind      string            `json:"kind"`
	Recipient string            `json:"recipient"`
	Fields    map[string]string `json:"fields"`
}
