package models

import "time"

// Audit outcomes.
const (
	AuditOutcomeSuccess = "SUCCESS"
	AuditOutcomeFailure = "FAILURE"
)

// AuditLog records one mutation dispatched through the gateway.
type AuditLog struct {
	ID        string    `db:"id" json:"id"`
	ActorID   string    `db:"actor_id" json:"actorId"`
	Action    string    `db:"action" json:"action"`
	Entity    string    `db:"entity" json:"entity"`
	TargetID  string    `db:"target_id" json:"targetId"`
	Payload   []byte    `db:"payload" json:"payload,omitempty"`
	Outcome   string    `db:"outcome" json:"outcome"`
	Message   string    `db:"message" json:"message,omitempty"`
	RequestID string    `db:"request_id" json:"requestId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// AuditFilter narrows an audit listing.
type AuditFilter struct {
	ActorID  string
	TargetID string
	Entity   string
	Outcome  string
	Page     int
	PageSize int
}
