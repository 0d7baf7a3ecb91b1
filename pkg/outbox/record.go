package outbox

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// Record is a side effect that must run at least once.
// Records are never deleted; SENT and FAILED are terminal.
type Record struct {
	ID             bson.ObjectID `bson:"_id"`
	AggregateType  string        `bson:"aggregateType"`
	AggregateID    string        `bson:"aggregateId"`
	EventType      string        `bson:"eventType"`
	Payload        bson.M        `bson:"payload"`
	Status         Status        `bson:"status"`
	Retries        int           `bson:"retries"`
	AvailableAt    time.Time     `bson:"availableAt"`
	Error          string        `bson:"error,omitempty"`
	ClaimedBy      string        `bson:"claimedBy,omitempty"`
	LeaseExpiresAt *time.Time    `bson:"leaseExpiresAt,omitempty"`
	CreatedAt      time.Time     `bson:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt"`
}

// Event is the input of Producer.Enqueue.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       bson.M
}

func (r *Record) release() {
	r.ClaimedBy = ""
	r.LeaseExpiresAt = nil
}
