package saga

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

type StepStatus string

const (
	StepPending StepStatus = "PENDING"
	StepDone    StepStatus = "DONE"
	StepFailed  StepStatus = "FAILED"
)

type Step struct {
	Name      string     `bson:"name"`
	Status    StepStatus `bson:"status"`
	Error     string     `bson:"error,omitempty"`
	UpdatedAt *time.Time `bson:"updatedAt,omitempty"`
}

// Context is the data shared by every step of a saga.
type Context map[string]any

// String returns the value at key as a string. ObjectIDs are returned as hex;
// missing and non-string values yield "".
func (c Context) String(key string) string {
	switch v := c[key].(type) {
	case string:
		return v
	case bson.ObjectID:
		return v.Hex()
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

// Saga is a persisted multi-step workflow. Steps run strictly in order and
// at most one step runs per saga per processor cycle.
type Saga struct {
	ID             bson.ObjectID `bson:"_id"`
	SagaType       string        `bson:"sagaType"`
	Status         Status        `bson:"status"`
	Steps          []Step        `bson:"steps"`
	Context        Context       `bson:"context"`
	RetryCount     int           `bson:"retryCount"`
	AvailableAt    time.Time     `bson:"availableAt"`
	LastError      string        `bson:"lastError,omitempty"`
	ClaimedBy      string        `bson:"claimedBy,omitempty"`
	LeaseExpiresAt *time.Time    `bson:"leaseExpiresAt,omitempty"`
	CreatedAt      time.Time     `bson:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt"`
}

func (s *Saga) release() {
	s.ClaimedBy = ""
	s.LeaseExpiresAt = nil
}
