package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Type string

const (
	TypePaymentApproved Type = "payment_approved"
	TypePaymentPending  Type = "payment_pending"
	TypeMovieUpdated    Type = "movie_updated"
	TypeUserRegistered  Type = "user_registered"
)

// Message is the content shared by every notification of one fan-out.
type Message struct {
	Type     Type
	Title    string
	Message  string
	Metadata bson.M
}

type Notification struct {
	ID        bson.ObjectID `bson:"_id"`
	UserID    bson.ObjectID `bson:"userId"`
	Type      Type          `bson:"type"`
	Title     string        `bson:"title"`
	Message   string        `bson:"message"`
	Read      bool          `bson:"read"`
	Metadata  bson.M        `bson:"metadata,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func newNotification(userID bson.ObjectID, msg Message, now time.Time) *Notification {
	return &Notification{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		Type:      msg.Type,
		Title:     msg.Title,
		Message:   msg.Message,
		Metadata:  msg.Metadata,
		CreatedAt: now,
	}
}
