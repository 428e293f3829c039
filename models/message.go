package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Receiver  primitive.ObjectID `bson:"receiver" json:"receiver"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Conversation is one entry in the poll-based conversations list: the
// counterpart user plus the latest message exchanged with them.
type Conversation struct {
	UserID          primitive.ObjectID `bson:"_id" json:"_id"`
	Name            string             `bson:"name" json:"name"`
	ProfileImageUrl string             `bson:"profileImageUrl" json:"profileImageUrl"`
	LastMessage     string             `bson:"lastMessage" json:"lastMessage"`
	LastMessageAt   time.Time          `bson:"lastMessageAt" json:"lastMessageAt"`
}
