package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reaction is an emoji reaction left by a user on a comment.
type Reaction struct {
	User  primitive.ObjectID `bson:"user" json:"user"`
	Emoji string             `bson:"emoji" json:"emoji"`
}

type Comment struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Task          primitive.ObjectID   `bson:"task" json:"task"`
	Author        primitive.ObjectID   `bson:"author" json:"author"`
	Content       string               `bson:"content" json:"content"`
	Mentions      []primitive.ObjectID `bson:"mentions" json:"mentions"`
	Attachments   []string             `bson:"attachments" json:"attachments"`
	Reactions     []Reaction           `bson:"reactions" json:"reactions"`
	IsEdited      bool                 `bson:"isEdited" json:"isEdited"`
	ParentComment *primitive.ObjectID  `bson:"parentComment,omitempty" json:"parentComment,omitempty"`
	EditedAt      *time.Time           `bson:"editedAt,omitempty" json:"editedAt,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// CommentDetails is a comment with the author reference resolved for
// display.
type CommentDetails struct {
	Comment `bson:",inline"`
	Author  AssigneeInfo `json:"author"`
}
