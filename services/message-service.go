package services

import (
	"context"
	"fmt"
	"time"

	"task-manager/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageService owns poll-based direct messages between users.
type MessageService struct {
	messagesCollection *mongo.Collection
	usersCollection    *mongo.Collection
}

func NewMessageService(messagesCollection, usersCollection *mongo.Collection) *MessageService {
	return &MessageService{
		messagesCollection: messagesCollection,
		usersCollection:    usersCollection,
	}
}

// SendMessage stores one message after checking the receiver exists.
func (s *MessageService) SendMessage(senderID, receiverID primitive.ObjectID, content string) (*models.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	var receiver models.User
	err := s.usersCollection.FindOne(context.Background(), bson.M{"_id": receiverID}).Decode(&receiver)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch receiver: %v", err)
	}

	message := &models.Message{
		ID:        primitive.NewObjectID(),
		Sender:    senderID,
		Receiver:  receiverID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := s.messagesCollection.InsertOne(context.Background(), message); err != nil {
		return nil, fmt.Errorf("failed to send message: %v", err)
	}

	return message, nil
}

// GetMessages returns the two-way history between the current user and
// another user, oldest first.
func (s *MessageService) GetMessages(currentUserID, otherUserID primitive.ObjectID) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": currentUserID, "receiver": otherUserID},
		bson.M{"sender": otherUserID, "receiver": currentUserID},
	}}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.messagesCollection.Find(context.Background(), filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %v", err)
	}
	defer cursor.Close(context.Background())

	var messages []models.Message
	if err := cursor.All(context.Background(), &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %v", err)
	}
	return messages, nil
}

// GetConversations aggregates the latest message per counterpart, joined
// with the counterpart's display attributes.
func (s *MessageService) GetConversations(currentUserID primitive.ObjectID) ([]models.Conversation, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"sender": currentUserID},
			bson.M{"receiver": currentUserID},
		}}}},
		{{Key: "$sort", Value: bson.M{"createdAt": 1}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$cond": bson.M{
				"if":   bson.M{"$eq": bson.A{"$sender", currentUserID}},
				"then": "$receiver",
				"else": "$sender",
			}},
			"lastMessage":   bson.M{"$last": "$content"},
			"lastMessageAt": bson.M{"$last": "$createdAt"},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$project", Value: bson.M{
			"_id":             1,
			"name":            "$user.name",
			"profileImageUrl": "$user.profileImageUrl",
			"lastMessage":     1,
			"lastMessageAt":   1,
		}}},
		{{Key: "$sort", Value: bson.M{"lastMessageAt": -1}}},
	}

	cursor, err := s.messagesCollection.Aggregate(context.Background(), pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate conversations: %v", err)
	}
	defer cursor.Close(context.Background())

	var conversations []models.Conversation
	if err := cursor.All(context.Background(), &conversations); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %v", err)
	}
	return conversations, nil
}
