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

// CommentService owns task comments: threads, edits, reactions.
type CommentService struct {
	commentsCollection *mongo.Collection
	tasksCollection    *mongo.Collection
	usersCollection    *mongo.Collection
	activity           *ActivityService
}

func NewCommentService(commentsCollection, tasksCollection, usersCollection *mongo.Collection, activity *ActivityService) *CommentService {
	return &CommentService{
		commentsCollection: commentsCollection,
		tasksCollection:    tasksCollection,
		usersCollection:    usersCollection,
		activity:           activity,
	}
}

// AddComment creates a top-level comment (or a reply when parentID is
// set) on an existing task.
func (s *CommentService) AddComment(actor models.Actor, taskID primitive.ObjectID, content string, mentions []primitive.ObjectID, parentID *primitive.ObjectID) (*models.CommentDetails, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	var task models.Task
	err := s.tasksCollection.FindOne(context.Background(), bson.M{"_id": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}

	if parentID != nil {
		var parent models.Comment
		err := s.commentsCollection.FindOne(context.Background(), bson.M{"_id": *parentID}).Decode(&parent)
		if err == mongo.ErrNoDocuments {
			return nil, ErrCommentNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch parent comment: %v", err)
		}
	}

	if mentions == nil {
		mentions = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	comment := &models.Comment{
		ID:            primitive.NewObjectID(),
		Task:          taskID,
		Author:        actor.ID,
		Content:       content,
		Mentions:      mentions,
		Attachments:   []string{},
		Reactions:     []models.Reaction{},
		ParentComment: parentID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := s.commentsCollection.InsertOne(context.Background(), comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %v", err)
	}

	s.activity.Record(models.ActivityCommentAdded, actor.ID.Hex(), taskID.Hex(), "", ActivityDetail{
		TaskTitle: task.Title,
	})

	return s.resolveAuthor(comment)
}

// GetTaskComments lists top-level comments on a task, newest first, with
// the total count for pagination.
func (s *CommentService) GetTaskComments(taskID primitive.ObjectID, limit, skip int64) ([]models.CommentDetails, int64, error) {
	var task models.Task
	err := s.tasksCollection.FindOne(context.Background(), bson.M{"_id": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, 0, ErrTaskNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch task: %v", err)
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	filter := bson.M{"task": taskID, "parentComment": nil}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(skip)
	cursor, err := s.commentsCollection.Find(context.Background(), filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve comments: %v", err)
	}
	defer cursor.Close(context.Background())

	var comments []models.Comment
	if err := cursor.All(context.Background(), &comments); err != nil {
		return nil, 0, fmt.Errorf("failed to decode comments: %v", err)
	}

	total, err := s.commentsCollection.CountDocuments(context.Background(), filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %v", err)
	}

	details, err := s.resolveAuthors(comments)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// GetThread returns a parent comment and its replies, oldest reply first.
func (s *CommentService) GetThread(commentID primitive.ObjectID) (*models.CommentDetails, []models.CommentDetails, error) {
	var parent models.Comment
	err := s.commentsCollection.FindOne(context.Background(), bson.M{"_id": commentID}).Decode(&parent)
	if err == mongo.ErrNoDocuments {
		return nil, nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch comment: %v", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.commentsCollection.Find(context.Background(), bson.M{"parentComment": commentID}, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve replies: %v", err)
	}
	defer cursor.Close(context.Background())

	var replies []models.Comment
	if err := cursor.All(context.Background(), &replies); err != nil {
		return nil, nil, fmt.Errorf("failed to decode replies: %v", err)
	}

	parentDetails, err := s.resolveAuthor(&parent)
	if err != nil {
		return nil, nil, err
	}
	replyDetails, err := s.resolveAuthors(replies)
	if err != nil {
		return nil, nil, err
	}
	return parentDetails, replyDetails, nil
}

// UpdateComment edits a comment's content. Only the author may edit.
func (s *CommentService) UpdateComment(actor models.Actor, commentID primitive.ObjectID, content string) (*models.CommentDetails, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	var comment models.Comment
	err := s.commentsCollection.FindOne(context.Background(), bson.M{"_id": commentID}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comment: %v", err)
	}

	if comment.Author != actor.ID {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	comment.Content = content
	comment.IsEdited = true
	comment.EditedAt = &now
	comment.UpdatedAt = now

	update := bson.M{"$set": bson.M{
		"content":   content,
		"isEdited":  true,
		"editedAt":  now,
		"updatedAt": now,
	}}
	if _, err := s.commentsCollection.UpdateOne(context.Background(), bson.M{"_id": commentID}, update); err != nil {
		return nil, fmt.Errorf("failed to update comment: %v", err)
	}

	return s.resolveAuthor(&comment)
}

// DeleteComment removes a comment and its replies. The author or an admin
// may delete.
func (s *CommentService) DeleteComment(actor models.Actor, commentID primitive.ObjectID) error {
	var comment models.Comment
	err := s.commentsCollection.FindOne(context.Background(), bson.M{"_id": commentID}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch comment: %v", err)
	}

	if comment.Author != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}

	_, err = s.commentsCollection.DeleteMany(context.Background(), bson.M{"$or": bson.A{
		bson.M{"_id": commentID},
		bson.M{"parentComment": commentID},
	}})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %v", err)
	}
	return nil
}

// ToggleReaction adds the actor's emoji reaction, or removes it when the
// same emoji is already present.
func (s *CommentService) ToggleReaction(actor models.Actor, commentID primitive.ObjectID, emoji string) (*models.CommentDetails, error) {
	if emoji == "" {
		return nil, fmt.Errorf("%w: emoji is required", ErrValidation)
	}

	var comment models.Comment
	err := s.commentsCollection.FindOne(context.Background(), bson.M{"_id": commentID}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comment: %v", err)
	}

	found := false
	reactions := comment.Reactions[:0]
	for _, r := range comment.Reactions {
		if r.User == actor.ID && r.Emoji == emoji {
			found = true
			continue
		}
		reactions = append(reactions, r)
	}
	if !found {
		reactions = append(reactions, models.Reaction{User: actor.ID, Emoji: emoji})
	}
	comment.Reactions = reactions

	update := bson.M{"$set": bson.M{"reactions": comment.Reactions, "updatedAt": time.Now().UTC()}}
	if _, err := s.commentsCollection.UpdateOne(context.Background(), bson.M{"_id": commentID}, update); err != nil {
		return nil, fmt.Errorf("failed to update reactions: %v", err)
	}

	return s.resolveAuthor(&comment)
}

func (s *CommentService) resolveAuthor(comment *models.Comment) (*models.CommentDetails, error) {
	details, err := s.resolveAuthors([]models.Comment{*comment})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *CommentService) resolveAuthors(comments []models.Comment) ([]models.CommentDetails, error) {
	idSet := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, c := range comments {
		if !idSet[c.Author] {
			idSet[c.Author] = true
			ids = append(ids, c.Author)
		}
	}

	authors := map[primitive.ObjectID]models.AssigneeInfo{}
	if len(ids) > 0 {
		projection := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "profileImageUrl": 1})
		cursor, err := s.usersCollection.Find(context.Background(), bson.M{"_id": bson.M{"$in": ids}}, projection)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve authors: %v", err)
		}
		defer cursor.Close(context.Background())

		var infos []models.AssigneeInfo
		if err := cursor.All(context.Background(), &infos); err != nil {
			return nil, fmt.Errorf("failed to decode authors: %v", err)
		}
		for _, info := range infos {
			authors[info.ID] = info
		}
	}

	details := make([]models.CommentDetails, 0, len(comments))
	for _, c := range comments {
		details = append(details, models.CommentDetails{
			Comment: c,
			Author:  authors[c.Author],
		})
	}
	return details, nil
}
