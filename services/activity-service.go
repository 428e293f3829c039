package services

import (
	"time"

	"task-manager/backend/logging"
	"task-manager/backend/models"
	"task-manager/backend/repositories"

	"github.com/sony/gobreaker"
)

// ActivityService writes audit records and serves the activity feed.
// Writes are fire-and-forget: a failing or open breaker never fails the
// task mutation that triggered the record.
type ActivityService struct {
	repo    *repositories.ActivityRepo
	breaker *gobreaker.CircuitBreaker
}

func NewActivityService(repo *repositories.ActivityRepo, breaker *gobreaker.CircuitBreaker) *ActivityService {
	return &ActivityService{repo: repo, breaker: breaker}
}

// Record logs one activity. Never returns an error; failures are logged
// and dropped.
func (s *ActivityService) Record(activityType models.ActivityType, actorID, taskID, targetID string, detail ActivityDetail) {
	if s == nil || s.repo == nil {
		return
	}

	activity := &models.Activity{
		Type:      activityType,
		ActorID:   actorID,
		TaskID:    taskID,
		TargetID:  targetID,
		TaskTitle: detail.TaskTitle,
		OldValue:  detail.OldValue,
		NewValue:  detail.NewValue,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.repo.Insert(activity)
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: ACTIVITY_RECORD_DROPPED, Description: Failed to record %s activity: %v", activityType, err)
	}
}

// ActivityDetail carries the optional old/new values and the task title
// snapshot attached to a record.
type ActivityDetail struct {
	TaskTitle string
	OldValue  string
	NewValue  string
}

func (s *ActivityService) Feed(userID string, limit int) ([]models.Activity, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	activities, err := s.repo.FeedForUser(userID, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.UnreadCount(userID)
	if err != nil {
		return nil, 0, err
	}
	return activities, unread, nil
}

func (s *ActivityService) TeamFeed(limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.TeamFeed(limit)
}

func (s *ActivityService) UnreadCount(userID string) (int, error) {
	return s.repo.UnreadCount(userID)
}

// MarkRead marks the given feed entries read. Each entry needs its id and
// createdAt, the feed row's full clustering key.
func (s *ActivityService) MarkRead(userID string, entries []ActivityRef) error {
	if len(entries) == 0 {
		return ErrValidation
	}
	for _, e := range entries {
		if err := s.repo.MarkRead(userID, e.ID, e.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

type ActivityRef struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
}

func (s *ActivityService) MarkAllRead(userID string) error {
	return s.repo.MarkAllRead(userID)
}
