package services

import (
	"context"
	"fmt"
	"time"

	"task-manager/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// BulkService applies one mutation across a set of task identifiers.
// Authorization is all-or-nothing: if any task in the set fails the
// capability check the whole batch is rejected and nothing is written.
// Activity records are fire-and-forget and never roll back the mutation.
type BulkService struct {
	tasksCollection *mongo.Collection
	activity        *ActivityService
}

func NewBulkService(tasksCollection *mongo.Collection, activity *ActivityService) *BulkService {
	return &BulkService{
		tasksCollection: tasksCollection,
		activity:        activity,
	}
}

// loadAuthorized fetches the matching tasks and verifies the actor may
// modify every one of them.
func (s *BulkService) loadAuthorized(actor models.Actor, taskIDs []primitive.ObjectID) ([]models.Task, error) {
	cursor, err := s.tasksCollection.Find(context.Background(), bson.M{"_id": bson.M{"$in": taskIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %v", err)
	}
	defer cursor.Close(context.Background())

	var tasks []models.Task
	if err := cursor.All(context.Background(), &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}

	for i := range tasks {
		if !tasks[i].CanBeModifiedBy(actor) {
			return nil, ErrForbidden
		}
	}
	return tasks, nil
}

// BulkUpdateStatus sets the status on every task in the set with a single
// multi-document update, then emits one activity record per task.
func (s *BulkService) BulkUpdateStatus(actor models.Actor, taskIDs []primitive.ObjectID, status models.TaskStatus) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, fmt.Errorf("%w: invalid task IDs", ErrValidation)
	}
	if !status.Valid() {
		return 0, fmt.Errorf("%w: invalid status", ErrValidation)
	}

	tasks, err := s.loadAuthorized(actor, taskIDs)
	if err != nil {
		return 0, err
	}

	result, err := s.tasksCollection.UpdateMany(
		context.Background(),
		bson.M{"_id": bson.M{"$in": taskIDs}},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update task status: %v", err)
	}

	for _, task := range tasks {
		activityType := models.ActivityTaskStatusChanged
		if status == models.StatusCompleted {
			activityType = models.ActivityTaskCompleted
		}
		s.activity.Record(activityType, actor.ID.Hex(), task.ID.Hex(), "", ActivityDetail{
			TaskTitle: task.Title,
			OldValue:  string(task.Status),
			NewValue:  string(status),
		})
	}

	return result.ModifiedCount, nil
}

// BulkUpdatePriority mirrors BulkUpdateStatus for the priority field.
func (s *BulkService) BulkUpdatePriority(actor models.Actor, taskIDs []primitive.ObjectID, priority models.TaskPriority) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, fmt.Errorf("%w: invalid task IDs", ErrValidation)
	}
	if !priority.Valid() {
		return 0, fmt.Errorf("%w: invalid priority", ErrValidation)
	}

	tasks, err := s.loadAuthorized(actor, taskIDs)
	if err != nil {
		return 0, err
	}

	result, err := s.tasksCollection.UpdateMany(
		context.Background(),
		bson.M{"_id": bson.M{"$in": taskIDs}},
		bson.M{"$set": bson.M{"priority": priority, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update task priority: %v", err)
	}

	for _, task := range tasks {
		s.activity.Record(models.ActivityTaskPriorityChanged, actor.ID.Hex(), task.ID.Hex(), "", ActivityDetail{
			TaskTitle: task.Title,
			OldValue:  string(task.Priority),
			NewValue:  string(priority),
		})
	}

	return result.ModifiedCount, nil
}

// BulkAssign appends each user not already assigned to each task, saving
// per task. Admin-only at the route boundary. One activity record per
// appended assignee.
func (s *BulkService) BulkAssign(actor models.Actor, taskIDs, userIDs []primitive.ObjectID) ([]models.Task, error) {
	if len(taskIDs) == 0 {
		return nil, fmt.Errorf("%w: invalid task IDs", ErrValidation)
	}
	if len(userIDs) == 0 {
		return nil, fmt.Errorf("%w: invalid user IDs", ErrValidation)
	}

	var updatedTasks []models.Task
	for _, taskID := range taskIDs {
		var task models.Task
		err := s.tasksCollection.FindOne(context.Background(), bson.M{"_id": taskID}).Decode(&task)
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load task: %v", err)
		}

		changed := false
		for _, userID := range userIDs {
			if task.IsAssignee(userID) {
				continue
			}
			task.AssignedTo = append(task.AssignedTo, userID)
			changed = true
			s.activity.Record(models.ActivityTaskAssigned, actor.ID.Hex(), task.ID.Hex(), userID.Hex(), ActivityDetail{
				TaskTitle: task.Title,
			})
		}

		if changed {
			task.UpdatedAt = time.Now().UTC()
			_, err = s.tasksCollection.UpdateOne(
				context.Background(),
				bson.M{"_id": taskID},
				bson.M{"$set": bson.M{"assignedTo": task.AssignedTo, "updatedAt": task.UpdatedAt}},
			)
			if err != nil {
				return nil, fmt.Errorf("failed to assign task: %v", err)
			}
		}
		updatedTasks = append(updatedTasks, task)
	}

	return updatedTasks, nil
}

// BulkDelete loads the matching tasks for audit records, emits one
// task_deleted record per task, then deletes all matches in one call.
func (s *BulkService) BulkDelete(actor models.Actor, taskIDs []primitive.ObjectID) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, fmt.Errorf("%w: invalid task IDs", ErrValidation)
	}

	cursor, err := s.tasksCollection.Find(context.Background(), bson.M{"_id": bson.M{"$in": taskIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to load tasks: %v", err)
	}
	var tasks []models.Task
	if err := cursor.All(context.Background(), &tasks); err != nil {
		return 0, fmt.Errorf("failed to decode tasks: %v", err)
	}

	for _, task := range tasks {
		s.activity.Record(models.ActivityTaskDeleted, actor.ID.Hex(), task.ID.Hex(), "", ActivityDetail{
			TaskTitle: task.Title,
		})
	}

	result, err := s.tasksCollection.DeleteMany(context.Background(), bson.M{"_id": bson.M{"$in": taskIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %v", err)
	}

	return result.DeletedCount, nil
}

// BulkUpdateDueDate sets the due date on every task in the set. Admin-only
// at the route boundary; no activity records.
func (s *BulkService) BulkUpdateDueDate(taskIDs []primitive.ObjectID, dueDate time.Time) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, fmt.Errorf("%w: invalid task IDs", ErrValidation)
	}
	if dueDate.IsZero() {
		return 0, fmt.Errorf("%w: invalid due date", ErrValidation)
	}

	result, err := s.tasksCollection.UpdateMany(
		context.Background(),
		bson.M{"_id": bson.M{"$in": taskIDs}},
		bson.M{"$set": bson.M{"dueDate": dueDate, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update due dates: %v", err)
	}

	return result.ModifiedCount, nil
}
