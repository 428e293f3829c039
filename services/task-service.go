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

// TaskService owns the task lifecycle: CRUD, the checklist-driven
// progress/status derivation and assignment-based authorization.
type TaskService struct {
	tasksCollection *mongo.Collection
	usersCollection *mongo.Collection
}

func NewTaskService(tasksCollection, usersCollection *mongo.Collection) *TaskService {
	return &TaskService{
		tasksCollection: tasksCollection,
		usersCollection: usersCollection,
	}
}

type CreateTaskInput struct {
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Priority      models.TaskPriority    `json:"priority"`
	DueDate       time.Time              `json:"dueDate"`
	AssignedTo    []primitive.ObjectID   `json:"assignedTo"`
	Attachments   []string               `json:"attachments"`
	TodoChecklist []models.ChecklistItem `json:"todoChecklist"`
}

// CreateTask inserts a new task owned by the actor. New tasks always
// start Pending with zero progress, whatever the incoming checklist says.
func (s *TaskService) CreateTask(actor models.Actor, input CreateTaskInput) (*models.Task, error) {
	if len(input.AssignedTo) == 0 {
		return nil, fmt.Errorf("%w: assignedTo must be a non-empty array of user IDs", ErrValidation)
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: invalid priority", ErrValidation)
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:            primitive.NewObjectID(),
		Title:         input.Title,
		Description:   input.Description,
		Priority:      priority,
		DueDate:       input.DueDate,
		Status:        models.StatusPending,
		Progress:      0,
		TodoChecklist: input.TodoChecklist,
		Attachments:   input.Attachments,
		AssignedTo:    input.AssignedTo,
		CreatedBy:     actor.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if task.TodoChecklist == nil {
		task.TodoChecklist = []models.ChecklistItem{}
	}
	if task.Attachments == nil {
		task.Attachments = []string{}
	}

	if _, err := s.tasksCollection.InsertOne(context.Background(), task); err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}

	return task, nil
}

// GetTaskByID returns a task with assignee references resolved.
func (s *TaskService) GetTaskByID(taskID primitive.ObjectID) (*models.TaskDetails, error) {
	var task models.Task
	err := s.tasksCollection.FindOne(context.Background(), bson.M{"_id": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}

	details, err := s.resolveAssignees([]models.Task{task})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListTasks returns tasks visible to the actor, optionally narrowed by
// status, plus a status summary over the role-scoped base filter. The
// summary ignores the status narrowing on purpose.
func (s *TaskService) ListTasks(actor models.Actor, status string) ([]models.TaskDetails, *models.StatusSummary, error) {
	baseFilter := bson.M{}
	if !actor.IsAdmin() {
		baseFilter["assignedTo"] = actor.ID
	}

	listFilter := bson.M{}
	for k, v := range baseFilter {
		listFilter[k] = v
	}
	if status != "" {
		listFilter["status"] = status
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.tasksCollection.Find(context.Background(), listFilter, findOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(context.Background())

	var tasks []models.Task
	if err := cursor.All(context.Background(), &tasks); err != nil {
		return nil, nil, fmt.Errorf("failed to decode tasks: %v", err)
	}

	details, err := s.resolveAssignees(tasks)
	if err != nil {
		return nil, nil, err
	}

	summary, err := s.statusSummary(baseFilter)
	if err != nil {
		return nil, nil, err
	}

	return details, summary, nil
}

func (s *TaskService) statusSummary(baseFilter bson.M) (*models.StatusSummary, error) {
	summary := &models.StatusSummary{}

	counts := []struct {
		status models.TaskStatus
		target *int64
	}{
		{"", &summary.All},
		{models.StatusPending, &summary.PendingTasks},
		{models.StatusInProgress, &summary.InProgressTasks},
		{models.StatusCompleted, &summary.CompletedTasks},
	}

	for _, c := range counts {
		filter := bson.M{}
		for k, v := range baseFilter {
			filter[k] = v
		}
		if c.status != "" {
			filter["status"] = c.status
		}
		n, err := s.tasksCollection.CountDocuments(context.Background(), filter)
		if err != nil {
			return nil, fmt.Errorf("failed to count tasks: %v", err)
		}
		*c.target = n
	}

	return summary, nil
}

type UpdateTaskInput struct {
	Title         *string                 `json:"title"`
	Description   *string                 `json:"description"`
	Priority      *models.TaskPriority    `json:"priority"`
	DueDate       *time.Time              `json:"dueDate"`
	TodoChecklist *[]models.ChecklistItem `json:"todoChecklist"`
	Attachments   *[]string               `json:"attachments"`
	AssignedTo    *[]primitive.ObjectID   `json:"assignedTo"`
}

// UpdateTask overwrites exactly the fields present in the input and
// leaves the rest untouched. A checklist replaced here does NOT recompute
// progress; only UpdateChecklist derives it.
func (s *TaskService) UpdateTask(taskID primitive.ObjectID, input UpdateTaskInput) (*models.Task, error) {
	var task models.Task
	err := s.tasksCollection.FindOne(context.Background(), bson.M{"_id": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, fmt.Errorf("%w: invalid priority", ErrValidation)
		}
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.TodoChecklist != nil {
		task.TodoChecklist = *input.TodoChecklist
	}
	if input.Attachments != nil {
		task.Attachments = *input.Attachments
	}
	if input.AssignedTo != nil {
		task.AssignedTo = *input.AssignedTo
	}
	task.UpdatedAt = time.Now().UTC()

	if _, err := s.tasksCollection.ReplaceOne(context.Background(), bson.M{"_id": taskID}, &task); err != nil {
		return nil, fmt.Errorf("failed to update task: %v", err)
	}

	return &task, nil
}

// DeleteTask hard-deletes a task. Authorization-agnostic: the admin-only
// restriction lives at the route boundary.
func (s *TaskService) DeleteTask(taskID primitive.ObjectID) error {
	result, err := s.tasksCollection.DeleteOne(context.Background(), bson.M{"_id": taskID})
	if err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	if result.DeletedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ChangeTaskStatus sets the status directly. Moving to Completed forces
// every checklist item done and pins progress to 100; moving to Pending
// or In Progress leaves progress as it was.
func (s *TaskService) ChangeTaskStatus(actor models.Actor, taskID primitive.ObjectID, status models.TaskStatus) error {
	var task models.Task
	err := s.tasksCollection.FindOne(context.Background(), bson.M{"_id": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return ErrTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch task: %v", err)
	}

	if !task.CanBeModifiedBy(actor) {
		return ErrForbidden
	}

	if status != "" {
		if !status.Valid() {
			return fmt.Errorf("%w: invalid status", ErrValidation)
		}
		task.Status = status
	}

	if task.Status == models.StatusCompleted {
		task.ForceComplete()
	}
	task.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"status":        task.Status,
		"todoChecklist": task.TodoChecklist,
		"progress":      task.Progress,
		"updatedAt":     task.UpdatedAt,
	}}
	if _, err := s.tasksCollection.UpdateOne(context.Background(), bson.M{"_id": taskID}, update); err != nil {
		return fmt.Errorf("failed to update task status: %v", err)
	}

	return nil
}

// UpdateChecklist replaces the checklist wholesale, recomputes progress
// from the new items and derives status from progress.
func (s *TaskService) UpdateChecklist(actor models.Actor, taskID primitive.ObjectID, checklist []models.ChecklistItem) (*models.TaskDetails, error) {
	var task models.Task
	err := s.tasksCollection.FindOne(context.Background(), bson.M{"_id": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}

	if !task.CanBeModifiedBy(actor) {
		return nil, ErrForbidden
	}

	if checklist == nil {
		checklist = []models.ChecklistItem{}
	}
	task.TodoChecklist = checklist
	task.RecomputeProgress()
	task.Status = models.StatusForProgress(task.Progress)
	task.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"todoChecklist": task.TodoChecklist,
		"progress":      task.Progress,
		"status":        task.Status,
		"updatedAt":     task.UpdatedAt,
	}}
	if _, err := s.tasksCollection.UpdateOne(context.Background(), bson.M{"_id": taskID}, update); err != nil {
		return nil, fmt.Errorf("failed to update checklist: %v", err)
	}

	details, err := s.resolveAssignees([]models.Task{task})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// resolveAssignees loads display attributes for every assignee and
// creator referenced by the given tasks in one query.
func (s *TaskService) resolveAssignees(tasks []models.Task) ([]models.TaskDetails, error) {
	idSet := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, task := range tasks {
		for _, id := range task.AssignedTo {
			if !idSet[id] {
				idSet[id] = true
				ids = append(ids, id)
			}
		}
		if !task.CreatedBy.IsZero() && !idSet[task.CreatedBy] {
			idSet[task.CreatedBy] = true
			ids = append(ids, task.CreatedBy)
		}
	}

	users := map[primitive.ObjectID]models.AssigneeInfo{}
	if len(ids) > 0 {
		projection := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "profileImageUrl": 1})
		cursor, err := s.usersCollection.Find(context.Background(), bson.M{"_id": bson.M{"$in": ids}}, projection)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve assignees: %v", err)
		}
		defer cursor.Close(context.Background())

		var infos []models.AssigneeInfo
		if err := cursor.All(context.Background(), &infos); err != nil {
			return nil, fmt.Errorf("failed to decode assignees: %v", err)
		}
		for _, info := range infos {
			users[info.ID] = info
		}
	}

	details := make([]models.TaskDetails, 0, len(tasks))
	for _, task := range tasks {
		resolved := make([]models.AssigneeInfo, 0, len(task.AssignedTo))
		for _, id := range task.AssignedTo {
			if info, ok := users[id]; ok {
				resolved = append(resolved, info)
			}
		}
		var creator *models.AssigneeInfo
		if info, ok := users[task.CreatedBy]; ok {
			creator = &info
		}
		details = append(details, models.TaskDetails{
			Task:               task,
			AssignedTo:         resolved,
			CreatedBy:          creator,
			CompletedTodoCount: task.CompletedTodoCount(),
		})
	}

	return details, nil
}
