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

// SearchService owns advanced task search, the filter-option catalog and
// the quick-filter counters. All queries run on the same role-scoped
// base filter the task list uses.
type SearchService struct {
	tasksCollection *mongo.Collection
	usersCollection *mongo.Collection
	tasks           *TaskService
}

func NewSearchService(tasksCollection, usersCollection *mongo.Collection, tasks *TaskService) *SearchService {
	return &SearchService{
		tasksCollection: tasksCollection,
		usersCollection: usersCollection,
		tasks:           tasks,
	}
}

type SearchTasksInput struct {
	Query       string
	Status      string
	Priority    string
	AssignedTo  string
	DueDateFrom string
	DueDateTo   string
	Overdue     bool
	SortBy      string
	SortOrder   string
	Page        int64
	Limit       int64
}

type Pagination struct {
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalTasks  int64 `json:"totalTasks,omitempty"`
	TotalUsers  int64 `json:"totalUsers,omitempty"`
	Limit       int64 `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// SearchTasks combines text, status, priority, assignee, date-range and
// overdue filters over the actor's visible tasks, paginated.
func (s *SearchService) SearchTasks(actor models.Actor, input SearchTasksInput) ([]models.TaskDetails, *Pagination, error) {
	filter := bson.M{}
	if !actor.IsAdmin() {
		filter["assignedTo"] = actor.ID
	}

	if input.Query != "" {
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": input.Query, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": input.Query, "$options": "i"}},
		}
	}
	if input.Status != "" {
		filter["status"] = input.Status
	}
	if input.Priority != "" {
		filter["priority"] = input.Priority
	}
	if input.AssignedTo != "" {
		assigneeID, err := primitive.ObjectIDFromHex(input.AssignedTo)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid assignedTo filter", ErrValidation)
		}
		filter["assignedTo"] = assigneeID
	}

	if input.DueDateFrom != "" || input.DueDateTo != "" {
		dueDate := bson.M{}
		if input.DueDateFrom != "" {
			from, err := time.Parse(time.RFC3339, input.DueDateFrom)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: invalid dueDateFrom", ErrValidation)
			}
			dueDate["$gte"] = from
		}
		if input.DueDateTo != "" {
			to, err := time.Parse(time.RFC3339, input.DueDateTo)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: invalid dueDateTo", ErrValidation)
			}
			dueDate["$lte"] = to
		}
		filter["dueDate"] = dueDate
	}

	// The overdue toggle wins over explicit status/date-range filters.
	if input.Overdue {
		filter["status"] = bson.M{"$ne": models.StatusCompleted}
		filter["dueDate"] = bson.M{"$lt": time.Now().UTC()}
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	total, err := s.tasksCollection.CountDocuments(context.Background(), filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count tasks: %v", err)
	}

	sortBy := input.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	sortOrder := -1
	if input.SortOrder == "asc" {
		sortOrder = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: sortOrder}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := s.tasksCollection.Find(context.Background(), filter, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search tasks: %v", err)
	}
	defer cursor.Close(context.Background())

	var tasks []models.Task
	if err := cursor.All(context.Background(), &tasks); err != nil {
		return nil, nil, fmt.Errorf("failed to decode tasks: %v", err)
	}

	details, err := s.tasks.resolveAssignees(tasks)
	if err != nil {
		return nil, nil, err
	}

	totalPages := (total + limit - 1) / limit
	pagination := &Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalTasks:  total,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
	return details, pagination, nil
}

type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Email string `json:"email,omitempty"`
}

type FilterOptions struct {
	Users      []FilterOption `json:"users"`
	Statuses   []FilterOption `json:"statuses"`
	Priorities []FilterOption `json:"priorities"`
	DateRange  struct {
		Min *time.Time `json:"min"`
		Max *time.Time `json:"max"`
	} `json:"dateRange"`
}

// GetFilterOptions returns the catalog the search UI builds its filter
// controls from: every user, the fixed status/priority sets and the
// span of due dates in use.
func (s *SearchService) GetFilterOptions() (*FilterOptions, error) {
	projection := options.Find().SetProjection(bson.M{"name": 1, "email": 1})
	cursor, err := s.usersCollection.Find(context.Background(), bson.M{}, projection)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %v", err)
	}
	defer cursor.Close(context.Background())

	var users []models.User
	if err := cursor.All(context.Background(), &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}

	result := &FilterOptions{
		Users: make([]FilterOption, 0, len(users)),
		Statuses: []FilterOption{
			{Value: string(models.StatusPending), Label: string(models.StatusPending)},
			{Value: string(models.StatusInProgress), Label: string(models.StatusInProgress)},
			{Value: string(models.StatusCompleted), Label: string(models.StatusCompleted)},
		},
		Priorities: []FilterOption{
			{Value: string(models.PriorityLow), Label: string(models.PriorityLow)},
			{Value: string(models.PriorityMedium), Label: string(models.PriorityMedium)},
			{Value: string(models.PriorityHigh), Label: string(models.PriorityHigh)},
		},
	}
	for _, u := range users {
		result.Users = append(result.Users, FilterOption{
			Value: u.ID.Hex(),
			Label: u.Name,
			Email: u.Email,
		})
	}

	dateProjection := options.Find().SetProjection(bson.M{"dueDate": 1})
	dateCursor, err := s.tasksCollection.Find(context.Background(), bson.M{}, dateProjection)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve due dates: %v", err)
	}
	defer dateCursor.Close(context.Background())

	var tasks []models.Task
	if err := dateCursor.All(context.Background(), &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode due dates: %v", err)
	}
	for i := range tasks {
		due := tasks[i].DueDate
		if result.DateRange.Min == nil || due.Before(*result.DateRange.Min) {
			result.DateRange.Min = &due
		}
		if result.DateRange.Max == nil || due.After(*result.DateRange.Max) {
			result.DateRange.Max = &due
		}
	}

	return result, nil
}

// SearchUsers is the paginated admin variant of the directory search,
// with an optional role filter.
func (s *SearchService) SearchUsers(query, role string, page, limit int64) ([]models.User, *Pagination, error) {
	filter := bson.M{}
	if query != "" {
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": query, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": query, "$options": "i"}},
		}
	}
	if role != "" {
		filter["role"] = role
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	total, err := s.usersCollection.CountDocuments(context.Background(), filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count users: %v", err)
	}

	opts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := s.usersCollection.Find(context.Background(), filter, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search users: %v", err)
	}
	defer cursor.Close(context.Background())

	var users []models.User
	if err := cursor.All(context.Background(), &users); err != nil {
		return nil, nil, fmt.Errorf("failed to decode users: %v", err)
	}

	totalPages := (total + limit - 1) / limit
	pagination := &Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalUsers:  total,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
	return users, pagination, nil
}

type QuickFilter struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int64  `json:"count"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// GetQuickFilters computes the one-click filter counters over the
// actor's visible tasks: all, due today, due this week, overdue, open
// high-priority and completed today.
func (s *SearchService) GetQuickFilters(actor models.Actor) ([]QuickFilter, error) {
	base := bson.M{}
	if !actor.IsAdmin() {
		base["assignedTo"] = actor.ID
	}

	now := time.Now().UTC()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	endOfToday := startOfToday.Add(24 * time.Hour)
	startOfWeek := startOfToday.AddDate(0, 0, -int(now.Weekday()))
	endOfWeek := startOfWeek.AddDate(0, 0, 7)

	count := func(extra bson.M) (int64, error) {
		filter := bson.M{}
		for k, v := range base {
			filter[k] = v
		}
		for k, v := range extra {
			filter[k] = v
		}
		n, err := s.tasksCollection.CountDocuments(context.Background(), filter)
		if err != nil {
			return 0, fmt.Errorf("failed to count tasks: %v", err)
		}
		return n, nil
	}

	all, err := count(nil)
	if err != nil {
		return nil, err
	}
	dueToday, err := count(bson.M{"dueDate": bson.M{"$gte": startOfToday, "$lt": endOfToday}})
	if err != nil {
		return nil, err
	}
	dueThisWeek, err := count(bson.M{"dueDate": bson.M{"$gte": startOfWeek, "$lt": endOfWeek}})
	if err != nil {
		return nil, err
	}
	overdue, err := count(bson.M{
		"status":  bson.M{"$ne": models.StatusCompleted},
		"dueDate": bson.M{"$lt": now},
	})
	if err != nil {
		return nil, err
	}
	highPriority, err := count(bson.M{
		"priority": models.PriorityHigh,
		"status":   bson.M{"$ne": models.StatusCompleted},
	})
	if err != nil {
		return nil, err
	}
	completedToday, err := count(bson.M{
		"status":    models.StatusCompleted,
		"updatedAt": bson.M{"$gte": startOfToday, "$lt": endOfToday},
	})
	if err != nil {
		return nil, err
	}

	return []QuickFilter{
		{ID: "all", Label: "All Tasks", Count: all, Icon: "LuClipboardList", Color: "blue"},
		{ID: "today", Label: "Due Today", Count: dueToday, Icon: "LuCalendar", Color: "orange"},
		{ID: "week", Label: "This Week", Count: dueThisWeek, Icon: "LuCalendarDays", Color: "purple"},
		{ID: "overdue", Label: "Overdue", Count: overdue, Icon: "LuBadgeAlert", Color: "red"},
		{ID: "high-priority", Label: "High Priority", Count: highPriority, Icon: "LuZap", Color: "red"},
		{ID: "completed-today", Label: "Completed Today", Count: completedToday, Icon: "LuCheckCheck", Color: "green"},
	}, nil
}
