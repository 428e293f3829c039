package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"task-manager/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AnalyticsService computes dashboards, insights and the priority
// suggestion heuristic. Read-only over state produced by the task core.
type AnalyticsService struct {
	tasksCollection *mongo.Collection
	usersCollection *mongo.Collection
}

func NewAnalyticsService(tasksCollection, usersCollection *mongo.Collection) *AnalyticsService {
	return &AnalyticsService{
		tasksCollection: tasksCollection,
		usersCollection: usersCollection,
	}
}

type DashboardStatistics struct {
	TotalTasks     int64 `json:"totalTasks"`
	PendingTasks   int64 `json:"pendingTasks"`
	CompletedTasks int64 `json:"completedTasks"`
	OverdueTasks   int64 `json:"overdueTasks"`
}

type DashboardCharts struct {
	TaskDistribution   map[string]int64 `json:"taskDistribution"`
	TaskPriorityLevels map[string]int64 `json:"taskPriorityLevels"`
}

type DashboardData struct {
	Statistics  DashboardStatistics `json:"statistics"`
	Charts      DashboardCharts     `json:"charts"`
	RecentTasks []models.Task       `json:"recentTasks"`
}

// GetDashboardData builds the admin dashboard over all tasks. Pass a
// non-nil userID to scope it to a single user's assigned tasks.
func (s *AnalyticsService) GetDashboardData(userID *primitive.ObjectID) (*DashboardData, error) {
	baseFilter := bson.M{}
	if userID != nil {
		baseFilter["assignedTo"] = *userID
	}

	data := &DashboardData{}

	var err error
	if data.Statistics.TotalTasks, err = s.count(baseFilter, nil); err != nil {
		return nil, err
	}
	if data.Statistics.PendingTasks, err = s.count(baseFilter, bson.M{"status": models.StatusPending}); err != nil {
		return nil, err
	}
	if data.Statistics.CompletedTasks, err = s.count(baseFilter, bson.M{"status": models.StatusCompleted}); err != nil {
		return nil, err
	}
	overdueFilter := bson.M{
		"status":  bson.M{"$ne": models.StatusCompleted},
		"dueDate": bson.M{"$lt": time.Now().UTC()},
	}
	if data.Statistics.OverdueTasks, err = s.count(baseFilter, overdueFilter); err != nil {
		return nil, err
	}

	statusCounts, err := s.groupCounts(baseFilter, "$status")
	if err != nil {
		return nil, err
	}
	// Chart keys drop the space in "In Progress"; "All" is the total.
	data.Charts.TaskDistribution = map[string]int64{
		"Pending":    statusCounts[string(models.StatusPending)],
		"InProgress": statusCounts[string(models.StatusInProgress)],
		"Completed":  statusCounts[string(models.StatusCompleted)],
		"All":        data.Statistics.TotalTasks,
	}

	priorityCounts, err := s.groupCounts(baseFilter, "$priority")
	if err != nil {
		return nil, err
	}
	data.Charts.TaskPriorityLevels = map[string]int64{
		"Low":    priorityCounts[string(models.PriorityLow)],
		"Medium": priorityCounts[string(models.PriorityMedium)],
		"High":   priorityCounts[string(models.PriorityHigh)],
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(10).
		SetProjection(bson.M{"title": 1, "status": 1, "priority": 1, "dueDate": 1, "createdAt": 1})
	cursor, err := s.tasksCollection.Find(context.Background(), baseFilter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent tasks: %v", err)
	}
	defer cursor.Close(context.Background())
	if err := cursor.All(context.Background(), &data.RecentTasks); err != nil {
		return nil, fmt.Errorf("failed to decode recent tasks: %v", err)
	}

	return data, nil
}

func (s *AnalyticsService) count(base bson.M, extra bson.M) (int64, error) {
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

func (s *AnalyticsService) groupCounts(base bson.M, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{}
	if len(base) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: base}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.M{
		"_id":   field,
		"count": bson.M{"$sum": 1},
	}}})

	cursor, err := s.tasksCollection.Aggregate(context.Background(), pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tasks: %v", err)
	}
	defer cursor.Close(context.Background())

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(context.Background(), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation: %v", err)
	}

	counts := map[string]int64{}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

type InsightMetrics struct {
	TotalTasks        int `json:"totalTasks"`
	CompletedTasks    int `json:"completedTasks"`
	CompletionRate    int `json:"completionRate"`
	OverdueCount      int `json:"overdueCount"`
	DueSoonCount      int `json:"dueSoonCount"`
	AvgCompletionDays int `json:"avgCompletionDays"`
	WorkloadScore     int `json:"workloadScore"`
}

type UrgentTask struct {
	ID           primitive.ObjectID  `json:"_id"`
	Title        string              `json:"title"`
	Priority     models.TaskPriority `json:"priority"`
	DueDate      time.Time           `json:"dueDate"`
	DaysUntilDue int                 `json:"daysUntilDue"`
}

type Recommendation struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

type TaskInsights struct {
	Metrics           InsightMetrics   `json:"metrics"`
	PriorityBreakdown map[string]int   `json:"priorityBreakdown"`
	UrgentTasks       []UrgentTask     `json:"urgentTasks"`
	Recommendations   []Recommendation `json:"recommendations"`
}

// GetTaskInsights analyzes the actor's tasks (all tasks for admins) and
// produces metrics plus actionable recommendations.
func (s *AnalyticsService) GetTaskInsights(actor models.Actor) (*TaskInsights, error) {
	filter := bson.M{}
	if !actor.IsAdmin() {
		filter["assignedTo"] = actor.ID
	}

	tasks, err := s.loadTasks(filter)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	insights := &TaskInsights{
		PriorityBreakdown: map[string]int{"High": 0, "Medium": 0, "Low": 0},
		UrgentTasks:       []UrgentTask{},
		Recommendations:   []Recommendation{},
	}

	completed := 0
	var completionDaysSum float64
	completionSamples := 0
	var urgent []UrgentTask

	for _, t := range tasks {
		if t.Status == models.StatusCompleted {
			completed++
			if !t.CreatedAt.IsZero() && !t.UpdatedAt.IsZero() {
				completionDaysSum += t.UpdatedAt.Sub(t.CreatedAt).Hours() / 24
				completionSamples++
			}
			continue
		}

		insights.PriorityBreakdown[string(t.Priority)]++

		if t.DueDate.Before(now) {
			insights.Metrics.OverdueCount++
		}
		daysUntilDue := daysUntil(t.DueDate, now)
		if daysUntilDue >= 0 && daysUntilDue <= 3 {
			insights.Metrics.DueSoonCount++
		}
		if t.Priority == models.PriorityHigh {
			urgent = append(urgent, UrgentTask{
				ID:           t.ID,
				Title:        t.Title,
				Priority:     t.Priority,
				DueDate:      t.DueDate,
				DaysUntilDue: daysUntilDue,
			})
		}
	}

	insights.Metrics.TotalTasks = len(tasks)
	insights.Metrics.CompletedTasks = completed
	if len(tasks) > 0 {
		insights.Metrics.CompletionRate = int(math.Round(float64(completed) / float64(len(tasks)) * 100))
	}
	if completionSamples > 0 {
		insights.Metrics.AvgCompletionDays = int(math.Round(completionDaysSum / float64(completionSamples)))
	}
	insights.Metrics.WorkloadScore = workloadScore(tasks, now)

	sort.Slice(urgent, func(i, j int) bool { return urgent[i].DueDate.Before(urgent[j].DueDate) })
	if len(urgent) > 5 {
		urgent = urgent[:5]
	}
	insights.UrgentTasks = urgent

	if insights.Metrics.OverdueCount > 0 {
		insights.Recommendations = append(insights.Recommendations, Recommendation{
			Type:     "warning",
			Priority: "high",
			Title:    "Overdue Tasks Detected",
			Message:  fmt.Sprintf("You have %d overdue task(s). Consider reviewing priorities.", insights.Metrics.OverdueCount),
		})
	}
	if insights.Metrics.DueSoonCount > 0 {
		insights.Recommendations = append(insights.Recommendations, Recommendation{
			Type:     "info",
			Priority: "medium",
			Title:    "Upcoming Deadlines",
			Message:  fmt.Sprintf("%d task(s) due within 3 days.", insights.Metrics.DueSoonCount),
		})
	}
	if insights.PriorityBreakdown["High"] > 5 {
		insights.Recommendations = append(insights.Recommendations, Recommendation{
			Type:     "suggestion",
			Priority: "medium",
			Title:    "Too Many High Priority Tasks",
			Message:  fmt.Sprintf("You have %d high-priority tasks. Consider re-evaluating priorities.", insights.PriorityBreakdown["High"]),
		})
	}
	if insights.Metrics.CompletionRate < 50 && len(tasks) > 5 {
		insights.Recommendations = append(insights.Recommendations, Recommendation{
			Type:     "tip",
			Priority: "low",
			Title:    "Boost Your Productivity",
			Message:  fmt.Sprintf("Current completion rate is %d%%. Try breaking large tasks into smaller subtasks.", insights.Metrics.CompletionRate),
		})
	}

	return insights, nil
}

// workloadScore maps a task set onto 0-100: incomplete count (up to 40),
// overdue count (up to 30), high-priority count (up to 30).
func workloadScore(tasks []models.Task, now time.Time) int {
	if len(tasks) == 0 {
		return 0
	}

	incomplete := 0
	overdue := 0
	highPriority := 0
	for _, t := range tasks {
		if t.Status == models.StatusCompleted {
			continue
		}
		incomplete++
		if t.DueDate.Before(now) {
			overdue++
		}
		if t.Priority == models.PriorityHigh {
			highPriority++
		}
	}

	score := math.Min(float64(incomplete)/20*40, 40)
	score += math.Min(float64(overdue)/5*30, 30)
	score += math.Min(float64(highPriority)/10*30, 30)
	return int(math.Round(math.Min(score, 100)))
}

func daysUntil(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

type PrioritySuggestion struct {
	TaskID            primitive.ObjectID  `json:"taskId"`
	Title             string              `json:"title"`
	CurrentPriority   models.TaskPriority `json:"currentPriority"`
	SuggestedPriority models.TaskPriority `json:"suggestedPriority"`
	DueDate           time.Time           `json:"dueDate"`
	DaysUntilDue      int                 `json:"daysUntilDue"`
	TodoProgress      int                 `json:"todoProgress"`
	Reason            string              `json:"reason"`
	ShouldAdjust      bool                `json:"shouldAdjust"`
}

// GetSuggestedPriorities runs the deadline heuristic over the actor's
// unfinished tasks: overdue or due within 2 days suggests High, due
// within a week lifts Low to Medium.
func (s *AnalyticsService) GetSuggestedPriorities(actor models.Actor) ([]PrioritySuggestion, error) {
	filter := bson.M{
		"assignedTo": actor.ID,
		"status":     bson.M{"$ne": models.StatusCompleted},
	}

	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}})
	cursor, err := s.tasksCollection.Find(context.Background(), filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(context.Background())

	var tasks []models.Task
	if err := cursor.All(context.Background(), &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}

	now := time.Now().UTC()
	suggestions := make([]PrioritySuggestion, 0, len(tasks))
	for i := range tasks {
		suggestions = append(suggestions, SuggestPriority(&tasks[i], now))
	}
	return suggestions, nil
}

// SuggestPriority applies the heuristic to a single task.
func SuggestPriority(task *models.Task, now time.Time) PrioritySuggestion {
	daysUntilDue := daysUntil(task.DueDate, now)
	suggested := task.Priority
	reason := "Current priority is appropriate"

	switch {
	case daysUntilDue < 0:
		suggested = models.PriorityHigh
		reason = "Task is overdue"
	case daysUntilDue <= 2 && task.Priority != models.PriorityHigh:
		suggested = models.PriorityHigh
		reason = "Due in 2 days or less"
	case daysUntilDue <= 7 && task.Priority == models.PriorityLow:
		suggested = models.PriorityMedium
		reason = "Due within a week"
	}

	task.RecomputeProgress()

	return PrioritySuggestion{
		TaskID:            task.ID,
		Title:             task.Title,
		CurrentPriority:   task.Priority,
		SuggestedPriority: suggested,
		DueDate:           task.DueDate,
		DaysUntilDue:      daysUntilDue,
		TodoProgress:      task.Progress,
		Reason:            reason,
		ShouldAdjust:      suggested != task.Priority,
	}
}

type MemberMetrics struct {
	UserID         primitive.ObjectID `json:"userId"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	TotalTasks     int                `json:"totalTasks"`
	Completed      int                `json:"completed"`
	Pending        int                `json:"pending"`
	InProgress     int                `json:"inProgress"`
	Overdue        int                `json:"overdue"`
	CompletionRate int                `json:"completionRate"`
	WorkloadScore  int                `json:"workloadScore"`
}

type TeamAnalytics struct {
	TeamMetrics []MemberMetrics `json:"teamMetrics"`
	Summary     struct {
		TotalMembers      int `json:"totalMembers"`
		AvgCompletionRate int `json:"avgCompletionRate"`
		TotalOverdue      int `json:"totalOverdue"`
		TotalActiveTasks  int `json:"totalActiveTasks"`
	} `json:"summary"`
}

// GetTeamAnalytics computes per-member workload and completion metrics,
// sorted by heaviest workload first. Admin-only at the route boundary.
func (s *AnalyticsService) GetTeamAnalytics() (*TeamAnalytics, error) {
	cursor, err := s.usersCollection.Find(context.Background(), bson.M{"role": bson.M{"$ne": models.RoleAdmin}})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %v", err)
	}
	defer cursor.Close(context.Background())

	var members []models.User
	if err := cursor.All(context.Background(), &members); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}

	tasks, err := s.loadTasks(bson.M{})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	analytics := &TeamAnalytics{TeamMetrics: []MemberMetrics{}}

	rateSum := 0
	for _, member := range members {
		var memberTasks []models.Task
		for _, t := range tasks {
			if t.IsAssignee(member.ID) {
				memberTasks = append(memberTasks, t)
			}
		}

		metrics := MemberMetrics{
			UserID:     member.ID,
			Name:       member.Name,
			Email:      member.Email,
			TotalTasks: len(memberTasks),
		}
		for _, t := range memberTasks {
			switch t.Status {
			case models.StatusCompleted:
				metrics.Completed++
			case models.StatusPending:
				metrics.Pending++
			case models.StatusInProgress:
				metrics.InProgress++
			}
			if t.Status != models.StatusCompleted && t.DueDate.Before(now) {
				metrics.Overdue++
			}
		}
		if len(memberTasks) > 0 {
			metrics.CompletionRate = int(math.Round(float64(metrics.Completed) / float64(len(memberTasks)) * 100))
		}
		metrics.WorkloadScore = workloadScore(memberTasks, now)

		rateSum += metrics.CompletionRate
		analytics.Summary.TotalOverdue += metrics.Overdue
		analytics.TeamMetrics = append(analytics.TeamMetrics, metrics)
	}

	sort.Slice(analytics.TeamMetrics, func(i, j int) bool {
		return analytics.TeamMetrics[i].WorkloadScore > analytics.TeamMetrics[j].WorkloadScore
	})

	analytics.Summary.TotalMembers = len(members)
	if len(analytics.TeamMetrics) > 0 {
		analytics.Summary.AvgCompletionRate = int(math.Round(float64(rateSum) / float64(len(analytics.TeamMetrics))))
	}
	for _, t := range tasks {
		if t.Status != models.StatusCompleted {
			analytics.Summary.TotalActiveTasks++
		}
	}

	return analytics, nil
}

func (s *AnalyticsService) loadTasks(filter bson.M) ([]models.Task, error) {
	cursor, err := s.tasksCollection.Find(context.Background(), filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(context.Background())

	var tasks []models.Task
	if err := cursor.All(context.Background(), &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}
