package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ChecklistItem is a sub-unit of a task; the completed flags drive the
// derived progress percentage.
type ChecklistItem struct {
	Text      string `bson:"text" json:"text"`
	Completed bool   `bson:"completed" json:"completed"`
}

type Task struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title         string               `bson:"title" json:"title"`
	Description   string               `bson:"description" json:"description"`
	Priority      TaskPriority         `bson:"priority" json:"priority"`
	DueDate       time.Time            `bson:"dueDate" json:"dueDate"`
	Status        TaskStatus           `bson:"status" json:"status"`
	Progress      int                  `bson:"progress" json:"progress"`
	TodoChecklist []ChecklistItem      `bson:"todoChecklist" json:"todoChecklist"`
	Attachments   []string             `bson:"attachments" json:"attachments"`
	AssignedTo    []primitive.ObjectID `bson:"assignedTo" json:"assignedTo"`
	CreatedBy     primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// CompletedTodoCount returns how many checklist items are done.
func (t *Task) CompletedTodoCount() int {
	count := 0
	for _, item := range t.TodoChecklist {
		if item.Completed {
			count++
		}
	}
	return count
}

// RecomputeProgress derives progress from the checklist completion ratio.
// An empty checklist means 0.
func (t *Task) RecomputeProgress() {
	total := len(t.TodoChecklist)
	if total == 0 {
		t.Progress = 0
		return
	}
	t.Progress = int(math.Round(float64(t.CompletedTodoCount()) / float64(total) * 100))
}

// StatusForProgress maps the derived progress onto the task status:
// 0 is Pending, 100 is Completed, anything between is In Progress.
func StatusForProgress(progress int) TaskStatus {
	switch {
	case progress == 100:
		return StatusCompleted
	case progress > 0:
		return StatusInProgress
	default:
		return StatusPending
	}
}

// ForceComplete marks every checklist item done and pins progress to 100.
// Applies even with an empty checklist.
func (t *Task) ForceComplete() {
	for i := range t.TodoChecklist {
		t.TodoChecklist[i].Completed = true
	}
	t.Progress = 100
	t.Status = StatusCompleted
}

// IsAssignee reports whether the user appears in assignedTo.
func (t *Task) IsAssignee(userID primitive.ObjectID) bool {
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// CanBeModifiedBy is the single capability check used by the status,
// checklist and bulk mutation paths: admins always, otherwise assignees.
func (t *Task) CanBeModifiedBy(actor Actor) bool {
	return actor.Role == RoleAdmin || t.IsAssignee(actor.ID)
}

// AssigneeInfo is the resolved display form of an assignedTo reference.
type AssigneeInfo struct {
	ID              primitive.ObjectID `bson:"_id" json:"_id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	ProfileImageUrl string             `bson:"profileImageUrl" json:"profileImageUrl"`
}

// TaskDetails is a task with assignee and creator references resolved
// to display attributes, plus the derived checklist completion count.
type TaskDetails struct {
	Task               `bson:",inline"`
	AssignedTo         []AssigneeInfo `json:"assignedTo"`
	CreatedBy          *AssigneeInfo  `json:"createdBy,omitempty"`
	CompletedTodoCount int            `json:"completedTodoCount"`
}

// StatusSummary carries per-status counts over the role-scoped base
// filter, independent of any status narrowing on the list itself.
type StatusSummary struct {
	All             int64 `json:"all"`
	PendingTasks    int64 `json:"pendingTasks"`
	InProgressTasks int64 `json:"inProgressTasks"`
	CompletedTasks  int64 `json:"completedTasks"`
}
