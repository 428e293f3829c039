package models

import "time"

type ActivityType string

const (
	ActivityTaskCreated         ActivityType = "task_created"
	ActivityTaskUpdated         ActivityType = "task_updated"
	ActivityTaskCompleted       ActivityType = "task_completed"
	ActivityTaskAssigned        ActivityType = "task_assigned"
	ActivityTaskStatusChanged   ActivityType = "task_status_changed"
	ActivityTaskPriorityChanged ActivityType = "task_priority_changed"
	ActivityTaskDeleted         ActivityType = "task_deleted"
	ActivityCommentAdded        ActivityType = "comment_added"
	ActivityTodoChecked         ActivityType = "todo_checked"
	ActivityUserJoined          ActivityType = "user_joined"
)

// Activity is one audit-feed record. Stored flat in Cassandra; TargetID
// is empty when the action has no second party.
type Activity struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	ActorID   string       `json:"actor"`
	TaskID    string       `json:"task,omitempty"`
	TargetID  string       `json:"target,omitempty"`
	TaskTitle string       `json:"taskTitle,omitempty"`
	OldValue  string       `json:"oldValue,omitempty"`
	NewValue  string       `json:"newValue,omitempty"`
	IsRead    bool         `json:"isRead"`
	CreatedAt time.Time    `json:"createdAt"`
}
