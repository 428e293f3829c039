package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func checklist(completed ...bool) []ChecklistItem {
	items := make([]ChecklistItem, 0, len(completed))
	for _, c := range completed {
		items = append(items, ChecklistItem{Text: "item", Completed: c})
	}
	return items
}

func TestRecomputeProgress(t *testing.T) {
	tests := []struct {
		name     string
		items    []ChecklistItem
		expected int
	}{
		{"empty checklist", nil, 0},
		{"none completed", checklist(false, false), 0},
		{"half completed", checklist(true, false), 50},
		{"one of three", checklist(true, false, false), 33},
		{"two of three", checklist(true, true, false), 67},
		{"all completed", checklist(true, true), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{TodoChecklist: tt.items, Progress: 42}
			task.RecomputeProgress()
			assert.Equal(t, tt.expected, task.Progress)
		})
	}
}

func TestStatusForProgress(t *testing.T) {
	assert.Equal(t, StatusPending, StatusForProgress(0))
	assert.Equal(t, StatusInProgress, StatusForProgress(1))
	assert.Equal(t, StatusInProgress, StatusForProgress(50))
	assert.Equal(t, StatusInProgress, StatusForProgress(99))
	assert.Equal(t, StatusCompleted, StatusForProgress(100))
}

func TestForceComplete(t *testing.T) {
	task := Task{
		Status:        StatusInProgress,
		Progress:      50,
		TodoChecklist: checklist(true, false, false),
	}

	task.ForceComplete()

	assert.Equal(t, StatusCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)
	for _, item := range task.TodoChecklist {
		assert.True(t, item.Completed)
	}
}

func TestForceCompleteEmptyChecklist(t *testing.T) {
	task := Task{Status: StatusPending, Progress: 0}

	task.ForceComplete()

	assert.Equal(t, StatusCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)
	assert.Empty(t, task.TodoChecklist)
}

func TestCompletedTodoCount(t *testing.T) {
	task := Task{TodoChecklist: checklist(true, false, true)}
	assert.Equal(t, 2, task.CompletedTodoCount())

	task = Task{}
	assert.Equal(t, 0, task.CompletedTodoCount())
}

func TestCanBeModifiedBy(t *testing.T) {
	assignee := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	task := Task{AssignedTo: []primitive.ObjectID{assignee}}

	assert.True(t, task.CanBeModifiedBy(Actor{ID: assignee, Role: RoleMember}))
	assert.False(t, task.CanBeModifiedBy(Actor{ID: stranger, Role: RoleMember}))
	assert.True(t, task.CanBeModifiedBy(Actor{ID: stranger, Role: RoleAdmin}))
}

func TestIsAssignee(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	task := Task{AssignedTo: []primitive.ObjectID{first, second}}

	assert.True(t, task.IsAssignee(second))
	assert.False(t, task.IsAssignee(primitive.NewObjectID()))
}

func TestStatusAndPriorityValidation(t *testing.T) {
	assert.True(t, StatusInProgress.Valid())
	assert.False(t, TaskStatus("Done").Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, TaskPriority("Urgent").Valid())
}
