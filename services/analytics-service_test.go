package services

import (
	"testing"
	"time"

	"task-manager/backend/models"

	"github.com/stretchr/testify/assert"
)

func TestWorkloadScore(t *testing.T) {
	now := time.Now().UTC()

	assert.Equal(t, 0, workloadScore(nil, now))

	// One incomplete, not overdue, not high priority.
	light := []models.Task{
		{Status: models.StatusPending, Priority: models.PriorityLow, DueDate: now.Add(48 * time.Hour)},
	}
	assert.Equal(t, 2, workloadScore(light, now))

	// Completed tasks contribute nothing.
	done := []models.Task{
		{Status: models.StatusCompleted, Priority: models.PriorityHigh, DueDate: now.Add(-time.Hour)},
	}
	assert.Equal(t, 0, workloadScore(done, now))

	// Saturation: every component capped.
	var heavy []models.Task
	for i := 0; i < 25; i++ {
		heavy = append(heavy, models.Task{
			Status:   models.StatusInProgress,
			Priority: models.PriorityHigh,
			DueDate:  now.Add(-24 * time.Hour),
		})
	}
	assert.Equal(t, 100, workloadScore(heavy, now))
}

func TestSuggestPriority(t *testing.T) {
	now := time.Now().UTC()

	overdue := models.Task{Priority: models.PriorityLow, DueDate: now.Add(-48 * time.Hour)}
	s := SuggestPriority(&overdue, now)
	assert.Equal(t, models.PriorityHigh, s.SuggestedPriority)
	assert.True(t, s.ShouldAdjust)
	assert.Equal(t, "Task is overdue", s.Reason)

	imminent := models.Task{Priority: models.PriorityMedium, DueDate: now.Add(36 * time.Hour)}
	s = SuggestPriority(&imminent, now)
	assert.Equal(t, models.PriorityHigh, s.SuggestedPriority)
	assert.True(t, s.ShouldAdjust)

	thisWeek := models.Task{Priority: models.PriorityLow, DueDate: now.Add(5 * 24 * time.Hour)}
	s = SuggestPriority(&thisWeek, now)
	assert.Equal(t, models.PriorityMedium, s.SuggestedPriority)
	assert.True(t, s.ShouldAdjust)

	farOut := models.Task{Priority: models.PriorityMedium, DueDate: now.Add(30 * 24 * time.Hour)}
	s = SuggestPriority(&farOut, now)
	assert.Equal(t, models.PriorityMedium, s.SuggestedPriority)
	assert.False(t, s.ShouldAdjust)

	alreadyHigh := models.Task{Priority: models.PriorityHigh, DueDate: now.Add(24 * time.Hour)}
	s = SuggestPriority(&alreadyHigh, now)
	assert.Equal(t, models.PriorityHigh, s.SuggestedPriority)
	assert.False(t, s.ShouldAdjust)
}

func TestSuggestPriorityReportsChecklistProgress(t *testing.T) {
	now := time.Now().UTC()
	task := models.Task{
		Priority: models.PriorityMedium,
		DueDate:  now.Add(10 * 24 * time.Hour),
		TodoChecklist: []models.ChecklistItem{
			{Text: "a", Completed: true},
			{Text: "b", Completed: false},
		},
	}

	s := SuggestPriority(&task, now)
	assert.Equal(t, 50, s.TodoProgress)
}
