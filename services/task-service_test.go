package services

import (
	"testing"

	"task-manager/backend/logging"
	"task-manager/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func init() {
	logging.InitLogger()
}

func taskDoc(taskID primitive.ObjectID, status models.TaskStatus, assignees ...primitive.ObjectID) bson.D {
	assignedTo := bson.A{}
	for _, id := range assignees {
		assignedTo = append(assignedTo, id)
	}
	return bson.D{
		{Key: "_id", Value: taskID},
		{Key: "title", Value: "Prepare release notes"},
		{Key: "description", Value: ""},
		{Key: "priority", Value: "Medium"},
		{Key: "status", Value: string(status)},
		{Key: "progress", Value: 0},
		{Key: "todoChecklist", Value: bson.A{
			bson.D{{Key: "text", Value: "draft"}, {Key: "completed", Value: false}},
			bson.D{{Key: "text", Value: "review"}, {Key: "completed", Value: false}},
		}},
		{Key: "attachments", Value: bson.A{}},
		{Key: "assignedTo", Value: assignedTo},
	}
}

func TestCreateTaskValidation(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("rejects empty assignedTo", func(mt *mtest.T) {
		svc := NewTaskService(mt.Coll, mt.Coll)
		actor := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

		_, err := svc.CreateTask(actor, CreateTaskInput{Title: "x"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	mt.Run("rejects unknown priority", func(mt *mtest.T) {
		svc := NewTaskService(mt.Coll, mt.Coll)
		actor := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

		_, err := svc.CreateTask(actor, CreateTaskInput{
			AssignedTo: []primitive.ObjectID{primitive.NewObjectID()},
			Priority:   "Urgent",
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	mt.Run("defaults to medium priority and pending status", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		svc := NewTaskService(mt.Coll, mt.Coll)
		actor := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleMember}

		task, err := svc.CreateTask(actor, CreateTaskInput{
			Title:      "New task",
			AssignedTo: []primitive.ObjectID{primitive.NewObjectID()},
		})
		require.NoError(t, err)
		assert.Equal(t, models.PriorityMedium, task.Priority)
		assert.Equal(t, models.StatusPending, task.Status)
		assert.Equal(t, 0, task.Progress)
		assert.Equal(t, actor.ID, task.CreatedBy)
		assert.NotNil(t, task.TodoChecklist)
		assert.NotNil(t, task.Attachments)
	})
}

func TestGetTaskByIDNotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing task maps to not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch))
		svc := NewTaskService(mt.Coll, mt.Coll)

		_, err := svc.GetTaskByID(primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestChangeTaskStatusAuthorization(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("non-assignee member is rejected", func(mt *mtest.T) {
		taskID := primitive.NewObjectID()
		assignee := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "taskdb.tasks", mtest.FirstBatch,
			taskDoc(taskID, models.StatusPending, assignee)))
		svc := NewTaskService(mt.Coll, mt.Coll)

		actor := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleMember}
		err := svc.ChangeTaskStatus(actor, taskID, models.StatusInProgress)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	mt.Run("assignee may change status", func(mt *mtest.T) {
		taskID := primitive.NewObjectID()
		assignee := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch,
				taskDoc(taskID, models.StatusPending, assignee)),
			mtest.CreateSuccessResponse(),
		)
		svc := NewTaskService(mt.Coll, mt.Coll)

		actor := models.Actor{ID: assignee, Role: models.RoleMember}
		err := svc.ChangeTaskStatus(actor, taskID, models.StatusInProgress)
		assert.NoError(t, err)
	})

	mt.Run("rejects unknown status", func(mt *mtest.T) {
		taskID := primitive.NewObjectID()
		assignee := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "taskdb.tasks", mtest.FirstBatch,
			taskDoc(taskID, models.StatusPending, assignee)))
		svc := NewTaskService(mt.Coll, mt.Coll)

		actor := models.Actor{ID: assignee, Role: models.RoleMember}
		err := svc.ChangeTaskStatus(actor, taskID, "Done")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUpdateChecklistDerivesStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("half-completed checklist moves task in progress", func(mt *mtest.T) {
		taskID := primitive.NewObjectID()
		assignee := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch,
				taskDoc(taskID, models.StatusPending, assignee)),
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, "taskdb.users", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: assignee},
				{Key: "name", Value: "Mika"},
				{Key: "email", Value: "mika@example.com"},
			}),
		)
		svc := NewTaskService(mt.Coll, mt.Coll)

		actor := models.Actor{ID: assignee, Role: models.RoleMember}
		details, err := svc.UpdateChecklist(actor, taskID, []models.ChecklistItem{
			{Text: "draft", Completed: true},
			{Text: "review", Completed: false},
		})
		require.NoError(t, err)
		assert.Equal(t, 50, details.Progress)
		assert.Equal(t, models.StatusInProgress, details.Status)
		assert.Equal(t, 1, details.CompletedTodoCount)
	})

	mt.Run("clearing the checklist resets progress", func(mt *mtest.T) {
		taskID := primitive.NewObjectID()
		assignee := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch,
				taskDoc(taskID, models.StatusInProgress, assignee)),
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, "taskdb.users", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: assignee},
				{Key: "name", Value: "Mika"},
				{Key: "email", Value: "mika@example.com"},
			}),
		)
		svc := NewTaskService(mt.Coll, mt.Coll)

		actor := models.Actor{ID: assignee, Role: models.RoleMember}
		details, err := svc.UpdateChecklist(actor, taskID, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, details.Progress)
		assert.Equal(t, models.StatusPending, details.Status)
	})
}

func TestListTasksScopedToMember(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("member queries carry the assignment scope", func(mt *mtest.T) {
		taskID := primitive.NewObjectID()
		actorID := primitive.NewObjectID()
		creatorID := primitive.NewObjectID()

		doc := append(taskDoc(taskID, models.StatusPending, actorID),
			bson.E{Key: "createdBy", Value: creatorID})
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch, doc),
			mtest.CreateCursorResponse(0, "taskdb.users", mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: actorID},
					{Key: "name", Value: "Mika"},
					{Key: "email", Value: "mika@example.com"},
				},
				bson.D{
					{Key: "_id", Value: creatorID},
					{Key: "name", Value: "Ana"},
					{Key: "email", Value: "ana@example.com"},
				},
			),
			mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
			mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
			mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch, bson.D{{Key: "n", Value: 0}}),
			mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch, bson.D{{Key: "n", Value: 0}}),
		)
		svc := NewTaskService(mt.Coll, mt.Coll)

		actor := models.Actor{ID: actorID, Role: models.RoleMember}
		details, summary, err := svc.ListTasks(actor, "")
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.Equal(t, int64(1), summary.All)

		require.NotNil(t, details[0].CreatedBy)
		assert.Equal(t, "Ana", details[0].CreatedBy.Name)
		require.Len(t, details[0].AssignedTo, 1)
		assert.Equal(t, "Mika", details[0].AssignedTo[0].Name)

		// Both the list query and every summary count must be restricted
		// to the actor's assignments.
		scopedFinds := 0
		scopedCounts := 0
		for _, evt := range mt.GetAllStartedEvents() {
			switch evt.CommandName {
			case "find":
				if oid, ok := evt.Command.Lookup("filter", "assignedTo").ObjectIDOK(); ok {
					assert.Equal(t, actorID, oid)
					scopedFinds++
				}
			case "aggregate":
				oid, ok := evt.Command.Lookup("pipeline", "0", "$match", "assignedTo").ObjectIDOK()
				require.True(t, ok)
				assert.Equal(t, actorID, oid)
				scopedCounts++
			}
		}
		assert.Equal(t, 1, scopedFinds)
		assert.Equal(t, 4, scopedCounts)
	})
}

func TestDeleteTaskNotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("zero deletions map to not found", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "acknowledged", Value: true}, {Key: "n", Value: 0}})
		svc := NewTaskService(mt.Coll, mt.Coll)

		err := svc.DeleteTask(primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}
