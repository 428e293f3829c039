package services

import (
	"testing"

	"task-manager/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestSearchTasksValidation(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("rejects malformed assignedTo filter", func(mt *mtest.T) {
		tasks := NewTaskService(mt.Coll, mt.Coll)
		svc := NewSearchService(mt.Coll, mt.Coll, tasks)
		actor := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

		_, _, err := svc.SearchTasks(actor, SearchTasksInput{AssignedTo: "not-an-id"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	mt.Run("rejects malformed date range bounds", func(mt *mtest.T) {
		tasks := NewTaskService(mt.Coll, mt.Coll)
		svc := NewSearchService(mt.Coll, mt.Coll, tasks)
		actor := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

		_, _, err := svc.SearchTasks(actor, SearchTasksInput{DueDateFrom: "yesterday"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestSearchTasksScopeAndPagination(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("member search is scoped and paginated", func(mt *mtest.T) {
		taskID := primitive.NewObjectID()
		actorID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch, bson.D{{Key: "n", Value: 25}}),
			mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch,
				taskDoc(taskID, models.StatusPending, actorID)),
			mtest.CreateCursorResponse(0, "taskdb.users", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: actorID},
				{Key: "name", Value: "Mika"},
				{Key: "email", Value: "mika@example.com"},
			}),
		)
		tasks := NewTaskService(mt.Coll, mt.Coll)
		svc := NewSearchService(mt.Coll, mt.Coll, tasks)
		actor := models.Actor{ID: actorID, Role: models.RoleMember}

		details, pagination, err := svc.SearchTasks(actor, SearchTasksInput{Page: 2, Limit: 10})
		require.NoError(t, err)
		require.Len(t, details, 1)
		require.Len(t, details[0].AssignedTo, 1)
		assert.Equal(t, "Mika", details[0].AssignedTo[0].Name)

		assert.Equal(t, int64(2), pagination.CurrentPage)
		assert.Equal(t, int64(3), pagination.TotalPages)
		assert.Equal(t, int64(25), pagination.TotalTasks)
		assert.True(t, pagination.HasNextPage)
		assert.True(t, pagination.HasPrevPage)

		// The count and the list query both carry the member scope.
		for _, evt := range mt.GetAllStartedEvents() {
			switch evt.CommandName {
			case "aggregate":
				oid, ok := evt.Command.Lookup("pipeline", "0", "$match", "assignedTo").ObjectIDOK()
				require.True(t, ok)
				assert.Equal(t, actorID, oid)
			case "find":
				if oid, ok := evt.Command.Lookup("filter", "assignedTo").ObjectIDOK(); ok {
					assert.Equal(t, actorID, oid)
				}
			}
		}
	})
}

func TestGetQuickFiltersShape(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns the six counters in order", func(mt *mtest.T) {
		counts := []int{12, 2, 5, 1, 3, 0}
		for _, n := range counts {
			mt.AddMockResponses(
				mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch, bson.D{{Key: "n", Value: n}}))
		}
		tasks := NewTaskService(mt.Coll, mt.Coll)
		svc := NewSearchService(mt.Coll, mt.Coll, tasks)
		actor := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

		filters, err := svc.GetQuickFilters(actor)
		require.NoError(t, err)
		require.Len(t, filters, 6)

		assert.Equal(t, "all", filters[0].ID)
		assert.Equal(t, int64(12), filters[0].Count)
		assert.Equal(t, "today", filters[1].ID)
		assert.Equal(t, "week", filters[2].ID)
		assert.Equal(t, "overdue", filters[3].ID)
		assert.Equal(t, "high-priority", filters[4].ID)
		assert.Equal(t, "completed-today", filters[5].ID)
		assert.Equal(t, "Completed Today", filters[5].Label)
	})
}
