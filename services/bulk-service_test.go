package services

import (
	"testing"
	"time"

	"task-manager/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestBulkUpdateStatusValidation(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("rejects empty id set", func(mt *mtest.T) {
		svc := NewBulkService(mt.Coll, nil)
		actor := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

		_, err := svc.BulkUpdateStatus(actor, nil, models.StatusCompleted)
		assert.ErrorIs(t, err, ErrValidation)
	})

	mt.Run("rejects unknown status", func(mt *mtest.T) {
		svc := NewBulkService(mt.Coll, nil)
		actor := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

		_, err := svc.BulkUpdateStatus(actor, []primitive.ObjectID{primitive.NewObjectID()}, "Done")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestBulkUpdateStatusAllOrNothing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("one unauthorized task rejects the whole batch", func(mt *mtest.T) {
		actorID := primitive.NewObjectID()
		mine := primitive.NewObjectID()
		theirs := primitive.NewObjectID()

		first := mtest.CreateCursorResponse(1, "taskdb.tasks", mtest.FirstBatch,
			taskDoc(mine, models.StatusPending, actorID))
		second := mtest.CreateCursorResponse(1, "taskdb.tasks", mtest.NextBatch,
			taskDoc(theirs, models.StatusPending, primitive.NewObjectID()))
		last := mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.NextBatch)
		mt.AddMockResponses(first, second, last)

		svc := NewBulkService(mt.Coll, nil)
		actor := models.Actor{ID: actorID, Role: models.RoleMember}

		_, err := svc.BulkUpdateStatus(actor, []primitive.ObjectID{mine, theirs}, models.StatusCompleted)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	mt.Run("admin updates every task in one call", func(mt *mtest.T) {
		first := primitive.NewObjectID()
		second := primitive.NewObjectID()

		cursor := mtest.CreateCursorResponse(1, "taskdb.tasks", mtest.FirstBatch,
			taskDoc(first, models.StatusPending, primitive.NewObjectID()))
		next := mtest.CreateCursorResponse(1, "taskdb.tasks", mtest.NextBatch,
			taskDoc(second, models.StatusInProgress, primitive.NewObjectID()))
		last := mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.NextBatch)
		update := bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 2}, {Key: "nModified", Value: 2}}
		mt.AddMockResponses(cursor, next, last, update)

		svc := NewBulkService(mt.Coll, nil)
		actor := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

		modified, err := svc.BulkUpdateStatus(actor, []primitive.ObjectID{first, second}, models.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, int64(2), modified)
	})
}

func TestBulkUpdateDueDateValidation(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("rejects zero due date", func(mt *mtest.T) {
		svc := NewBulkService(mt.Coll, nil)

		_, err := svc.BulkUpdateDueDate([]primitive.ObjectID{primitive.NewObjectID()}, time.Time{})
		assert.ErrorIs(t, err, ErrValidation)
	})
}
