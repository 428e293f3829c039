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

func userDoc(userID primitive.ObjectID, role models.UserRole) bson.D {
	return bson.D{
		{Key: "_id", Value: userID},
		{Key: "name", Value: "Mika"},
		{Key: "email", Value: "mika@example.com"},
		{Key: "role", Value: string(role)},
	}
}

func TestRegisterValidation(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("rejects missing fields", func(mt *mtest.T) {
		svc := NewUserService(mt.Coll, mt.Coll)

		_, err := svc.Register(RegisterInput{Name: "Mika"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	mt.Run("rejects weak password", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "taskdb.users", mtest.FirstBatch))
		svc := NewUserService(mt.Coll, mt.Coll)

		_, err := svc.Register(RegisterInput{Name: "Mika", Email: "mika@example.com", Password: "short"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	mt.Run("rejects duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "taskdb.users", mtest.FirstBatch,
			userDoc(primitive.NewObjectID(), models.RoleMember)))
		svc := NewUserService(mt.Coll, mt.Coll)

		_, err := svc.Register(RegisterInput{Name: "Mika", Email: "mika@example.com", Password: "Password1"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestRegisterRoleAssignment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("matching invite token grants admin", func(mt *mtest.T) {
		mt.Setenv("ADMIN_INVITE_TOKEN", "letmein")
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "taskdb.users", mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)
		svc := NewUserService(mt.Coll, mt.Coll)

		user, err := svc.Register(RegisterInput{
			Name:             "Mika",
			Email:            "mika@example.com",
			Password:         "Password1",
			AdminInviteToken: "letmein",
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, user.Role)
	})

	mt.Run("wrong invite token falls back to member", func(mt *mtest.T) {
		mt.Setenv("ADMIN_INVITE_TOKEN", "letmein")
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "taskdb.users", mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)
		svc := NewUserService(mt.Coll, mt.Coll)

		user, err := svc.Register(RegisterInput{
			Name:             "Mika",
			Email:            "mika@example.com",
			Password:         "Password1",
			AdminInviteToken: "wrong",
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleMember, user.Role)
	})
}

func TestDeleteUserBlockedByUnfinishedTasks(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unfinished assignments block deletion", func(mt *mtest.T) {
		userID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "taskdb.users", mtest.FirstBatch, userDoc(userID, models.RoleMember)),
			mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch, bson.D{{Key: "n", Value: 2}}),
		)
		svc := NewUserService(mt.Coll, mt.Coll)

		err := svc.DeleteUser(userID)
		assert.ErrorIs(t, err, ErrValidation)
	})

	mt.Run("missing user maps to not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "taskdb.users", mtest.FirstBatch))
		svc := NewUserService(mt.Coll, mt.Coll)

		err := svc.DeleteUser(primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
