package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"task-manager/backend/logging"
	"task-manager/backend/middleware"
	"task-manager/backend/models"
	"task-manager/backend/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func init() {
	logging.InitLogger()
}

func TestUpdateTaskChecklistResponseShape(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns the updated task without an envelope", func(mt *mtest.T) {
		taskID := primitive.NewObjectID()
		assignee := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "taskdb.tasks", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: taskID},
				{Key: "title", Value: "Prepare release notes"},
				{Key: "priority", Value: "Medium"},
				{Key: "status", Value: "Pending"},
				{Key: "progress", Value: 0},
				{Key: "todoChecklist", Value: bson.A{
					bson.D{{Key: "text", Value: "draft"}, {Key: "completed", Value: false}},
					bson.D{{Key: "text", Value: "review"}, {Key: "completed", Value: false}},
				}},
				{Key: "attachments", Value: bson.A{}},
				{Key: "assignedTo", Value: bson.A{assignee}},
			}),
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, "taskdb.users", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: assignee},
				{Key: "name", Value: "Mika"},
				{Key: "email", Value: "mika@example.com"},
			}),
		)
		svc := services.NewTaskService(mt.Coll, mt.Coll)
		h := NewTaskHandler(svc, nil, nil)

		body := `{"todoChecklist":[{"text":"draft","completed":true},{"text":"review","completed":false}]}`
		req := httptest.NewRequest(http.MethodPut, "/api/tasks/"+taskID.Hex()+"/todo", strings.NewReader(body))
		req = mux.SetURLVars(req, map[string]string{"id": taskID.Hex()})
		req = middleware.WithActor(req, models.Actor{ID: assignee, Role: models.RoleMember})
		rec := httptest.NewRecorder()

		h.UpdateTaskChecklist(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, taskID.Hex(), resp["_id"])
		assert.Equal(t, float64(50), resp["progress"])
		assert.Equal(t, "In Progress", resp["status"])
		assert.NotContains(t, resp, "task")
		assert.NotContains(t, resp, "message")
	})
}
