package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"task-manager/backend/models"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReportService renders xlsx exports of tasks and users.
type ReportService struct {
	tasksCollection *mongo.Collection
	usersCollection *mongo.Collection
	users           *UserService
}

func NewReportService(tasksCollection, usersCollection *mongo.Collection, users *UserService) *ReportService {
	return &ReportService{
		tasksCollection: tasksCollection,
		usersCollection: usersCollection,
		users:           users,
	}
}

// ExportTasksReport writes every task into a spreadsheet, one row per
// task with resolved assignee names.
func (s *ReportService) ExportTasksReport() (*bytes.Buffer, error) {
	cursor, err := s.tasksCollection.Find(context.Background(), bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(context.Background())

	var tasks []models.Task
	if err := cursor.All(context.Background(), &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}

	names, err := s.loadUserNames()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Tasks Report"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Task ID", "Title", "Description", "Priority", "Status", "Due Date", "Assigned To"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, task := range tasks {
		assigned := make([]string, 0, len(task.AssignedTo))
		for _, id := range task.AssignedTo {
			if name, ok := names[id]; ok {
				assigned = append(assigned, name)
			}
		}
		assignedTo := strings.Join(assigned, ", ")
		if assignedTo == "" {
			assignedTo = "Unassigned"
		}

		values := []interface{}{
			task.ID.Hex(),
			task.Title,
			task.Description,
			string(task.Priority),
			string(task.Status),
			task.DueDate.Format(time.DateOnly),
			assignedTo,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %v", err)
	}
	return buf, nil
}

// ExportUsersReport writes every user with their per-status assigned
// task counts.
func (s *ReportService) ExportUsersReport() (*bytes.Buffer, error) {
	users, err := s.users.GetUsers()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "User Task Report"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"User Name", "Email", "Total Assigned Tasks", "Pending Tasks", "In Progress Tasks", "Completed Tasks"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, u := range users {
		total := u.PendingTasks + u.InProgressTasks + u.CompletedTasks
		values := []interface{}{
			u.Name,
			u.Email,
			total,
			u.PendingTasks,
			u.InProgressTasks,
			u.CompletedTasks,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %v", err)
	}
	return buf, nil
}

func (s *ReportService) loadUserNames() (map[primitive.ObjectID]string, error) {
	cursor, err := s.usersCollection.Find(context.Background(), bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %v", err)
	}
	defer cursor.Close(context.Background())

	var users []models.User
	if err := cursor.All(context.Background(), &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}

	names := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}
