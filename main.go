package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"task-manager/backend/handlers"
	"task-manager/backend/logging"
	"task-manager/backend/repositories"
	"task-manager/backend/services"

	ghandlers "github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
}

func createTaskIndexes(collection *mongo.Collection) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "assignedTo", Value: 1}}},
		{Keys: bson.D{{Key: "dueDate", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logging.Logger.Warnf("Event ID: DB_INDEX_FAILED, Description: Failed to create task indexes: %v", err)
	}
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Task Manager backend...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_ERROR, Description: Error loading .env file: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "task_manager"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	tasksCollection := db.Collection("tasks")
	usersCollection := db.Collection("users")
	commentsCollection := db.Collection("comments")
	messagesCollection := db.Collection("messages")
	createTaskIndexes(tasksCollection)

	activityRepo, err := repositories.NewActivityRepo()
	if err != nil {
		logging.Logger.Fatalf("Event ID: CASS_INIT_FAILED, Description: Failed to initialize Cassandra: %v", err)
	}
	defer activityRepo.CloseSession()
	activityRepo.CreateTables()

	activityBreaker := newBreaker("activity-cb")
	emailBreaker := newBreaker("email-cb")

	activityService := services.NewActivityService(activityRepo, activityBreaker)
	notifier := services.NewEmailNotifier(emailBreaker)

	taskService := services.NewTaskService(tasksCollection, usersCollection)
	bulkService := services.NewBulkService(tasksCollection, activityService)
	userService := services.NewUserService(usersCollection, tasksCollection)
	commentService := services.NewCommentService(commentsCollection, tasksCollection, usersCollection, activityService)
	messageService := services.NewMessageService(messagesCollection, usersCollection)
	analyticsService := services.NewAnalyticsService(tasksCollection, usersCollection)
	reportService := services.NewReportService(tasksCollection, usersCollection, userService)

	searchService := services.NewSearchService(tasksCollection, usersCollection, taskService)

	r := newRouter(routerHandlers{
		auth:      handlers.NewAuthHandler(userService, notifier),
		user:      handlers.NewUserHandler(userService),
		task:      handlers.NewTaskHandler(taskService, userService, notifier),
		bulk:      handlers.NewBulkOperationsHandler(bulkService),
		comment:   handlers.NewCommentHandler(commentService),
		message:   handlers.NewMessageHandler(messageService),
		activity:  handlers.NewActivityHandler(activityService),
		analytics: handlers.NewAnalyticsHandler(analyticsService),
		report:    handlers.NewReportHandler(reportService),
		search:    handlers.NewSearchHandler(searchService),
	})

	corsHandler := ghandlers.CORS(
		ghandlers.AllowedOrigins([]string{"*"}),
		ghandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		ghandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", serverPort),
		Handler:      ghandlers.LoggingHandler(os.Stdout, corsHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost:%s", serverPort)
	if err := srv.ListenAndServe(); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
