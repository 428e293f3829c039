package services

import (
	"context"
	"fmt"
	"html"
	"os"
	"time"

	"task-manager/backend/models"
	"task-manager/backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// UserService owns the user directory and credential handling.
type UserService struct {
	usersCollection *mongo.Collection
	tasksCollection *mongo.Collection
}

func NewUserService(usersCollection, tasksCollection *mongo.Collection) *UserService {
	return &UserService{
		usersCollection: usersCollection,
		tasksCollection: tasksCollection,
	}
}

type RegisterInput struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	ProfileImageUrl  string `json:"profileImageUrl"`
	AdminInviteToken string `json:"adminInviteToken"`
}

// Register creates a new account. The role is admin only when the invite
// token matches ADMIN_INVITE_TOKEN, otherwise member.
func (s *UserService) Register(input RegisterInput) (*models.User, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}

	var existing models.User
	if err := s.usersCollection.FindOne(context.Background(), bson.M{"email": input.Email}).Decode(&existing); err == nil {
		return nil, fmt.Errorf("%w: user already exists", ErrValidation)
	}

	if err := utils.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	role := models.RoleMember
	inviteToken := os.Getenv("ADMIN_INVITE_TOKEN")
	if input.AdminInviteToken != "" && inviteToken != "" && input.AdminInviteToken == inviteToken {
		role = models.RoleAdmin
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:              primitive.NewObjectID(),
		Name:            html.EscapeString(input.Name),
		Email:           html.EscapeString(input.Email),
		Password:        string(hashed),
		ProfileImageUrl: input.ProfileImageUrl,
		Role:            role,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := s.usersCollection.InsertOne(context.Background(), user); err != nil {
		return nil, fmt.Errorf("failed to save user: %v", err)
	}

	return user, nil
}

// Authenticate checks the credentials and stamps lastLogin on success.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	err := s.usersCollection.FindOne(context.Background(), bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("%w: invalid email or password", ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrValidation)
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	_, err = s.usersCollection.UpdateOne(context.Background(), bson.M{"_id": user.ID}, bson.M{"$set": bson.M{"lastLogin": now}})
	if err != nil {
		return nil, fmt.Errorf("failed to update last login: %v", err)
	}

	return &user, nil
}

// GetUserByID returns a single user without the password hash.
func (s *UserService) GetUserByID(userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.usersCollection.FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}
	return &user, nil
}

// GetUsers lists every user with per-status assigned-task counts.
func (s *UserService) GetUsers() ([]models.UserWithTaskCounts, error) {
	cursor, err := s.usersCollection.Find(context.Background(), bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %v", err)
	}
	defer cursor.Close(context.Background())

	var users []models.User
	if err := cursor.All(context.Background(), &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}

	result := make([]models.UserWithTaskCounts, 0, len(users))
	for _, user := range users {
		entry := models.UserWithTaskCounts{User: user}

		counts := []struct {
			status models.TaskStatus
			target *int64
		}{
			{models.StatusPending, &entry.PendingTasks},
			{models.StatusInProgress, &entry.InProgressTasks},
			{models.StatusCompleted, &entry.CompletedTasks},
		}
		for _, c := range counts {
			n, err := s.tasksCollection.CountDocuments(context.Background(), bson.M{
				"assignedTo": user.ID,
				"status":     c.status,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to count tasks: %v", err)
			}
			*c.target = n
		}

		result = append(result, entry)
	}

	return result, nil
}

type UpdateUserInput struct {
	Name            *string          `json:"name"`
	Email           *string          `json:"email"`
	Password        *string          `json:"password"`
	ProfileImageUrl *string          `json:"profileImageUrl"`
	Role            *models.UserRole `json:"role"`
}

// UpdateUser overwrites the fields present in the input. A changed email
// must not collide with another account.
func (s *UserService) UpdateUser(userID primitive.ObjectID, input UpdateUserInput) (*models.User, error) {
	var user models.User
	err := s.usersCollection.FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}

	if input.Email != nil && *input.Email != user.Email {
		var existing models.User
		if err := s.usersCollection.FindOne(context.Background(), bson.M{"email": *input.Email}).Decode(&existing); err == nil {
			return nil, fmt.Errorf("%w: email already in use by another user", ErrValidation)
		}
		user.Email = html.EscapeString(*input.Email)
	}
	if input.Name != nil {
		user.Name = html.EscapeString(*input.Name)
	}
	if input.ProfileImageUrl != nil {
		user.ProfileImageUrl = *input.ProfileImageUrl
	}
	if input.Role != nil {
		if *input.Role != models.RoleAdmin && *input.Role != models.RoleMember {
			return nil, fmt.Errorf("%w: invalid role", ErrValidation)
		}
		user.Role = *input.Role
	}
	if input.Password != nil {
		if err := utils.ValidatePassword(*input.Password); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %v", err)
		}
		user.Password = string(hashed)
	}
	user.UpdatedAt = time.Now().UTC()

	if _, err := s.usersCollection.ReplaceOne(context.Background(), bson.M{"_id": userID}, &user); err != nil {
		return nil, fmt.Errorf("failed to update user: %v", err)
	}

	return &user, nil
}

// CreateUser is the admin path: like Register but with an explicit role
// and no invite token.
func (s *UserService) CreateUser(name, email, password string, role models.UserRole) (*models.User, error) {
	if name == "" || email == "" || password == "" || role == "" {
		return nil, fmt.Errorf("%w: all fields (name, email, role, password) are required", ErrValidation)
	}
	if role != models.RoleAdmin && role != models.RoleMember {
		return nil, fmt.Errorf("%w: invalid role", ErrValidation)
	}

	var existing models.User
	if err := s.usersCollection.FindOne(context.Background(), bson.M{"email": email}).Decode(&existing); err == nil {
		return nil, fmt.Errorf("%w: user with this email already exists", ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      html.EscapeString(name),
		Email:     html.EscapeString(email),
		Password:  string(hashed),
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.usersCollection.InsertOne(context.Background(), user); err != nil {
		return nil, fmt.Errorf("failed to save user: %v", err)
	}

	return user, nil
}

// DeleteUser removes an account. Deletion is blocked while the user still
// has unfinished assigned tasks; on success the user is pulled out of the
// assignedTo arrays of their remaining (completed) tasks. Tasks are never
// cascade-deleted.
func (s *UserService) DeleteUser(userID primitive.ObjectID) error {
	var user models.User
	err := s.usersCollection.FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch user: %v", err)
	}

	unfinished, err := s.tasksCollection.CountDocuments(context.Background(), bson.M{
		"assignedTo": userID,
		"status":     bson.M{"$ne": models.StatusCompleted},
	})
	if err != nil {
		return fmt.Errorf("failed to count tasks: %v", err)
	}
	if unfinished > 0 {
		return fmt.Errorf("%w: cannot delete user with unfinished assigned tasks", ErrValidation)
	}

	if _, err := s.usersCollection.DeleteOne(context.Background(), bson.M{"_id": userID}); err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}

	_, err = s.tasksCollection.UpdateMany(
		context.Background(),
		bson.M{"assignedTo": userID},
		bson.M{"$pull": bson.M{"assignedTo": userID}},
	)
	if err != nil {
		return fmt.Errorf("failed to unassign deleted user: %v", err)
	}

	return nil
}

// SearchUsers filters the directory by a case-insensitive name/email
// match. Passwords are projected out.
func (s *UserService) SearchUsers(query string, limit int64) ([]models.User, error) {
	filter := bson.M{}
	if query != "" {
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": query, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": query, "$options": "i"}},
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	opts := options.Find().SetLimit(limit).SetProjection(bson.M{"password": 0})
	cursor, err := s.usersCollection.Find(context.Background(), filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %v", err)
	}
	defer cursor.Close(context.Background())

	var users []models.User
	if err := cursor.All(context.Background(), &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}
	return users, nil
}
