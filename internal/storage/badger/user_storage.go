package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// UserStorage implements the UserStorage interface for Badger
type UserStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewUserStorage creates a new UserStorage instance
func NewUserStorage(db *BadgerDB, logger arbor.ILogger) interfaces.UserStorage {
	return &UserStorage{
		db:     db,
		logger: logger,
	}
}

// Save inserts or replaces a user
func (s *UserStorage) Save(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	if user.ID == "" {
		user.ID = common.NewUserID()
	}
	if err := s.db.Store().Upsert(user.ID, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID
func (s *UserStorage) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.Store().Get(id, &user)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, interfaces.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// List returns all users ordered by name
func (s *UserStorage) List(ctx context.Context) ([]*models.User, error) {
	var users []models.User
	if err := s.db.Store().Find(&users, badgerhold.Where("ID").Ne("").SortBy("Name")); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return toUserPtrs(users), nil
}

// FindAllByRole returns users holding role
func (s *UserStorage) FindAllByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	var users []models.User
	if err := s.db.Store().Find(&users, badgerhold.Where("Role").Eq(role)); err != nil {
		return nil, fmt.Errorf("failed to find users with role %s: %w", role, err)
	}
	return toUserPtrs(users), nil
}

func toUserPtrs(users []models.User) []*models.User {
	out := make([]*models.User, len(users))
	for i := range users {
		out[i] = &users[i]
	}
	return out
}
