package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/cms-be/internal/models"
	"github.com/isdelr/cms-be/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, username, email, password string) (models.User, error)
	AuthenticateUser(ctx context.Context, username, password string) (models.User, error)
	AddAvatar(ctx context.Context, userID, avatarURL string) (models.Avatar, error)
	SetActiveAvatar(ctx context.Context, userID, avatarID string) error
}

// UserService provides business logic for user management.
type UserService struct {
	store store.Store
	now   func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(st store.Store) *UserService {
	return &UserService{store: st, now: time.Now}
}

// GetUserByID retrieves a single user by their ID, without the password hash.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	return user.Public(), nil
}

func (s *UserService) getUser(ctx context.Context, id string) (models.User, error) {
	item, err := s.store.Get(ctx, models.UsersTable, id)
	if err != nil {
		return models.User{}, fmt.Errorf("user with ID %s: %w", id, err)
	}
	return decodeOne[models.User](item)
}

// getUserByUsername looks a user up through the username index, including the password hash.
func (s *UserService) getUserByUsername(ctx context.Context, username string) (models.User, bool, error) {
	items, err := s.store.Query(ctx, models.UsersTable, "username", username)
	if err != nil {
		return models.User{}, false, err
	}
	if len(items) == 0 {
		return models.User{}, false, nil
	}
	user, err := decodeOne[models.User](items[0])
	return user, err == nil, err
}

// CreateUser creates a new user, hashing their password.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return models.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	if _, found, err := s.getUserByUsername(ctx, username); err != nil {
		return models.User{}, err
	} else if found {
		return models.User{}, fmt.Errorf("%w: username %s is taken", ErrConflict, username)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Avatars:      []models.Avatar{},
		CreatedAt:    s.now().UnixMilli(),
	}
	item, err := store.ToItem(user)
	if err != nil {
		return models.User{}, err
	}
	if err := s.store.Put(ctx, models.UsersTable, item); err != nil {
		return models.User{}, err
	}

	// Return user without password hash
	return user.Public(), nil
}

// AuthenticateUser verifies a user's credentials.
func (s *UserService) AuthenticateUser(ctx context.Context, username, password string) (models.User, error) {
	user, found, err := s.getUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, fmt.Errorf("%w: user not found", ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("%w: invalid password", ErrUnauthorized)
	}

	// Don't send the password hash to the client
	return user.Public(), nil
}

// AddAvatar appends a new avatar to the user's collection.
func (s *UserService) AddAvatar(ctx context.Context, userID, avatarURL string) (models.Avatar, error) {
	avatarURL = strings.TrimSpace(avatarURL)
	if u, err := url.Parse(avatarURL); err != nil || avatarURL == "" || u.Scheme == "" {
		return models.Avatar{}, fmt.Errorf("%w: a valid avatar url is required", ErrInvalidInput)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return models.Avatar{}, err
	}

	now := s.now()
	avatar := models.Avatar{ID: uuid.New().String(), URL: avatarURL, UploadedAt: now.UnixMilli()}
	avatars := append(user.Avatars, avatar)

	_, err = s.store.Update(ctx, models.UsersTable, userID, store.Item{
		"avatars":   avatars,
		"updatedAt": now.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return models.Avatar{}, err
	}
	return avatar, nil
}

// SetActiveAvatar marks one of the user's existing avatars as active.
func (s *UserService) SetActiveAvatar(ctx context.Context, userID, avatarID string) error {
	if avatarID == "" {
		return fmt.Errorf("%w: missing avatarId", ErrInvalidInput)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasAvatar(avatarID) {
		return fmt.Errorf("avatar %s: %w", avatarID, ErrNotFound)
	}

	_, err = s.store.Update(ctx, models.UsersTable, userID, store.Item{
		"activeAvatarId": avatarID,
		"updatedAt":      s.now().UTC().Format(time.RFC3339Nano),
	})
	return err
}
