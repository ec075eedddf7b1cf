package gorm

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/dbhub/pkg/identity"
	"github.com/doodlesbykumbi/dbhub/pkg/model"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

const userColumns = `id, email, name, password_hash, role, created_at`

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db   *gorm.DB
	cost int
}

// NewUsersStore creates a new UsersStore hashing passwords with the given bcrypt cost
func NewUsersStore(db *gorm.DB, cost int) *UsersStore {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UsersStore{db: db, cost: cost}
}

// CreateUser registers a new account.
func (s *UsersStore) CreateUser(ctx context.Context, u store.NewUser) (*model.User, error) {
	role := u.Role
	if role == "" {
		role = identity.RoleUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user model.User
	tx := s.db.WithContext(ctx).Raw(
		`INSERT INTO users (email, name, password_hash, role) VALUES (?, ?, ?, ?) RETURNING `+userColumns,
		u.Email, u.Name, string(hash), string(role),
	).Scan(&user)
	if tx.Error != nil {
		return nil, classify("create user", tx.Error)
	}
	return &user, nil
}

// Authenticate checks an email/password pair.
func (s *UsersStore) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.GetUser(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, store.ErrInvalidCredentials
	}
	return user, nil
}

// GetUser returns the account with the given email.
func (s *UsersStore) GetUser(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	tx := s.db.WithContext(ctx).Raw(`SELECT `+userColumns+` FROM users WHERE email = ?`, email).Scan(&user)
	if tx.Error != nil {
		return nil, classify("get user", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

// ListUsers returns all accounts.
func (s *UsersStore) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	tx := s.db.WithContext(ctx).Raw(`SELECT ` + userColumns + ` FROM users ORDER BY email`).Scan(&users)
	if tx.Error != nil {
		return nil, classify("list users", tx.Error)
	}
	return users, nil
}

// UpdateUser applies a profile update.
func (s *UsersStore) UpdateUser(ctx context.Context, email string, u store.UserUpdate) (*model.User, error) {
	updates := map[string]interface{}{}
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*u.Password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password_hash"] = string(hash)
	}
	if len(updates) == 0 {
		return s.GetUser(ctx, email)
	}

	tx := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Updates(updates)
	if tx.Error != nil {
		return nil, classify("update user", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetUser(ctx, email)
}

// DeleteUser removes an account.
func (s *UsersStore) DeleteUser(ctx context.Context, email string) error {
	tx := s.db.WithContext(ctx).Exec(`DELETE FROM users WHERE email = ?`, email)
	if tx.Error != nil {
		return classify("delete user", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
