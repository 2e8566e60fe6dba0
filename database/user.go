package database

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// CreateUser persists a new user.
func (c *Client) CreateUser(ctx context.Context, user *User) error {
	user.Email = strings.ToLower(user.Email)
	if err := c.db.WithContext(ctx).Create(user).Error; err != nil {
		log.Error("failed to create user", "error", err)
		return err
	}
	return nil
}

// GetUserByID returns the user with the given primary key.
func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Error("failed to get user by id", "error", err)
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail returns the user with the given email address.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := c.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Error("failed to get user by email", "error", err)
		return nil, err
	}
	return &user, nil
}

// GetUserByLeetcodeUsername returns the user with the given platform username.
func (c *Client) GetUserByLeetcodeUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := c.db.WithContext(ctx).Where("leetcode_username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Error("failed to get user by leetcode username", "error", err)
		return nil, err
	}
	return &user, nil
}

// UpdateUser persists changes to an existing user.
func (c *Client) UpdateUser(ctx context.Context, user *User) error {
	if err := c.db.WithContext(ctx).Save(user).Error; err != nil {
		log.Error("failed to update user", "error", err)
		return err
	}
	return nil
}

// DeleteUser hard-deletes the user row. Daily stats live in the document
// store and are cascaded by the caller.
func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	if err := c.db.WithContext(ctx).Unscoped().Delete(&User{}, id).Error; err != nil {
		log.Error("failed to delete user", "error", err)
		return err
	}
	return nil
}

// ListEligibleUsers returns all users that take part in leaderboards and
// reminder dispatch: admins and accounts still pending onboarding are
// excluded.
func (c *Client) ListEligibleUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := c.db.WithContext(ctx).
		Where("role <> ?", RoleAdmin).
		Where("leetcode_username NOT LIKE ?", PendingUsernamePrefix+"%").
		Where("onboarding_completed = ?", true).
		Find(&users).Error
	if err != nil {
		log.Error("failed to list eligible users", "error", err)
		return nil, err
	}
	return users, nil
}
